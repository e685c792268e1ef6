package main

import (
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/app"
	"github.com/Meesho/BharatMLStack/pmo-agent/pkg/config"
	"github.com/Meesho/BharatMLStack/pmo-agent/pkg/logger"
	"github.com/Meesho/BharatMLStack/pmo-agent/pkg/metric"
	"github.com/rs/zerolog/log"
)

func main() {
	config.InitEnv()
	env := config.Instance()
	logger.Init(env.AppName, env.AppLogLevel)
	metric.Init()

	handler, closer, err := app.BuildHandler(env)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build api handler")
	}
	defer func() {
		if err := closer(); err != nil {
			log.Error().Err(err).Msg("error closing store connections")
		}
	}()

	server := app.NewServer(env.AppPort, handler)
	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("api-server exited with error")
	}
}
