package app

import (
	"net/http"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/adapters/etcd"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/adapters/gemini"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/adapters/memory"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/api"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/application"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/ports"
	"github.com/Meesho/BharatMLStack/pmo-agent/pkg/config"
	"github.com/rs/zerolog/log"
)

// BuildHandler assembles stores, the LLM client and services behind the
// HTTP handler. The returned closer releases the etcd connection when one
// was opened.
func BuildHandler(cfg config.Env) (http.Handler, func() error, error) {
	closer := func() error { return nil }

	var notes ports.NoteStore
	if cfg.UseEtcdStore {
		client, err := etcd.NewClient(etcd.ClientConfig{
			Endpoints: cfg.EtcdEndpoints,
			Username:  cfg.EtcdUsername,
			Password:  cfg.EtcdPassword,
			Timeout:   cfg.EtcdTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		notes = etcd.NewEtcdNoteStore(client.Raw(), cfg.AppName, cfg.NoteTTLSeconds)
		closer = client.Close
		log.Info().Strs("endpoints", cfg.EtcdEndpoints).Msg("using etcd-backed note store")
	} else {
		notes = memory.NewNoteStore()
		log.Info().Msg("using in-memory note store")
	}

	llm := gemini.NewClient(gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
		MaxRPS:  cfg.GeminiMaxRPS,
	})

	agent := application.NewAgentService(notes, memory.NewChatStore(), llm, cfg.SystemPrompt)
	plans := application.NewPlanService(memory.NewPlanStore())

	mux := http.NewServeMux()
	api.NewHandler(agent, plans).Register(mux)
	return mux, closer, nil
}
