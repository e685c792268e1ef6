package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Env struct {
	AppPort        int
	AppName        string
	AppLogLevel    string
	AppEnv         string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiTimeout  time.Duration
	GeminiMaxRPS   int
	SystemPrompt   string
	UseEtcdStore   bool
	EtcdEndpoints  []string
	EtcdUsername   string
	EtcdPassword   string
	EtcdTimeout    time.Duration
	NoteTTLSeconds int64
}

var (
	initialized bool
	once        sync.Once
	instance    Env
	initError   error
)

func Load() (Env, error) {
	port := 7860
	if raw := strings.TrimSpace(os.Getenv("APP_PORT")); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p <= 0 {
			return Env{}, fmt.Errorf("invalid APP_PORT: %q", raw)
		}
		port = p
	}

	geminiTimeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GEMINI_TIMEOUT_SECONDS")); raw != "" {
		sec, err := strconv.Atoi(raw)
		if err != nil || sec <= 0 {
			return Env{}, fmt.Errorf("invalid GEMINI_TIMEOUT_SECONDS: %q", raw)
		}
		geminiTimeout = time.Duration(sec) * time.Second
	}

	geminiMaxRPS := 0
	if raw := strings.TrimSpace(os.Getenv("GEMINI_MAX_RPS")); raw != "" {
		rps, err := strconv.Atoi(raw)
		if err != nil || rps < 0 {
			return Env{}, fmt.Errorf("invalid GEMINI_MAX_RPS: %q", raw)
		}
		geminiMaxRPS = rps
	}

	useEtcd := false
	if raw := strings.TrimSpace(os.Getenv("USE_ETCD_STORE")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Env{}, fmt.Errorf("invalid USE_ETCD_STORE: %q", raw)
		}
		useEtcd = v
	}

	etcdTimeout := 5 * time.Second
	if raw := strings.TrimSpace(os.Getenv("ETCD_TIMEOUT_SECONDS")); raw != "" {
		sec, err := strconv.Atoi(raw)
		if err != nil || sec <= 0 {
			return Env{}, fmt.Errorf("invalid ETCD_TIMEOUT_SECONDS: %q", raw)
		}
		etcdTimeout = time.Duration(sec) * time.Second
	}

	endpoints := []string{"127.0.0.1:2379"}
	if raw := strings.TrimSpace(os.Getenv("ETCD_ENDPOINTS")); raw != "" {
		endpoints = parseEtcdEndpoints(raw)
	} else if raw := strings.TrimSpace(os.Getenv("ETCD_SERVER")); raw != "" {
		endpoints = parseEtcdEndpoints(raw)
	}

	noteTTL := int64(0)
	if raw := strings.TrimSpace(os.Getenv("NOTE_TTL_SECONDS")); raw != "" {
		ttl, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ttl < 0 {
			return Env{}, fmt.Errorf("invalid NOTE_TTL_SECONDS: %q", raw)
		}
		noteTTL = ttl
	}

	return Env{
		AppPort:        port,
		AppName:        strings.TrimSpace(os.Getenv("APP_NAME")),
		AppLogLevel:    strings.TrimSpace(os.Getenv("APP_LOG_LEVEL")),
		AppEnv:         strings.TrimSpace(os.Getenv("APP_ENV")),
		GeminiAPIKey:   strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:    strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		GeminiTimeout:  geminiTimeout,
		GeminiMaxRPS:   geminiMaxRPS,
		SystemPrompt:   strings.TrimSpace(os.Getenv("SYSTEM_PROMPT")),
		UseEtcdStore:   useEtcd,
		EtcdEndpoints:  endpoints,
		EtcdUsername:   strings.TrimSpace(os.Getenv("ETCD_USERNAME")),
		EtcdPassword:   os.Getenv("ETCD_PASSWORD"),
		EtcdTimeout:    etcdTimeout,
		NoteTTLSeconds: noteTTL,
	}, nil
}

func parseEtcdEndpoints(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func InitEnv() {
	if initialized {
		log.Debug().Msg("Env already initialized!")
		return
	}
	once.Do(func() {
		viper.AutomaticEnv()
		instance, initError = Load()
		if initError != nil {
			log.Panic().Err(initError).Msg("failed to load env")
		}
		initialized = true
		log.Info().Msg("Env initialized!")
	})
}

func Instance() Env {
	InitEnv()
	if initError != nil {
		panic(initError)
	}
	return instance
}
