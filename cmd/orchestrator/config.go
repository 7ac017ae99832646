package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings holds the tunables loaded from settings.yaml. Everything here has
// a sane default so the file can be sparse.
type Settings struct {
	Loop struct {
		MaxTurns            int `yaml:"max_turns"`
		ModelTimeoutSeconds int `yaml:"model_timeout_seconds"`
		CorrectionLimit     int `yaml:"correction_limit"`
	} `yaml:"loop"`
	Cache struct {
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	HealthCheck struct {
		IntervalMinutes int `yaml:"interval_minutes"`
	} `yaml:"health_check"`
}

// ModelTimeout returns the per-completion deadline as a duration.
func (s *Settings) ModelTimeout() time.Duration {
	return time.Duration(s.Loop.ModelTimeoutSeconds) * time.Second
}

// CacheTTL returns the answer-cache expiry as a duration.
func (s *Settings) CacheTTL() time.Duration {
	return time.Duration(s.Cache.TTLSeconds) * time.Second
}

// HealthCheckInterval returns the proactive check period as a duration.
func (s *Settings) HealthCheckInterval() time.Duration {
	return time.Duration(s.HealthCheck.IntervalMinutes) * time.Minute
}

// AppConfig holds all configuration for the orchestrator, loaded from the
// environment and settings.yaml.
type AppConfig struct {
	EnabledModels []string
	DefaultModel  string
	APIKeys       map[string]string
	RedisAddr     string
	ToolServerURL string
	// ToolPipeCommand, when non-empty, makes the orchestrator spawn the tool
	// server itself and talk to it over a stdin/stdout pipe instead of HTTP.
	ToolPipeCommand []string
	OllamaHost      string
	OpenAIBaseURL   string
	Settings        Settings
}

// LoadConfig loads configuration from a .env file, environment variables,
// and settings.yaml.
func LoadConfig() (*AppConfig, error) {
	// Only attempt to load a .env file in local development. In Docker
	// (where GIN_MODE="release") configuration arrives as environment
	// variables from the compose file.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := &AppConfig{
		APIKeys:         make(map[string]string),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		ToolServerURL:   os.Getenv("TOOL_SERVER_URL"),
		ToolPipeCommand: strings.Fields(os.Getenv("TOOL_PIPE_COMMAND")),
		OllamaHost:      os.Getenv("OLLAMA_HOST"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.ToolServerURL == "" {
		cfg.ToolServerURL = "http://localhost:8002"
	}
	if cfg.OllamaHost == "" {
		cfg.OllamaHost = "http://localhost:11434"
	}

	enabledModelsStr := os.Getenv("ENABLED_MODELS")
	if enabledModelsStr == "" {
		return nil, fmt.Errorf("ENABLED_MODELS environment variable is not set")
	}
	cfg.EnabledModels = strings.Split(enabledModelsStr, ",")
	for i, m := range cfg.EnabledModels {
		cfg.EnabledModels[i] = strings.TrimSpace(m)
	}

	cfg.DefaultModel = os.Getenv("DEFAULT_MODEL")
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = cfg.EnabledModels[0]
	}

	for _, modelID := range cfg.EnabledModels {
		var apiKey string
		// Maps model prefixes to the provider's API key variable.
		// Local Ollama models need no key.
		switch {
		case strings.HasPrefix(modelID, "gpt"):
			apiKey = os.Getenv("OPENAI_API_KEY")
		case strings.HasPrefix(modelID, "gemini"):
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey != "" {
			cfg.APIKeys[modelID] = apiKey
		}
	}

	if err := loadSettings(&cfg.Settings); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadSettings(s *Settings) error {
	path := os.Getenv("SETTINGS_FILE")
	if path == "" {
		path = "settings.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("WARNING: %s not found, using default settings.", path)
		} else {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if s.Loop.MaxTurns <= 0 {
		s.Loop.MaxTurns = 5
	}
	if s.Loop.ModelTimeoutSeconds <= 0 {
		s.Loop.ModelTimeoutSeconds = 60
	}
	if s.Loop.CorrectionLimit <= 0 {
		s.Loop.CorrectionLimit = 1
	}
	if s.Cache.TTLSeconds <= 0 {
		s.Cache.TTLSeconds = 3600
	}
	if s.HealthCheck.IntervalMinutes <= 0 {
		s.HealthCheck.IntervalMinutes = 5
	}
	return nil
}
