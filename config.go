package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/waste-to-wealth/server/internal/agent/model"
	"github.com/waste-to-wealth/server/internal/core"
	logx "github.com/waste-to-wealth/server/pkg/logger"
	pkgredis "github.com/waste-to-wealth/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure, optional
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	LLM    model.LLMModelConfig
	Search model.SearchConfig
	Server model.ServerConfig
	Usage  model.UsageConfig
}

// loadConfig reads .env when present and binds the environment.
func loadConfig() (AppConfig, error) {
	if err := godotenv.Load(".env"); err != nil {
		logx.Debug().Err(err).Msg("no .env file loaded")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("process environment config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c AppConfig) validate() error {
	switch c.Search.ScrapeMode {
	case model.ScrapeModeFirecrawl, model.ScrapeModeDirect:
	default:
		return fmt.Errorf("SCRAPE_MODE must be %q or %q, got %q",
			model.ScrapeModeFirecrawl, model.ScrapeModeDirect, c.Search.ScrapeMode)
	}
	if c.Search.Limit <= 0 {
		return fmt.Errorf("SEARCH_LIMIT must be positive, got %d", c.Search.Limit)
	}
	return nil
}
