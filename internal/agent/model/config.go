package model

import "time"

// ================ Config ================
type LLMModelConfig struct {
	Model          string  `envconfig:"LLM_MODEL" default:"gemini-2.5-flash"`
	MaxTokens      int     `envconfig:"LLM_MAX_TOKENS" default:"1024"`
	Temperature    float32 `envconfig:"LLM_TEMPERATURE" default:"0.3"`
	ThinkingBudget int32   `envconfig:"LLM_THINKING_BUDGET" default:"0"`
}

type SearchConfig struct {
	FirecrawlAPIKey  string        `envconfig:"FIRECRAWL_API_KEY" required:"true"`
	FirecrawlBaseURL string        `envconfig:"FIRECRAWL_BASE_URL" default:"https://api.firecrawl.dev"`
	FirecrawlTimeout time.Duration `envconfig:"FIRECRAWL_TIMEOUT" default:"60s"`
	Limit            int           `envconfig:"SEARCH_LIMIT" default:"3"`
	ScrapeMode       string        `envconfig:"SCRAPE_MODE" default:"firecrawl"`
	ScrapeTimeout    time.Duration `envconfig:"SCRAPE_TIMEOUT" default:"20s"`
	ScrapeMaxBytes   int           `envconfig:"SCRAPE_MAX_BYTES" default:"65536"`
}

// Scrape modes accepted by SCRAPE_MODE.
const (
	ScrapeModeFirecrawl = "firecrawl"
	ScrapeModeDirect    = "direct"
)

type ServerConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":8000"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type UsageConfig struct {
	TTL time.Duration `envconfig:"USAGE_TTL" default:"720h"`
}
