package main

import (
	"context"
	"fmt"
	"os"

	"github.com/waste-to-wealth/server/internal/agent/graph"
	"github.com/waste-to-wealth/server/internal/agent/graph/nodes"
	"github.com/waste-to-wealth/server/internal/agent/model"
	"github.com/waste-to-wealth/server/internal/agent/repo"
	"github.com/waste-to-wealth/server/internal/firecrawl"
	"github.com/waste-to-wealth/server/internal/llm"
	"github.com/waste-to-wealth/server/internal/scrape"
	logx "github.com/waste-to-wealth/server/pkg/logger"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// deps are the long-lived collaborators shared by every command.
type deps struct {
	cfg    AppConfig
	runner graph.Runner
	ledger model.UsageLedger
	close  func()
}

type depsFactory func(ctx context.Context) (*deps, error)

func main() {
	app := newCLIApp(buildDeps)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// buildDeps loads configuration and wires the pipeline. Missing API keys
// fail here, before anything is served.
func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment})

	d := &deps{cfg: cfg, close: func() {}}

	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			logx.Warn().Err(err).Msg("redis unavailable; usage ledger disabled")
		} else {
			d.ledger = repo.NewRedisUsageLedger(rdb, cfg.Usage.TTL)
			d.close = func() { _ = rdb.Close() }
			logx.Info().Msg("Connected to Redis successfully")
		}
	}

	gem, err := llm.NewGemini(ctx, llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.LLM,
		OnUsage: nodes.NewUsageRecorder(d.ledger),
	})
	if err != nil {
		d.close()
		return nil, err
	}

	fc := firecrawl.New(cfg.Search.FirecrawlAPIKey, cfg.Search.FirecrawlBaseURL, cfg.Search.FirecrawlTimeout)
	var scraper model.Scraper = fc
	if cfg.Search.ScrapeMode == model.ScrapeModeDirect {
		scraper = scrape.NewDirect(cfg.Search.ScrapeTimeout, cfg.Search.ScrapeMaxBytes)
	}

	runner, err := graph.BuildRunner(ctx, graph.Config{
		LLM:         gem,
		Searcher:    fc,
		Scraper:     scraper,
		SearchLimit: cfg.Search.Limit,
	})
	if err != nil {
		d.close()
		return nil, fmt.Errorf("build graph: %w", err)
	}
	d.runner = runner

	logx.Info().
		Str("environment", cfg.Environment.String()).
		Str("model", cfg.LLM.Model).
		Str("scrape_mode", cfg.Search.ScrapeMode).
		Bool("usage_ledger", d.ledger != nil).
		Msg("pipeline ready")
	return d, nil
}
