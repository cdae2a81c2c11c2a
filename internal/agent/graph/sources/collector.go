package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/waste-to-wealth/server/internal/agent/model"
	logx "github.com/waste-to-wealth/server/pkg/logger"
)

const DefaultSearchLimit = 3

// Collector gathers grounding content for a query: one search, then one
// scrape per result URL.
type Collector struct {
	searcher    model.Searcher
	scraper     model.Scraper
	searchLimit int
}

func NewCollector(searcher model.Searcher, scraper model.Scraper, searchLimit int) *Collector {
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	return &Collector{
		searcher:    searcher,
		scraper:     scraper,
		searchLimit: searchLimit,
	}
}

// Collect returns the concatenated page texts for query, each followed by a
// blank line. A search failure is returned to the caller; results without a
// URL, failed scrapes and empty pages are skipped.
func (c *Collector) Collect(ctx context.Context, query string) (string, error) {
	results, err := c.searcher.Search(ctx, query, c.searchLimit)
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}

	var content strings.Builder
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		text, err := c.scraper.Scrape(ctx, r.URL)
		if err != nil {
			logx.Ctx(ctx).Warn().Err(err).Str("url", r.URL).Msg("scrape failed; skipping source")
			continue
		}
		if text == "" {
			continue
		}
		content.WriteString(text)
		content.WriteString("\n\n")
	}

	logx.Ctx(ctx).Debug().
		Int("results", len(results)).
		Int("content_len", content.Len()).
		Msg("sources collected")
	return content.String(), nil
}
