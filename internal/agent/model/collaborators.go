package model

import "context"

// SearchResult is one hit returned by a web search provider.
type SearchResult struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Searcher returns at most limit results for query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// Scraper returns the readable text (markdown or plain) of a page. An empty
// string with a nil error means the page had no usable content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// LLM is the language-model collaborator used by every pipeline stage.
type LLM interface {
	// Complete returns the free-text reply to a system instruction and user message.
	Complete(ctx context.Context, system, user string) (string, error)
	// CompleteStructured decodes a schema-constrained reply into target, which
	// must be a non-nil pointer to a struct.
	CompleteStructured(ctx context.Context, system, user string, target any) error
}
