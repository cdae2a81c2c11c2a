package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/waste-to-wealth/server/internal/agent/model"
	errx "github.com/waste-to-wealth/server/internal/core/error"
)

const (
	serviceName    = "firecrawl"
	DefaultBaseURL = "https://api.firecrawl.dev"
	maxErrBody     = 512
)

// StatusError is returned for non-2xx Firecrawl responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("firecrawl http %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Firecrawl v1 REST API. It implements both
// model.Searcher and model.Scraper and is safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var (
	_ model.Searcher = (*Client)(nil)
	_ model.Scraper  = (*Client)(nil)
)

// New constructs a client. An empty baseURL selects the public API.
func New(apiKey, baseURL string, timeout time.Duration) *Client {
	return NewWithClient(apiKey, baseURL, &http.Client{Timeout: timeout})
}

// NewWithClient constructs a client using the supplied HTTP client.
func NewWithClient(apiKey, baseURL string, client *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, client: client}
}

type scrapeOptions struct {
	Formats []string `json:"formats"`
}

type searchRequest struct {
	Query         string         `json:"query"`
	Limit         int            `json:"limit,omitempty"`
	ScrapeOptions *scrapeOptions `json:"scrapeOptions,omitempty"`
}

type searchResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    []struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"data"`
}

// Search runs a web search and returns at most limit results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	var payload searchResponse
	err := c.post(ctx, "/v1/search", searchRequest{
		Query:         query,
		Limit:         limit,
		ScrapeOptions: &scrapeOptions{Formats: []string{"markdown"}},
	}, &payload)
	if err != nil {
		return nil, errx.WrapUpstream(serviceName, err)
	}
	if !payload.Success {
		return nil, errx.WrapUpstream(serviceName, fmt.Errorf("search failed: %s", payload.Error))
	}

	results := make([]model.SearchResult, 0, len(payload.Data))
	for _, d := range payload.Data {
		results = append(results, model.SearchResult{
			URL:         strings.TrimSpace(d.URL),
			Title:       d.Title,
			Description: d.Description,
		})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
}

// Scrape returns the page content as markdown.
func (c *Client) Scrape(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", errors.New("firecrawl: scrape url is empty")
	}
	var payload scrapeResponse
	if err := c.post(ctx, "/v1/scrape", scrapeRequest{URL: url, Formats: []string{"markdown"}}, &payload); err != nil {
		return "", errx.WrapUpstream(serviceName, err)
	}
	if !payload.Success {
		return "", errx.WrapUpstream(serviceName, fmt.Errorf("scrape failed: %s", payload.Error))
	}
	return payload.Data.Markdown, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if strings.TrimSpace(c.apiKey) == "" {
		return errors.New("firecrawl: API key is missing")
	}
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
