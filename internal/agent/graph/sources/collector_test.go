package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waste-to-wealth/server/internal/agent/model"
)

type fakeSearcher struct {
	results  []model.SearchResult
	err      error
	gotLimit int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, limit int) ([]model.SearchResult, error) {
	f.gotLimit = limit
	return f.results, f.err
}

type fakeScraper struct {
	pages map[string]string
	fail  map[string]bool
	calls []string
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if f.fail[url] {
		return "", errors.New("boom")
	}
	return f.pages[url], nil
}

func TestCollect(t *testing.T) {
	searcher := &fakeSearcher{results: []model.SearchResult{
		{URL: "a"}, {URL: ""}, {URL: "b"}, {URL: "c"}, {URL: "d"},
	}}
	scraper := &fakeScraper{
		pages: map[string]string{"a": "page A", "c": "", "d": "page D"},
		fail:  map[string]bool{"b": true},
	}

	content, err := NewCollector(searcher, scraper, 0).Collect(context.Background(), "q")
	require.NoError(t, err)
	require.Equal(t, DefaultSearchLimit, searcher.gotLimit)
	require.Equal(t, "page A\n\npage D\n\n", content)
	require.Equal(t, []string{"a", "b", "c", "d"}, scraper.calls)
}

func TestCollect_SearchError(t *testing.T) {
	scraper := &fakeScraper{}
	_, err := NewCollector(&fakeSearcher{err: errors.New("down")}, scraper, 5).Collect(context.Background(), "q")
	require.ErrorContains(t, err, "down")
	require.Empty(t, scraper.calls)
}

func TestCollect_NoResults(t *testing.T) {
	content, err := NewCollector(&fakeSearcher{}, &fakeScraper{}, 3).Collect(context.Background(), "q")
	require.NoError(t, err)
	require.Equal(t, "", content)
}
