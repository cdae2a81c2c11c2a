package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/waste-to-wealth/server/internal/agent/graph/nodes"
	"github.com/waste-to-wealth/server/internal/agent/model"
)

const pipelineQuery = "I have lots of plastic bottles and old tyres behind my house"

var errDown = errors.New("collaborator down")

type stubLLM struct {
	mu              sync.Mutex
	completeErr     error
	structuredErr   error
	completeCalls   int
	structuredCalls int
}

func (s *stubLLM) Complete(_ context.Context, system, user string) (string, error) {
	s.mu.Lock()
	s.completeCalls++
	s.mu.Unlock()
	if s.completeErr != nil {
		return "", s.completeErr
	}
	if strings.HasPrefix(user, "Query:") {
		return "Plastic bottle\nOld tyre\nGlass jar", nil
	}
	return "Answer to: " + user, nil
}

func (s *stubLLM) CompleteStructured(_ context.Context, system, user string, target any) error {
	s.mu.Lock()
	s.structuredCalls++
	s.mu.Unlock()
	if s.structuredErr != nil {
		return s.structuredErr
	}
	var raw string
	if strings.HasPrefix(user, "Waste Item:") {
		raw = `{"name":"something else","category":"plastic","recyclability":"recyclable","reuse_ideas":["a","b"]}`
	} else {
		raw = `{"ideas":[{"title":"One","description":"d","required_materials":["x"]},{"title":"Two","description":"d","required_materials":["y"]},{"title":"Three","description":"d","required_materials":["z"]}]}`
	}
	return json.Unmarshal([]byte(raw), target)
}

type stubSearch struct {
	err         error
	searchCalls int
	scrapeCalls int
	mu          sync.Mutex
}

func (s *stubSearch) Search(_ context.Context, query string, limit int) ([]model.SearchResult, error) {
	s.mu.Lock()
	s.searchCalls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return []model.SearchResult{{URL: "https://a.example"}, {URL: "https://b.example"}}, nil
}

func (s *stubSearch) Scrape(_ context.Context, url string) (string, error) {
	s.mu.Lock()
	s.scrapeCalls++
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return "content of " + url, nil
}

func newRunner(t *testing.T, llm *stubLLM, search *stubSearch) Runner {
	t.Helper()
	r, err := BuildRunner(context.Background(), Config{
		LLM:         llm,
		Searcher:    search,
		Scraper:     search,
		SearchLimit: 3,
	})
	require.NoError(t, err)
	return r
}

func TestRun_DirectAnswer(t *testing.T) {
	llm, search := &stubLLM{}, &stubSearch{}
	out, err := newRunner(t, llm, search).Run(context.Background(), model.QueryInput{Query: "What is e-waste?"})
	require.NoError(t, err)

	require.NotNil(t, out.QuickAnswer)
	require.Equal(t, "Answer to: What is e-waste?", *out.QuickAnswer)
	require.Empty(t, out.ExtractedWasteItems)
	require.Empty(t, out.ItemsInfo)
	require.Empty(t, out.WealthIdeas)
	require.Nil(t, out.Analysis)
	require.Zero(t, search.searchCalls)
	require.Zero(t, llm.structuredCalls)
}

func TestRun_DirectAnswerFallback(t *testing.T) {
	llm := &stubLLM{completeErr: errDown}
	out, err := newRunner(t, llm, &stubSearch{}).Run(context.Background(), model.QueryInput{Query: "compost"})
	require.NoError(t, err)
	require.Equal(t, nodes.QuickAnswerFallback, *out.QuickAnswer)
}

func TestRun_Pipeline(t *testing.T) {
	llm, search := &stubLLM{}, &stubSearch{}
	out, err := newRunner(t, llm, search).Run(context.Background(), model.QueryInput{Query: pipelineQuery})
	require.NoError(t, err)

	require.Nil(t, out.QuickAnswer)
	require.Equal(t, pipelineQuery, out.Query)
	require.Equal(t, []string{"Plastic bottle", "Old tyre"}, out.ExtractedWasteItems)
	require.Len(t, out.ItemsInfo, 2)
	require.Equal(t, "Plastic bottle", out.ItemsInfo[0].Name)
	require.Equal(t, "Old tyre", out.ItemsInfo[1].Name)
	require.Len(t, out.WealthIdeas, 2)
	require.Equal(t, "Two", out.WealthIdeas[1].Title)

	require.Equal(t, 1, search.searchCalls)
	require.Equal(t, 2, search.scrapeCalls)
	require.Equal(t, 1, llm.completeCalls)
	require.Equal(t, 3, llm.structuredCalls)
}

func TestRun_SearchDown(t *testing.T) {
	llm := &stubLLM{}
	out, err := newRunner(t, llm, &stubSearch{err: errDown}).Run(context.Background(), model.QueryInput{Query: pipelineQuery})
	require.NoError(t, err)

	require.Empty(t, out.ExtractedWasteItems)
	require.Empty(t, out.ItemsInfo)
	// generation still runs on an empty material list
	require.Equal(t, 1, llm.structuredCalls)
	require.Len(t, out.WealthIdeas, 2)
}

func TestRun_AnalysisDown(t *testing.T) {
	llm := &stubLLM{structuredErr: errDown}
	out, err := newRunner(t, llm, &stubSearch{}).Run(context.Background(), model.QueryInput{Query: pipelineQuery})
	require.NoError(t, err)

	require.Len(t, out.ExtractedWasteItems, 2)
	require.Empty(t, out.ItemsInfo)
	require.Empty(t, out.WealthIdeas)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	require.JSONEq(t, fmt.Sprintf(`{
		"query": %q,
		"extracted_waste_items": ["Plastic bottle", "Old tyre"],
		"items_info": [],
		"wealth_ideas": [],
		"analysis": null,
		"quick_answer": null
	}`, pipelineQuery), string(b))
}

func TestRun_Concurrent(t *testing.T) {
	llm, search := &stubLLM{}, &stubSearch{}
	r := newRunner(t, llm, search)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		q := pipelineQuery
		if i%2 == 0 {
			q = "What is e-waste?"
		}
		g.Go(func() error {
			out, err := r.Run(context.Background(), model.QueryInput{Query: q})
			if err != nil {
				return err
			}
			if (out.QuickAnswer != nil) != (q != pipelineQuery) {
				return fmt.Errorf("unexpected route for %q", q)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 4, search.searchCalls)
}

func TestBuildRunner_Validation(t *testing.T) {
	_, err := BuildRunner(context.Background(), Config{})
	require.Error(t, err)

	_, err = BuildRunner(context.Background(), Config{LLM: &stubLLM{}})
	require.Error(t, err)

	_, err = BuildGraph(context.Background(), nil)
	require.Error(t, err)
}
