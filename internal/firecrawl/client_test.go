package firecrawl

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	errx "github.com/waste-to-wealth/server/internal/core/error"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/search", r.URL.Path)
		require.Equal(t, "Bearer fc-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "plastic bottles", body["query"])
		require.EqualValues(t, 3, body["limit"])

		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"url":"https://a.example","title":"A","description":"first"},
			{"url":" https://b.example ","title":"B"},
			{"url":"","title":"no url"},
			{"url":"https://d.example"}
		]}`))
	}))
	defer srv.Close()

	c := NewWithClient("fc-key", srv.URL+"/", srv.Client())
	results, err := c.Search(t.Context(), "plastic bottles", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, "https://a.example", results[0].URL)
	require.Equal(t, "first", results[0].Description)
	require.Equal(t, "https://b.example", results[1].URL)
	require.Equal(t, "", results[2].URL)
}

func TestSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"success":false,"error":"insufficient credits"}`))
	}))
	defer srv.Close()

	c := NewWithClient("fc-key", srv.URL, srv.Client())
	_, err := c.Search(t.Context(), "q", 3)
	require.Error(t, err)
	require.Equal(t, http.StatusBadGateway, errx.StatusOf(err))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusPaymentRequired, se.StatusCode)
	require.Contains(t, se.Body, "insufficient credits")
}

func TestSearch_Unsuccessful(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"bad query"}`))
	}))
	defer srv.Close()

	_, err := NewWithClient("fc-key", srv.URL, srv.Client()).Search(t.Context(), "q", 3)
	require.ErrorContains(t, err, "bad query")
}

func TestScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/scrape", r.URL.Path)
		var body scrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "https://a.example", body.URL)
		require.Equal(t, []string{"markdown"}, body.Formats)
		_, _ = w.Write([]byte(`{"success":true,"data":{"markdown":"# Bottles\nReuse them."}}`))
	}))
	defer srv.Close()

	text, err := NewWithClient("fc-key", srv.URL, srv.Client()).Scrape(t.Context(), "https://a.example")
	require.NoError(t, err)
	require.Equal(t, "# Bottles\nReuse them.", text)
}

func TestScrape_Errors(t *testing.T) {
	c := NewWithClient("fc-key", "http://127.0.0.1:0", nil)
	_, err := c.Scrape(t.Context(), "  ")
	require.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()
	_, err = NewWithClient("fc-key", srv.URL, srv.Client()).Scrape(t.Context(), "https://a.example")
	require.ErrorContains(t, err, "decode response")
}

func TestMissingAPIKey(t *testing.T) {
	c := New("", "", 0)
	require.Equal(t, DefaultBaseURL, c.baseURL)
	_, err := c.Search(t.Context(), "q", 1)
	require.ErrorContains(t, err, "API key is missing")
}
