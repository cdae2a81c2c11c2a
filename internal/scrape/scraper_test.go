package scrape

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const page = `<html><head><title>t</title><style>p{color:red}</style></head>
<body>
<header><h1>Site header</h1></header>
<nav><ul><li>Home</li></ul></nav>
<main>
  <h1>Recycling plastic</h1>
  <p>Plastic   bottles can be
     shredded.</p>
  <ul><li>PET</li><li>HDPE</li></ul>
  <script>alert("x")</script>
</main>
<footer><p>Copyright</p></footer>
</body></html>`

func TestExtractText(t *testing.T) {
	text, err := ExtractText(strings.NewReader(page))
	require.NoError(t, err)
	require.Equal(t, "Recycling plastic\nPlastic bottles can be\nshredded.\nPET\nHDPE", text)
	require.NotContains(t, text, "Site header")
	require.NotContains(t, text, "Copyright")
	require.NotContains(t, text, "alert")
}

func TestExtractText_PlainBody(t *testing.T) {
	text, err := ExtractText(strings.NewReader(`<body><div>Just   text</div></body>`))
	require.NoError(t, err)
	require.Equal(t, "Just text", text)
}

func TestDirectScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	d := NewDirectWithClient(srv.Client(), 0)
	text, err := d.Scrape(t.Context(), srv.URL+"/ok")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(text, "Recycling plastic"))

	_, err = d.Scrape(t.Context(), srv.URL+"/missing")
	require.ErrorContains(t, err, "404")

	_, err = d.Scrape(t.Context(), " ")
	require.Error(t, err)
}

func TestDirectScrape_Truncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>" + strings.Repeat("é", 100) + "</p>"))
	}))
	defer srv.Close()

	text, err := NewDirectWithClient(srv.Client(), 11).Scrape(t.Context(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("é", 5), text)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 5))
	require.Equal(t, "ab", truncate("abc", 2))
	require.Equal(t, "", truncate("é", 1))
}
