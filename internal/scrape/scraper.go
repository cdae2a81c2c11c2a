package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/waste-to-wealth/server/internal/agent/model"
)

const (
	userAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultMaxBytes = 64 * 1024
	maxBodyBytes    = 4 << 20
)

var (
	reSpaces     = regexp.MustCompile(`[ \t\f\v]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Direct fetches pages itself and reduces the HTML to plain text.
type Direct struct {
	client   *http.Client
	maxBytes int
}

var _ model.Scraper = (*Direct)(nil)

// NewDirect creates a scraper with the given request timeout and output cap.
func NewDirect(timeout time.Duration, maxBytes int) *Direct {
	return NewDirectWithClient(&http.Client{Timeout: timeout}, maxBytes)
}

func NewDirectWithClient(client *http.Client, maxBytes int) *Direct {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Direct{client: client, maxBytes: maxBytes}
}

// Scrape downloads url and returns its visible text.
func (d *Direct) Scrape(ctx context.Context, url string) (string, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return "", errors.New("scrape url is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trimmed, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("scrape http %d", resp.StatusCode)
	}

	text, err := ExtractText(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return truncate(text, d.maxBytes), nil
}

// ExtractText strips scripts, styles and page chrome from an HTML document
// and returns the remaining text with collapsed whitespace.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, nav, header, footer, iframe, svg").Remove()

	root := doc.Find("main, article").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}
	if root.Length() == 0 {
		root = doc.Selection
	}

	var lines []string
	root.Find("h1, h2, h3, h4, h5, h6, p, li, td, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li").Length() > 0 {
			return
		}
		if line := normalize(s.Text()); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		return normalize(root.Text()), nil
	}
	return strings.Join(lines, "\n"), nil
}

func normalize(s string) string {
	s = reSpaces.ReplaceAllString(s, " ")
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	s = strings.Join(parts, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
