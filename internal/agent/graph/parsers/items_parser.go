package parsers

import (
	"strings"

	logx "github.com/waste-to-wealth/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 128 * 1024 // 128KB
	maxErrSnippet = 200        // limit error snippet size
)

// ParseWasteItems splits a free-text extraction reply into item names: one per
// line, trimmed, empty lines dropped, at most max entries kept.
func ParseWasteItems(content string, max int) []string {
	if max <= 0 {
		return []string{}
	}
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "items_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}
	content = strings.ToValidUTF8(content, "")

	items := make([]string, 0, max)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, line)
		if len(items) == max {
			break
		}
	}
	return items
}

func safeSnippet(s string) string {
	if len(s) <= maxErrSnippet {
		return s
	}
	return strings.ToValidUTF8(s[:maxErrSnippet], "") + "..."
}
