package nodes

import "strings"

// questionWords are matched as plain substrings of the lowercased query, so
// "whatever" or "showhow" count as questions too.
var questionWords = []string{"what", "how", "why", "when", "who"}

const maxDirectWords = 6

// IsDirectQuestion reports whether query should be answered directly
// instead of going through the search pipeline.
func IsDirectQuestion(query string) bool {
	q := strings.ToLower(query)
	for _, w := range questionWords {
		if strings.Contains(q, w) {
			return true
		}
	}
	return len(strings.Fields(query)) <= maxDirectWords
}
