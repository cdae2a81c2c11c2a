package parsers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	logx "github.com/waste-to-wealth/server/pkg/logger"
)

// ErrNoJSON is returned when a reply holds no JSON object or array.
var ErrNoJSON = errors.New("no json value in model output")

// DecodeJSON decodes the first JSON value found in a model reply into target.
// Markdown code fences and leading prose are ignored.
func DecodeJSON(content string, target any) (err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "json_parser").Msgf("panic recovered: %v", r)
			err = fmt.Errorf("json parser panic: %v", r)
		}
	}()

	if len(content) > maxContentLen {
		return fmt.Errorf("model output too large: %d bytes", len(content))
	}

	raw := extractJSON(content)
	if raw == "" {
		return fmt.Errorf("%w: %q", ErrNoJSON, safeSnippet(content))
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

// extractJSON strips code fences and returns the text from the first '{' or
// '[' to the matching last '}' or ']'.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			// drop the language tag line (```json)
			s = s[nl+1:]
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return ""
	}
	return s[start : end+1]
}
