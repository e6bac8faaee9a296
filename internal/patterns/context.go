package patterns

import (
	"regexp"
	"strconv"
	"strings"
)

// Default context radii. URL cues (verbs, bodies) sit further from the match
// than UI markup does.
const (
	DefaultURLRadius = 1500
	DefaultUIRadius  = 500
)

// ExtractContext returns buf[max(0,offset-radius) : min(len,offset+radius)]
func ExtractContext(buf string, offset, radius int) string {
	start := offset - radius
	if start < 0 {
		start = 0
	}
	end := offset + radius
	if end > len(buf) {
		end = len(buf)
	}
	if start >= end {
		return ""
	}
	return buf[start:end]
}

var unicodeEscape = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)

// CleanURL applies the fixed post-processing chain to a raw candidate:
// strip quotes and whitespace, decode \uXXXX escapes, strip trailing
// punctuation and leading brackets, then reject non-endpoint shapes.
func CleanURL(raw string) (string, bool) {
	s := strings.Trim(raw, "\"'` \t\r\n")

	s = unicodeEscape.ReplaceAllStringFunc(s, func(esc string) string {
		n, err := strconv.ParseUint(esc[2:], 16, 32)
		if err != nil {
			return esc
		}
		return string(rune(n))
	})

	s = strings.TrimRight(s, ",;)}]>")
	s = strings.TrimLeft(s, "([{<")

	if s == "" || len(s) < 4 || s[0] == '#' || strings.Contains(s, "..") {
		return "", false
	}
	lower := strings.ToLower(s)
	for _, prefix := range []string{"data:", "javascript:", "mailto:"} {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}
	return s, true
}
