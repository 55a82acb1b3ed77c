package engine

import (
	"regexp"
	"strings"
)

// URL tokens stop at whitespace, quotes and the first non-ASCII rune.
var urlToken = regexp.MustCompile(`https?://[^\s<>"\x{80}-\x{10FFFF}]+`)

// ExtractURL returns the first http(s) URL found in text, such as the
// "copy share link" blurb apps put around the actual link.
// Text that already is a URL is returned trimmed.
func ExtractURL(text string) (string, bool) {
	text = normalizeInput(text)
	if hasHTTPScheme(text) && !strings.ContainsAny(text, " \t\n") {
		return text, true
	}
	m := strings.TrimRight(urlToken.FindString(text), ",.;:!)'")
	if m == "" {
		return "", false
	}
	return m, true
}
