package platform

import (
	"net/url"
	"strings"
)

// parseURL returns the parsed URL, or nil when s does not carry a host.
func parseURL(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return nil
	}
	return u
}

// Host returns the lowercase hostname of rawURL, or "" when it cannot be parsed.
func Host(rawURL string) string {
	u := parseURL(strings.TrimSpace(rawURL))
	if u == nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// stripQueryAndFragment cuts s at the first '?' or '#' and trims what is
// left, so "https://a.com/x ?q" and "https://a.com/x" share a key.
func stripQueryAndFragment(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// cleanURL is the shared best-effort canonicalization: trim, then drop
// query and fragment. Unparseable input comes back trimmed and untouched.
func cleanURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if parseURL(trimmed) == nil {
		return trimmed
	}
	return stripQueryAndFragment(trimmed)
}

// pathSegments splits a URL path into its non-empty segments.
func pathSegments(p string) []string {
	raw := strings.Split(p, "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// matchesHost reports whether the host of rawURL contains one of hosts.
// When rawURL has no parseable host the whole lowercase string is matched.
func matchesHost(rawURL string, hosts []string) bool {
	target := Host(rawURL)
	if target == "" {
		target = strings.ToLower(strings.TrimSpace(rawURL))
	}
	for _, h := range hosts {
		if strings.Contains(target, h) {
			return true
		}
	}
	return false
}

// isShortHost reports whether rawURL sits on shortHost with a non-empty path.
func isShortHost(rawURL, shortHost string) bool {
	u := parseURL(strings.TrimSpace(rawURL))
	if u == nil {
		return false
	}
	if strings.ToLower(u.Hostname()) != shortHost {
		return false
	}
	return strings.Trim(u.Path, "/") != ""
}
