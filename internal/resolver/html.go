package resolver

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxHTMLBody = 512 << 10

func isHTML(h http.Header) bool {
	mediaType, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// htmlTarget looks for a meta refresh, then a canonical link, in the first
// 512 KiB of body. Relative targets are resolved against base.
func htmlTarget(body io.Reader, base *url.URL) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxHTMLBody))
	if err != nil {
		return "", false
	}

	var target string
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		equiv, _ := s.Attr("http-equiv")
		if !strings.EqualFold(equiv, "refresh") {
			return true
		}
		content, _ := s.Attr("content")
		target = refreshURL(content)
		return target == ""
	})

	if target == "" {
		if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
			target = strings.TrimSpace(href)
		}
	}

	if target == "" {
		return "", false
	}
	return resolveReference(base, target)
}

// refreshURL extracts the url part of a refresh directive such as
// "0; url=https://example.com/".
func refreshURL(content string) string {
	_, rest, found := strings.Cut(content, ";")
	if !found {
		return ""
	}
	rest = strings.TrimSpace(rest)
	key, value, found := strings.Cut(rest, "=")
	if !found || !strings.EqualFold(strings.TrimSpace(key), "url") {
		return ""
	}
	return strings.Trim(strings.TrimSpace(value), `'"`)
}
