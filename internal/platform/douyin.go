package platform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
)

const (
	douyinPrimaryHost = "www.douyin.com"
	douyinShortHost   = "v.douyin.com"
)

var (
	douyinIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`video/(\d+)`),
		regexp.MustCompile(`note/(\d+)`),
	}
	numericSegment = regexp.MustCompile(`^\d+$`)
)

// Douyin handles www.douyin.com, the legacy iesdouyin.com share pages and
// v.douyin.com short links.
type Douyin struct{}

func (Douyin) Platform() domain.Platform { return domain.PlatformDouyin }

func (Douyin) IsApplicable(rawURL string) bool { return matchesHost(rawURL, douyinHosts) }

func (Douyin) IsShortForm(rawURL string) bool { return isShortHost(rawURL, douyinShortHost) }

// Canonicalize rewrites video and note pages to
// https://www.douyin.com/{video|note}/{id}. Share pages use the first
// all-digit path segment as the video id.
func (Douyin) Canonicalize(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	u := parseURL(trimmed)
	if u == nil {
		return trimmed
	}

	segments := pathSegments(u.Path)

	if strings.Contains(u.Path, "/share/video/") {
		for _, s := range segments {
			if numericSegment.MatchString(s) {
				return fmt.Sprintf("https://%s/video/%s", douyinPrimaryHost, s)
			}
		}
	}

	host := strings.ToLower(u.Hostname())
	if host != douyinShortHost && strings.HasSuffix(host, "douyin.com") && len(segments) >= 2 {
		kind, id := segments[0], segments[1]
		if (kind == "video" || kind == "note") && numericSegment.MatchString(id) {
			return fmt.Sprintf("https://%s/%s/%s", douyinPrimaryHost, kind, id)
		}
	}

	return stripQueryAndFragment(trimmed)
}

func (Douyin) ExtractID(rawURL string) (string, bool) {
	for _, p := range douyinIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func (d Douyin) DisplayInfo(rawURL string) DisplayInfo {
	if id, ok := d.ExtractID(rawURL); ok {
		return DisplayInfo{Title: "Douyin video " + id}
	}
	if d.IsShortForm(rawURL) {
		return DisplayInfo{Title: "Douyin short link (unresolved)"}
	}
	return DisplayInfo{Title: "Douyin link"}
}
