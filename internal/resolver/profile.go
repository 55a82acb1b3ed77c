package resolver

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
)

const (
	DefaultTimeout = 10 * time.Second

	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	defaultAcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
)

// Profile is the set of request settings used when following a short link.
type Profile struct {
	Timeout time.Duration
	// Headers are sent with every request.
	Headers map[string]string
	// Platforms overrides or adds headers for a given platform.
	Platforms map[domain.Platform]map[string]string
	// ParseHTMLRefresh enables the meta refresh / canonical link fallback.
	ParseHTMLRefresh bool
	// Source is where the profile came from ("default" or a file path).
	Source string
}

// DefaultProfile returns the built-in browser-like profile.
func DefaultProfile() Profile {
	return Profile{
		Timeout: DefaultTimeout,
		Headers: map[string]string{
			"User-Agent":      defaultUserAgent,
			"Accept":          defaultAccept,
			"Accept-Language": defaultAcceptLanguage,
		},
		Platforms: map[domain.Platform]map[string]string{
			domain.PlatformDouyin:   {"Referer": "https://www.douyin.com/"},
			domain.PlatformYouTube:  {"Referer": "https://www.youtube.com/"},
			domain.PlatformBilibili: {"Referer": "https://www.bilibili.com/"},
		},
		Source: "default",
	}
}

// HeadersFor returns the merged header set for platform p.
func (p Profile) HeadersFor(platform domain.Platform) http.Header {
	h := make(http.Header, len(p.Headers)+1)
	for k, v := range p.Headers {
		h.Set(k, v)
	}
	for k, v := range p.Platforms[platform] {
		h.Set(k, v)
	}
	return h
}

func (p Profile) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}
