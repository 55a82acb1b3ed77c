package profile

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
	"github.com/MrSnakeDoc/linkfold/internal/resolver"
)

// Map overlays f on resolver.DefaultProfile.
// Header values set to "" remove the default header.
func Map(f File) (resolver.Profile, error) {
	p := resolver.DefaultProfile()

	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return resolver.Profile{}, fmt.Errorf("invalid timeout %q: %w", f.Timeout, err)
		}
		if d <= 0 {
			return resolver.Profile{}, fmt.Errorf("timeout must be positive, got %s", d)
		}
		p.Timeout = d
	}

	if f.ParseHTMLRefresh != nil {
		p.ParseHTMLRefresh = *f.ParseHTMLRefresh
	}

	overlay(p.Headers, f.Headers)

	for name, headers := range f.Platforms {
		platform := domain.Platform(strings.ToLower(strings.TrimSpace(name)))
		if domain.ParsePlatform(name) != platform {
			return resolver.Profile{}, fmt.Errorf("unknown platform %q in profile", name)
		}
		if p.Platforms[platform] == nil {
			p.Platforms[platform] = make(map[string]string, len(headers))
		}
		overlay(p.Platforms[platform], headers)
	}

	return p, nil
}

func overlay(dst, src map[string]string) {
	for k, v := range src {
		k = http.CanonicalHeaderKey(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if v == "" {
			delete(dst, k)
			continue
		}
		dst[k] = v
	}
}
