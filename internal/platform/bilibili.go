package platform

import (
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
)

const bilibiliShortHost = "b23.tv"

var (
	bilibiliBV = regexp.MustCompile(`BV[0-9A-Za-z]+`)
	bilibiliAV = regexp.MustCompile(`(?i)\bav\d+`)
)

// Bilibili keeps the path as is and only drops query and fragment.
type Bilibili struct{}

func (Bilibili) Platform() domain.Platform { return domain.PlatformBilibili }

func (Bilibili) IsApplicable(rawURL string) bool { return matchesHost(rawURL, bilibiliHosts) }

func (Bilibili) IsShortForm(rawURL string) bool { return isShortHost(rawURL, bilibiliShortHost) }

func (Bilibili) Canonicalize(rawURL string) string { return cleanURL(rawURL) }

// ExtractID returns the BV code, or the av number when no BV code is present.
func (Bilibili) ExtractID(rawURL string) (string, bool) {
	target := strings.TrimSpace(rawURL)
	if u := parseURL(target); u != nil {
		target = u.Path
	}
	if id := bilibiliBV.FindString(target); id != "" {
		return id, true
	}
	if id := bilibiliAV.FindString(target); id != "" {
		return id, true
	}
	return "", false
}

func (b Bilibili) DisplayInfo(rawURL string) DisplayInfo {
	if id, ok := b.ExtractID(rawURL); ok {
		return DisplayInfo{Title: "Bilibili video " + id}
	}
	return DisplayInfo{Title: "Bilibili link"}
}
