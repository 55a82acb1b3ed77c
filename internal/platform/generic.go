package platform

import "github.com/MrSnakeDoc/linkfold/internal/domain"

// Generic is the fallback strategy. It accepts anything and never fails.
type Generic struct{}

func (Generic) Platform() domain.Platform { return domain.PlatformOther }

func (Generic) IsApplicable(string) bool { return true }

func (Generic) IsShortForm(string) bool { return false }

func (Generic) Canonicalize(rawURL string) string { return cleanURL(rawURL) }

func (Generic) ExtractID(string) (string, bool) { return "", false }

func (Generic) DisplayInfo(rawURL string) DisplayInfo {
	if host := Host(rawURL); host != "" {
		return DisplayInfo{Title: "Link - " + host}
	}
	return DisplayInfo{Title: "Unknown link"}
}
