package domain

import "strings"

// Platform is the closed set of platform tags a link can resolve to.
type Platform string

const (
	PlatformDouyin   Platform = "douyin"
	PlatformYouTube  Platform = "youtube"
	PlatformBilibili Platform = "bilibili"
	PlatformOther    Platform = "other"
)

// Platforms lists every tag in detection priority order, Other last.
var Platforms = []Platform{PlatformDouyin, PlatformYouTube, PlatformBilibili, PlatformOther}

// DisplayName returns the human readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformDouyin:
		return "Douyin"
	case PlatformYouTube:
		return "YouTube"
	case PlatformBilibili:
		return "Bilibili"
	default:
		return "Other"
	}
}

// ParsePlatform maps a stored tag back to a Platform.
// Unknown values map to PlatformOther.
func ParsePlatform(s string) Platform {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformDouyin, PlatformYouTube, PlatformBilibili:
		return p
	default:
		return PlatformOther
	}
}
