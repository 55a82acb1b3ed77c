package platform

import "github.com/MrSnakeDoc/linkfold/internal/domain"

// Rule maps a set of hostname fragments to a platform.
type Rule struct {
	Platform domain.Platform
	Hosts    []string
}

var (
	douyinHosts   = []string{"douyin.com", "iesdouyin.com"}
	youtubeHosts  = []string{"youtube.com", "youtu.be"}
	bilibiliHosts = []string{"bilibili.com", "b23.tv"}
)

// ShortHosts lists the dedicated short-link domains of the known platforms.
var ShortHosts = []string{douyinShortHost, youtubeShortHost, bilibiliShortHost}

// DefaultRules returns the detection rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Platform: domain.PlatformDouyin, Hosts: douyinHosts},
		{Platform: domain.PlatformYouTube, Hosts: youtubeHosts},
		{Platform: domain.PlatformBilibili, Hosts: bilibiliHosts},
	}
}

// Detector classifies URLs into platform tags.
// It is pure and never touches the network.
type Detector struct {
	rules []Rule
}

// NewDetector builds a detector from rules; nil means DefaultRules.
func NewDetector(rules []Rule) *Detector {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Detector{rules: rules}
}

// Detect returns the platform of the first matching rule, or PlatformOther.
func (d *Detector) Detect(rawURL string) domain.Platform {
	for _, r := range d.rules {
		if matchesHost(rawURL, r.Hosts) {
			return r.Platform
		}
	}
	return domain.PlatformOther
}
