package platform

import (
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
)

const (
	youtubeShortHost     = "youtu.be"
	youtubeCanonicalHost = "www.youtube.com"
	youtubeThumbnailHost = "img.youtube.com"
)

var youtubeID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// YouTube folds youtu.be, watch, embed, shorts and live links into a
// single watch URL keyed by the video id.
type YouTube struct{}

func (YouTube) Platform() domain.Platform { return domain.PlatformYouTube }

func (YouTube) IsApplicable(rawURL string) bool { return matchesHost(rawURL, youtubeHosts) }

func (YouTube) IsShortForm(rawURL string) bool { return isShortHost(rawURL, youtubeShortHost) }

func (y YouTube) Canonicalize(rawURL string) string {
	if id, ok := y.ExtractID(rawURL); ok {
		return watchURL(id)
	}
	return cleanURL(rawURL)
}

func (YouTube) ExtractID(rawURL string) (string, bool) {
	u := parseURL(strings.TrimSpace(rawURL))
	if u == nil {
		return "", false
	}

	segments := pathSegments(u.Path)

	if strings.ToLower(u.Hostname()) == youtubeShortHost {
		if len(segments) > 0 && youtubeID.MatchString(segments[0]) {
			return segments[0], true
		}
		return "", false
	}

	if v := u.Query().Get("v"); youtubeID.MatchString(v) {
		return v, true
	}

	if len(segments) >= 2 {
		switch segments[0] {
		case "embed", "v", "shorts", "live":
			if youtubeID.MatchString(segments[1]) {
				return segments[1], true
			}
		}
	}
	return "", false
}

func (y YouTube) DisplayInfo(rawURL string) DisplayInfo {
	id, ok := y.ExtractID(rawURL)
	if !ok {
		return DisplayInfo{Title: "YouTube link"}
	}
	return DisplayInfo{
		Title:     "YouTube video " + id,
		Thumbnail: "https://" + youtubeThumbnailHost + "/vi/" + id + "/0.jpg",
	}
}

func watchURL(id string) string {
	return "https://" + youtubeCanonicalHost + "/watch?v=" + id
}
