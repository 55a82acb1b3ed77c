package platform

import (
	"testing"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		input    string
		expected string
	}{
		{
			name:     "douyin video strips query",
			strategy: Douyin{},
			input:    "https://www.douyin.com/video/7300000000000000000?previous_page=app_code_link",
			expected: "https://www.douyin.com/video/7300000000000000000",
		},
		{
			name:     "douyin legacy share form",
			strategy: Douyin{},
			input:    "https://www.iesdouyin.com/share/video/1234567890/?from=x",
			expected: "https://www.douyin.com/video/1234567890",
		},
		{
			name:     "douyin trailing slash",
			strategy: Douyin{},
			input:    "https://www.douyin.com/video/1234567890/",
			expected: "https://www.douyin.com/video/1234567890",
		},
		{
			name:     "douyin note",
			strategy: Douyin{},
			input:    "https://www.douyin.com/note/42?x=1",
			expected: "https://www.douyin.com/note/42",
		},
		{
			name:     "douyin other page",
			strategy: Douyin{},
			input:    "https://www.douyin.com/user/MS4wLj?from=share#top",
			expected: "https://www.douyin.com/user/MS4wLj",
		},
		{
			name:     "douyin unresolved short link",
			strategy: Douyin{},
			input:    "https://v.douyin.com/iRNBho6u/?t=1",
			expected: "https://v.douyin.com/iRNBho6u/",
		},
		{
			name:     "youtube short link",
			strategy: YouTube{},
			input:    "https://youtu.be/abcDEF?si=tracking",
			expected: "https://www.youtube.com/watch?v=abcDEF",
		},
		{
			name:     "youtube watch with extras",
			strategy: YouTube{},
			input:    "https://www.youtube.com/watch?v=abcDEF&feature=youtu.be&t=42",
			expected: "https://www.youtube.com/watch?v=abcDEF",
		},
		{
			name:     "youtube mobile",
			strategy: YouTube{},
			input:    "https://m.youtube.com/watch?list=PL1&v=abc_DE-F",
			expected: "https://www.youtube.com/watch?v=abc_DE-F",
		},
		{
			name:     "youtube shorts",
			strategy: YouTube{},
			input:    "https://www.youtube.com/shorts/abcDEF",
			expected: "https://www.youtube.com/watch?v=abcDEF",
		},
		{
			name:     "youtube channel has no id",
			strategy: YouTube{},
			input:    "https://www.youtube.com/@somebody?si=x",
			expected: "https://www.youtube.com/@somebody",
		},
		{
			name:     "bilibili strips query and fragment",
			strategy: Bilibili{},
			input:    "https://www.bilibili.com/video/BV1xx411c7mD/?spm_id_from=333#reply",
			expected: "https://www.bilibili.com/video/BV1xx411c7mD/",
		},
		{
			name:     "generic strips query",
			strategy: Generic{},
			input:    "  https://example.com/a/b?utm_source=x#frag  ",
			expected: "https://example.com/a/b",
		},
		{
			name:     "generic keeps unparseable input",
			strategy: Generic{},
			input:    "  not a url?x  ",
			expected: "not a url?x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.strategy.Canonicalize(tt.input); got != tt.expected {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"https://www.douyin.com/video/1?x=1",
		"https://www.iesdouyin.com/share/video/99/?from=x",
		"https://v.douyin.com/abc/",
		"https://www.douyin.com/user/abc?x#y",
		"https://youtu.be/abc",
		"https://www.youtube.com/watch?v=abc&t=1",
		"https://www.youtube.com/feed/trending?x=1",
		"https://www.bilibili.com/video/av170001?p=2",
		"https://b23.tv/xyz",
		"https://example.com/?#",
		"https://example.com/x ?utm=1",
		"https://example.com/x #top",
		"https://www.douyin.com/video/7 ?previous_page=app",
		"https://www.douyin.com/user/abc #y",
		"https://www.youtube.com/feed/trending ?x=1",
		"https://www.bilibili.com/video/BV1ab ?p=2",
		"https://www.bilibili.com/video/BV1ab #reply",
		"http://[::1",
		"garbage",
		"",
	}

	for _, s := range DefaultRegistry().Strategies() {
		for _, in := range inputs {
			once := s.Canonicalize(in)
			twice := s.Canonicalize(once)
			if once != twice {
				t.Errorf("%s: Canonicalize not idempotent for %q: %q then %q", s.Platform(), in, once, twice)
			}
		}
	}
}

func TestCanonicalizeTrimsBeforeQuery(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"https://example.com/x ?utm=1", "https://example.com/x"},
		{"https://www.bilibili.com/video/BV1ab #reply", "https://www.bilibili.com/video/BV1ab"},
		{"https://www.douyin.com/user/abc ?x=1", "https://www.douyin.com/user/abc"},
	}

	r := DefaultRegistry()
	for _, tt := range tests {
		if got := r.Match(tt.in).Canonicalize(tt.in); got != tt.expected {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestIsShortForm(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		input    string
		expected bool
	}{
		{"douyin short", Douyin{}, "https://v.douyin.com/iRNBho6u/", true},
		{"douyin short without path", Douyin{}, "https://v.douyin.com/", false},
		{"douyin long", Douyin{}, "https://www.douyin.com/video/1", false},
		{"youtube short", YouTube{}, "https://youtu.be/abc", true},
		{"youtube long", YouTube{}, "https://www.youtube.com/watch?v=abc", false},
		{"bilibili short", Bilibili{}, "https://b23.tv/abc", true},
		{"bilibili long", Bilibili{}, "https://www.bilibili.com/video/BV1", false},
		{"generic never short", Generic{}, "https://bit.ly/abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.strategy.IsShortForm(tt.input); got != tt.expected {
				t.Errorf("IsShortForm(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		input    string
		expected string
		ok       bool
	}{
		{"douyin video", Douyin{}, "https://www.douyin.com/video/7300000000000000000", "7300000000000000000", true},
		{"douyin note", Douyin{}, "https://www.douyin.com/note/55", "55", true},
		{"douyin none", Douyin{}, "https://www.douyin.com/user/x", "", false},
		{"youtube short", YouTube{}, "https://youtu.be/abcDEF", "abcDEF", true},
		{"youtube watch", YouTube{}, "https://www.youtube.com/watch?v=abcDEF", "abcDEF", true},
		{"youtube embed", YouTube{}, "https://www.youtube.com/embed/abcDEF", "abcDEF", true},
		{"youtube none", YouTube{}, "https://www.youtube.com/", "", false},
		{"bilibili bv", Bilibili{}, "https://www.bilibili.com/video/BV1xx411c7mD?p=1", "BV1xx411c7mD", true},
		{"bilibili av", Bilibili{}, "https://www.bilibili.com/video/av170001", "av170001", true},
		{"bilibili av uppercase", Bilibili{}, "https://www.bilibili.com/video/AV170001", "AV170001", true},
		{"bilibili none", Bilibili{}, "https://www.bilibili.com/anime", "", false},
		{"generic", Generic{}, "https://example.com/video/1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.strategy.ExtractID(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ExtractID(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestDisplayInfo(t *testing.T) {
	info := YouTube{}.DisplayInfo("https://www.youtube.com/watch?v=abcDEF")
	if info.Thumbnail != "https://img.youtube.com/vi/abcDEF/0.jpg" {
		t.Errorf("Thumbnail = %q, want %q", info.Thumbnail, "https://img.youtube.com/vi/abcDEF/0.jpg")
	}
	if info.Title != "YouTube video abcDEF" {
		t.Errorf("Title = %q", info.Title)
	}

	if got := (Douyin{}).DisplayInfo("https://www.douyin.com/video/12").Title; got != "Douyin video 12" {
		t.Errorf("Douyin title = %q", got)
	}
	if got := (Bilibili{}).DisplayInfo("https://www.bilibili.com/video/BV1ab").Title; got != "Bilibili video BV1ab" {
		t.Errorf("Bilibili title = %q", got)
	}
	if got := (Generic{}).DisplayInfo("https://Example.com/x").Title; got != "Link - example.com" {
		t.Errorf("Generic title = %q", got)
	}
	if got := (Generic{}).DisplayInfo("nope").Title; got != "Unknown link" {
		t.Errorf("Generic title = %q", got)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	all := r.Strategies()
	if last := all[len(all)-1]; last.Platform() != domain.PlatformOther {
		t.Errorf("last strategy = %v, want generic fallback", last.Platform())
	}

	for _, p := range domain.Platforms {
		if got := r.For(p).Platform(); got != p {
			t.Errorf("For(%v) = %v", p, got)
		}
	}

	if got := r.For(domain.Platform("unknown")).Platform(); got != domain.PlatformOther {
		t.Errorf("For(unknown) = %v, want other", got)
	}

	if got := r.Match("https://b23.tv/abc").Platform(); got != domain.PlatformBilibili {
		t.Errorf("Match(b23.tv) = %v", got)
	}
	if got := r.Match("https://example.org").Platform(); got != domain.PlatformOther {
		t.Errorf("Match(example.org) = %v", got)
	}
}
