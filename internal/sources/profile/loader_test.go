package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
	"github.com/MrSnakeDoc/linkfold/internal/resolver"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeProfile(t, `---
timeout: 4s
parseHtmlRefresh: true
headers:
  user-agent: linkfold-test/1.0
  Accept-Language: ""
platforms:
  bilibili:
    Referer: https://m.bilibili.com/
  youtube:
    X-Extra: "1"
`)

	p, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if p.Timeout != 4*time.Second {
		t.Errorf("Timeout = %v, want 4s", p.Timeout)
	}
	if !p.ParseHTMLRefresh {
		t.Error("ParseHTMLRefresh = false, want true")
	}
	if p.Source != path {
		t.Errorf("Source = %q, want %q", p.Source, path)
	}

	h := p.HeadersFor(domain.PlatformBilibili)
	if got := h.Get("User-Agent"); got != "linkfold-test/1.0" {
		t.Errorf("User-Agent = %q, want override", got)
	}
	if got := h.Get("Accept-Language"); got != "" {
		t.Errorf("Accept-Language = %q, want removed", got)
	}
	if got := h.Get("Referer"); got != "https://m.bilibili.com/" {
		t.Errorf("Referer = %q, want override", got)
	}

	yt := p.HeadersFor(domain.PlatformYouTube)
	if yt.Get("X-Extra") != "1" || yt.Get("Referer") != "https://www.youtube.com/" {
		t.Errorf("youtube headers = %v, want default referer plus X-Extra", yt)
	}
}

func TestLoaderLoadWithEnvVariables(t *testing.T) {
	t.Setenv("LINKFOLD_TEST_UA", "agent-from-env")

	path := writeProfile(t, `headers:
  User-Agent: ${LINKFOLD_TEST_UA}
  X-Missing: "${LINKFOLD_TEST_UNSET_VAR}"
`)

	p, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	h := p.HeadersFor(domain.PlatformOther)
	if got := h.Get("User-Agent"); got != "agent-from-env" {
		t.Errorf("User-Agent = %q, want %q", got, "agent-from-env")
	}
	if _, ok := h["X-Missing"]; ok {
		t.Error("X-Missing present, want unset variable to drop the header")
	}
}

func TestLoaderLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "headers: [unclosed"},
		{name: "bad timeout", content: "timeout: soon"},
		{name: "negative timeout", content: "timeout: -1s"},
		{name: "unknown platform", content: "platforms:\n  tiktok:\n    Referer: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLoader(writeProfile(t, tt.content)).Load(); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}

	if _, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load(); err == nil {
		t.Error("Load() on missing file error = nil, want error")
	}
}

func TestMapEmptyFileKeepsDefaults(t *testing.T) {
	p, err := Map(File{})
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	def := resolver.DefaultProfile()
	if p.Timeout != def.Timeout {
		t.Errorf("Timeout = %v, want %v", p.Timeout, def.Timeout)
	}
	if p.ParseHTMLRefresh {
		t.Error("ParseHTMLRefresh = true, want default false")
	}
	if len(p.Headers) != len(def.Headers) {
		t.Errorf("Headers = %v, want defaults", p.Headers)
	}
}
