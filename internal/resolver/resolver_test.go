package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

func newTestResolver(p Profile) *Resolver {
	return New(p, logger.New("error", false))
}

func TestExpandRedirect(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Location", "https://www.youtube.com/watch?v=abcDEF")
		w.WriteHeader(http.StatusFound)
	}))
	defer ts.Close()

	r := newTestResolver(DefaultProfile())
	exp, err := r.Expand(context.Background(), ts.URL+"/abcDEF", domain.PlatformYouTube)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	if exp.URL != "https://www.youtube.com/watch?v=abcDEF" {
		t.Errorf("Expand().URL = %q, want %q", exp.URL, "https://www.youtube.com/watch?v=abcDEF")
	}
	if exp.Outcome != OutcomeRedirected {
		t.Errorf("Expand().Outcome = %v, want %v", exp.Outcome, OutcomeRedirected)
	}
	if exp.StatusCode != http.StatusFound {
		t.Errorf("Expand().StatusCode = %d, want %d", exp.StatusCode, http.StatusFound)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want exactly 1", n)
	}
}

func TestExpandRelativeLocation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/short" {
			http.Redirect(w, r, "/video/42?from=share", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	r := newTestResolver(DefaultProfile())
	exp, err := r.Expand(context.Background(), ts.URL+"/short", domain.PlatformDouyin)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	want := ts.URL + "/video/42?from=share"
	if exp.URL != want {
		t.Errorf("Expand().URL = %q, want %q", exp.URL, want)
	}
}

func TestExpandNoRedirect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><meta http-equiv="refresh" content="0; url=/target"></head></html>`))
	}))
	defer ts.Close()

	r := newTestResolver(DefaultProfile())
	exp, err := r.Expand(context.Background(), ts.URL+"/x", domain.PlatformBilibili)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if exp.Outcome != OutcomeNoRedirect {
		t.Errorf("Expand().Outcome = %v, want %v", exp.Outcome, OutcomeNoRedirect)
	}
	if exp.URL != ts.URL+"/x" {
		t.Errorf("Expand().URL = %q, want original URL", exp.URL)
	}
	if exp.Resolved() {
		t.Error("Resolved() = true, want false")
	}
}

func TestExpandHTMLRefreshFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "meta refresh",
			body: `<html><head><meta http-equiv="Refresh" content="0; URL='/video/7'"></head></html>`,
			want: "/video/7",
		},
		{
			name: "canonical link",
			body: `<html><head><link rel="canonical" href="https://www.bilibili.com/video/BV1ab"></head></html>`,
			want: "https://www.bilibili.com/video/BV1ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			p := DefaultProfile()
			p.ParseHTMLRefresh = true
			r := newTestResolver(p)

			exp, err := r.Expand(context.Background(), ts.URL+"/s", domain.PlatformBilibili)
			if err != nil {
				t.Fatalf("Expand() error = %v", err)
			}

			want := tt.want
			if strings.HasPrefix(want, "/") {
				want = ts.URL + want
			}
			if exp.URL != want {
				t.Errorf("Expand().URL = %q, want %q", exp.URL, want)
			}
			if exp.Outcome != OutcomeHTMLRefresh {
				t.Errorf("Expand().Outcome = %v, want %v", exp.Outcome, OutcomeHTMLRefresh)
			}
		})
	}
}

func TestExpandTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	p := DefaultProfile()
	p.Timeout = 50 * time.Millisecond
	r := newTestResolver(p)

	start := time.Now()
	_, err := r.Expand(context.Background(), ts.URL+"/slow", domain.PlatformDouyin)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("Expand() error = %v, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expand() took %v, want it bounded by the profile timeout", elapsed)
	}
}

func TestExpandNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := ts.URL
	ts.Close()

	r := newTestResolver(DefaultProfile())
	_, err := r.Expand(context.Background(), addr+"/gone", domain.PlatformOther)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("Expand() error = %v, want network error", err)
	}
}

func TestExpandSendsProfileHeaders(t *testing.T) {
	headers := make(chan http.Header, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	r := newTestResolver(DefaultProfile())
	if _, err := r.Expand(context.Background(), ts.URL, domain.PlatformDouyin); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	got := <-headers

	if ua := got.Get("User-Agent"); !strings.HasPrefix(ua, "Mozilla/5.0") {
		t.Errorf("User-Agent = %q, want browser-like", ua)
	}
	if ref := got.Get("Referer"); ref != "https://www.douyin.com/" {
		t.Errorf("Referer = %q, want douyin referer", ref)
	}
	if al := got.Get("Accept-Language"); al == "" {
		t.Error("Accept-Language not sent")
	}
}

func TestSetProfile(t *testing.T) {
	r := newTestResolver(DefaultProfile())

	p := DefaultProfile()
	p.Source = "/etc/linkfold/profile.yaml"
	p.Timeout = 3 * time.Second
	r.SetProfile(p)

	if got := r.Profile(); got.Source != p.Source || got.Timeout != p.Timeout {
		t.Errorf("Profile() = %+v, want %+v", got, p)
	}
}

func TestInspect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		http.Redirect(w, r, "https://example.com/final", http.StatusFound)
	}))
	defer ts.Close()

	r := newTestResolver(DefaultProfile())
	in, err := r.Inspect(context.Background(), ts.URL+"/a")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if in.StatusCode != http.StatusFound {
		t.Errorf("Inspect().StatusCode = %d, want %d", in.StatusCode, http.StatusFound)
	}
	if in.Location != "https://example.com/final" {
		t.Errorf("Inspect().Location = %q", in.Location)
	}
	if in.Headers["x-test"] != "yes" {
		t.Errorf("Inspect().Headers[x-test] = %q, want yes", in.Headers["x-test"])
	}

	if _, err := r.Inspect(context.Background(), "ftp://example.com"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Inspect(ftp) error = %v, want invalid input", err)
	}
}

func TestRefreshURL(t *testing.T) {
	tests := []struct {
		content  string
		expected string
	}{
		{"0; url=https://example.com/", "https://example.com/"},
		{"5;URL='/next'", "/next"},
		{"0", ""},
		{"0; foo=bar", ""},
	}

	for _, tt := range tests {
		if got := refreshURL(tt.content); got != tt.expected {
			t.Errorf("refreshURL(%q) = %q, want %q", tt.content, got, tt.expected)
		}
	}
}
