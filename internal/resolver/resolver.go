package resolver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/utils"
)

// Outcome tells how an expansion produced its URL.
type Outcome string

const (
	OutcomeRedirected  Outcome = "redirected"
	OutcomeFinalURL    Outcome = "final_url"
	OutcomeHTMLRefresh Outcome = "html_refresh"
	OutcomeNoRedirect  Outcome = "no_redirect"
)

// Expansion is the result of one hop.
type Expansion struct {
	URL        string
	Outcome    Outcome
	StatusCode int
}

// Resolved reports whether the hop produced a target other than the input.
func (e Expansion) Resolved() bool { return e.Outcome != OutcomeNoRedirect }

const maxDrain = 64 << 10

// Resolver performs a single manual-redirect GET per call.
// Safe for concurrent use; the profile can be swapped at runtime.
type Resolver struct {
	client  *http.Client
	profile atomic.Pointer[Profile]
	logger  logger.Logger
}

// New creates a resolver using profile.
func New(profile Profile, log logger.Logger) *Resolver {
	r := &Resolver{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: DefaultTimeout,
				}).DialContext,
				TLSHandshakeTimeout: DefaultTimeout,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				MaxIdleConnsPerHost: 4,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// One hop only: the caller reads Location itself
				return http.ErrUseLastResponse
			},
		},
		logger: log,
	}
	r.SetProfile(profile)
	return r
}

// SetProfile swaps the active header profile.
func (r *Resolver) SetProfile(p Profile) {
	r.profile.Store(&p)
}

// Profile returns the active header profile.
func (r *Resolver) Profile() Profile {
	return *r.profile.Load()
}

// Expand issues one GET against shortURL and reports where it points.
// A response without a redirect is not an error: it yields OutcomeNoRedirect
// with the original URL.
func (r *Resolver) Expand(ctx context.Context, shortURL string, platform domain.Platform) (Expansion, error) {
	profile := r.Profile()

	resp, cancel, err := r.do(ctx, shortURL, profile.HeadersFor(platform), profile)
	if err != nil {
		return Expansion{}, err
	}
	defer cancel()
	defer drainAndClose(resp.Body)

	exp := Expansion{URL: shortURL, Outcome: OutcomeNoRedirect, StatusCode: resp.StatusCode}

	if isRedirect(resp.StatusCode) {
		if loc, err := resp.Location(); err == nil {
			exp.URL = loc.String()
			exp.Outcome = OutcomeRedirected
			r.logger.Debug("short link redirected",
				logger.String("url", shortURL),
				logger.String("location", exp.URL),
				logger.Int("status", resp.StatusCode))
			return exp, nil
		}
	}

	if final := resp.Request.URL.String(); final != requestedURL(shortURL) {
		exp.URL = final
		exp.Outcome = OutcomeFinalURL
		return exp, nil
	}

	if profile.ParseHTMLRefresh && resp.StatusCode < 300 && isHTML(resp.Header) {
		if target, ok := htmlTarget(resp.Body, resp.Request.URL); ok && target != shortURL {
			exp.URL = target
			exp.Outcome = OutcomeHTMLRefresh
			return exp, nil
		}
	}

	r.logger.Debug("short link did not redirect",
		logger.String("url", shortURL),
		logger.Int("status", resp.StatusCode))
	return exp, nil
}

// do sends the GET. The returned cancel must be called once the body is done.
func (r *Resolver) do(ctx context.Context, rawURL string, headers http.Header, profile Profile) (*http.Response, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, profile.timeout())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		cancel()
		return nil, nil, domain.NewResolutionError(domain.KindInvalidInput, rawURL, err)
	}
	req.Header = headers

	resp, err := r.client.Do(req)
	if err != nil {
		cancel()
		return nil, nil, classify(rawURL, err)
	}
	return resp, cancel, nil
}

// classify maps a transport error onto the resolution error taxonomy.
func classify(rawURL string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewResolutionError(domain.KindTimeout, rawURL, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewResolutionError(domain.KindTimeout, rawURL, err)
	}
	return domain.NewResolutionError(domain.KindNetworkError, rawURL, fmt.Errorf("request failed: %w", err))
}

// requestedURL is shortURL as net/url renders it, so formatting
// differences alone never count as a redirect.
func requestedURL(shortURL string) string {
	u, err := url.Parse(shortURL)
	if err != nil {
		return shortURL
	}
	return u.String()
}

func isRedirect(code int) bool {
	return code >= 300 && code < 400
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrain))
	utils.Close(body)
}

func resolveReference(base *url.URL, ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}
