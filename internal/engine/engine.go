package engine

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/platform"
	"github.com/MrSnakeDoc/linkfold/internal/resolver"
)

// Expander follows a short link one hop.
type Expander interface {
	Expand(ctx context.Context, shortURL string, p domain.Platform) (resolver.Expansion, error)
}

// ResolvedLink is the outcome of resolving one raw input.
type ResolvedLink struct {
	RawInput     string                  `json:"rawInput"`
	Platform     domain.Platform         `json:"platform"`
	CanonicalURL string                  `json:"canonicalUrl"`
	ExpandedURL  string                  `json:"expandedUrl"`
	Status       domain.ResolutionStatus `json:"status"`
	Failure      domain.ErrorKind        `json:"failure,omitempty"`
}

// Failed reports whether a short link could not be expanded.
func (r ResolvedLink) Failed() bool { return r.Status == domain.StatusResolutionFailed }

// Engine turns raw share links into canonical links.
type Engine struct {
	detector *platform.Detector
	registry *platform.Registry
	expander Expander
	logger   logger.Logger
}

func New(detector *platform.Detector, registry *platform.Registry, expander Expander, log logger.Logger) *Engine {
	return &Engine{
		detector: detector,
		registry: registry,
		expander: expander,
		logger:   log,
	}
}

// Registry returns the strategy registry the engine resolves with.
func (e *Engine) Registry() *platform.Registry { return e.registry }

// Resolve validates raw, expands it when it is a short link and
// canonicalizes the result. The only error returned is InvalidInput;
// expansion failures are reported through Status and Failure.
func (e *Engine) Resolve(ctx context.Context, raw string) (ResolvedLink, error) {
	input := normalizeInput(raw)
	if !hasHTTPScheme(input) {
		return ResolvedLink{}, domain.NewResolutionError(domain.KindInvalidInput, raw, nil)
	}

	p := e.detector.Detect(input)
	strategy := e.registry.For(p)

	out := ResolvedLink{
		RawInput:    raw,
		Platform:    p,
		ExpandedURL: input,
		Status:      domain.StatusResolved,
	}

	target := input
	if strategy.IsShortForm(input) {
		expanded, kind := e.expand(ctx, input, p)
		if kind != "" {
			out.Status = domain.StatusResolutionFailed
			out.Failure = kind
		} else {
			target = expanded
			out.ExpandedURL = expanded
			// A short link may land on another platform
			if next := e.detector.Detect(expanded); next != p {
				out.Platform = next
				strategy = e.registry.For(next)
			}
		}
	}

	out.CanonicalURL = strategy.Canonicalize(target)
	return out, nil
}

// expand returns the expanded URL, or the failure kind when the hop
// yielded nothing usable.
func (e *Engine) expand(ctx context.Context, shortURL string, p domain.Platform) (string, domain.ErrorKind) {
	exp, err := e.expander.Expand(ctx, shortURL, p)
	if err != nil {
		kind := domain.KindOf(err)
		if kind == "" || kind == domain.KindInvalidInput {
			kind = domain.KindNetworkError
		}
		e.logger.Warn("short link expansion failed",
			logger.String("url", shortURL),
			logger.String("platform", string(p)),
			logger.String("kind", string(kind)),
			logger.Error(err))
		return "", kind
	}

	if !exp.Resolved() || !hasHTTPScheme(exp.URL) {
		e.logger.Warn("short link did not resolve",
			logger.String("url", shortURL),
			logger.Int("status", exp.StatusCode))
		return "", domain.KindUnresolvedShortLink
	}

	return exp.URL, ""
}

// normalizeInput trims raw and folds full-width characters up to the end
// of the first URL host, which show up in links pasted from CJK input
// methods. Path, query and fragment keep their characters.
func normalizeInput(raw string) string {
	s := strings.TrimSpace(raw)

	var b strings.Builder
	b.Grow(len(s))
	inHost := false
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		folded := width.Fold.String(s[i : i+size])
		i += size

		if inHost && (folded == "/" || folded == "?" || folded == "#") {
			b.WriteString(folded)
			b.WriteString(s[i:])
			break
		}
		b.WriteString(folded)
		if !inHost && strings.HasSuffix(b.String(), "://") {
			inHost = true
		}
	}
	return strings.TrimSpace(b.String())
}

func hasHTTPScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsInvalidInput reports whether err rejects the caller's input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput)
}
