package platform

import "github.com/MrSnakeDoc/linkfold/internal/domain"

// DisplayInfo is derived, non-authoritative metadata for a link.
type DisplayInfo struct {
	Title     string
	Thumbnail string
}

// Strategy is the per-platform canonicalization policy.
// Implementations are stateless and safe for concurrent use.
type Strategy interface {
	Platform() domain.Platform
	IsApplicable(rawURL string) bool
	IsShortForm(rawURL string) bool
	// Canonicalize must be deterministic and idempotent.
	Canonicalize(rawURL string) string
	ExtractID(rawURL string) (string, bool)
	DisplayInfo(rawURL string) DisplayInfo
}

// Registry is the ordered set of strategies. Generic is always last.
type Registry struct {
	strategies []Strategy
	fallback   Strategy
}

// NewRegistry registers strategies in order and appends Generic.
func NewRegistry(strategies ...Strategy) *Registry {
	fallback := Generic{}
	all := make([]Strategy, 0, len(strategies)+1)
	all = append(all, strategies...)
	all = append(all, fallback)
	return &Registry{strategies: all, fallback: fallback}
}

// DefaultRegistry returns Douyin, YouTube, Bilibili and Generic.
func DefaultRegistry() *Registry {
	return NewRegistry(Douyin{}, YouTube{}, Bilibili{})
}

// For returns the strategy registered for p, or Generic.
func (r *Registry) For(p domain.Platform) Strategy {
	for _, s := range r.strategies {
		if s.Platform() == p {
			return s
		}
	}
	return r.fallback
}

// Match returns the first strategy applicable to rawURL.
func (r *Registry) Match(rawURL string) Strategy {
	for _, s := range r.strategies {
		if s.IsApplicable(rawURL) {
			return s
		}
	}
	return r.fallback
}

// Strategies returns the registered strategies in order.
func (r *Registry) Strategies() []Strategy {
	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}
