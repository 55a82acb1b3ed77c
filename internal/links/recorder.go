package links

import (
	"context"

	"github.com/MrSnakeDoc/linkfold/internal/engine"
)

// Recorder resolves through Create, so every resolved link is also stored.
// It lets batch runs fill the store the same way single creates do.
type Recorder struct {
	Service *Service
}

func (r Recorder) Resolve(ctx context.Context, raw string) (engine.ResolvedLink, error) {
	rec, _, err := r.Service.Create(ctx, raw)
	if err != nil {
		return engine.ResolvedLink{}, err
	}
	return engine.ResolvedLink{
		RawInput:     raw,
		Platform:     rec.Platform,
		CanonicalURL: rec.CanonicalURL,
		ExpandedURL:  rec.CanonicalURL,
		Status:       rec.Status,
		Failure:      rec.Failure,
	}, nil
}
