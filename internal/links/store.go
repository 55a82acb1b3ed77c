package links

import (
	"context"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
)

// Store is the dedup store contract.
//
// InsertIfAbsent is atomic on CanonicalURL: when a record with the same
// canonical URL exists, it is returned with inserted=false and rec is
// discarded. An id already taken by another canonical URL yields
// domain.ErrIDConflict.
type Store interface {
	InsertIfAbsent(ctx context.Context, rec *domain.LinkRecord) (stored *domain.LinkRecord, inserted bool, err error)
	GetByID(ctx context.Context, id string) (*domain.LinkRecord, error)
	GetByCanonical(ctx context.Context, canonicalURL string) (*domain.LinkRecord, error)
	RecordClick(ctx context.Context, id string, platform domain.Platform) error
	Recent(ctx context.Context, limit int) ([]*domain.LinkRecord, error)
	PlatformCounts(ctx context.Context) (map[domain.Platform]int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Pruner is implemented by stores whose records can expire.
type Pruner interface {
	PruneIndex(ctx context.Context) (int, error)
}
