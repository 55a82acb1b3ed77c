package links

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
	"github.com/MrSnakeDoc/linkfold/internal/engine"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/platform"
	"github.com/MrSnakeDoc/linkfold/internal/utils"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500

	idAttempts    = 3
	unknownDomain = "unknown"
)

// Service creates, deduplicates and serves link records.
type Service struct {
	engine *engine.Engine
	store  Store
	logger logger.Logger

	newID func() (string, error)
	now   func() time.Time

	group singleflight.Group
}

func NewService(e *engine.Engine, store Store, log logger.Logger) *Service {
	return &Service{
		engine: e,
		store:  store,
		logger: log,
		newID:  utils.NewLinkID,
		now:    time.Now,
	}
}

type createResult struct {
	record  *domain.LinkRecord
	created bool
}

// Create resolves raw and stores a record for its canonical URL, unless one
// already exists. created is false when an existing record is returned.
func (s *Service) Create(ctx context.Context, raw string) (*domain.LinkRecord, bool, error) {
	resolved, err := s.engine.Resolve(ctx, raw)
	if err != nil {
		return nil, false, err
	}

	var ran bool
	v, err, _ := s.group.Do(resolved.CanonicalURL, func() (interface{}, error) {
		ran = true
		rec, created, err := s.insert(ctx, resolved)
		if err != nil {
			return nil, err
		}
		return createResult{record: rec, created: created}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res := v.(createResult)
	// callers that joined an in-flight create did not create anything
	return res.record, res.created && ran, nil
}

func (s *Service) insert(ctx context.Context, resolved engine.ResolvedLink) (*domain.LinkRecord, bool, error) {
	if existing, err := s.store.GetByCanonical(ctx, resolved.CanonicalURL); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up canonical url: %w", err)
	}

	rec := s.buildRecord(resolved)

	for attempt := 1; attempt <= idAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate id: %w", err)
		}
		rec.ID = id

		stored, inserted, err := s.store.InsertIfAbsent(ctx, rec)
		if errors.Is(err, domain.ErrIDConflict) {
			s.logger.Warn("link id collision, retrying",
				logger.String("id", id),
				logger.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to store link: %w", err)
		}

		if inserted {
			s.logger.Info("link created",
				logger.String("id", stored.ID),
				logger.String("platform", string(stored.Platform)),
				logger.String("canonical_url", stored.CanonicalURL),
				logger.String("status", string(stored.Status)))
		}
		return stored, inserted, nil
	}

	return nil, false, fmt.Errorf("no free id after %d attempts: %w", idAttempts, domain.ErrIDConflict)
}

// buildRecord derives display metadata from the canonical URL.
func (s *Service) buildRecord(resolved engine.ResolvedLink) *domain.LinkRecord {
	info := s.engine.Registry().For(resolved.Platform).DisplayInfo(resolved.CanonicalURL)

	host := platform.Host(resolved.CanonicalURL)
	if host == "" {
		host = unknownDomain
	}

	return &domain.LinkRecord{
		RawInput:     resolved.RawInput,
		CanonicalURL: resolved.CanonicalURL,
		Platform:     resolved.Platform,
		Title:        info.Title,
		Domain:       host,
		Thumbnail:    info.Thumbnail,
		Status:       resolved.Status,
		Failure:      resolved.Failure,
		CreatedAt:    s.now().UTC(),
	}
}

// Visit looks up id and records a click on it.
func (s *Service) Visit(ctx context.Context, id string) (*domain.LinkRecord, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.RecordClick(ctx, rec.ID, rec.Platform); err != nil {
		// the redirect still succeeds
		s.logger.Warn("failed to record click",
			logger.String("id", id),
			logger.Error(err))
		return rec, nil
	}
	rec.ClickCount++
	return rec, nil
}

// Get returns the record for id.
func (s *Service) Get(ctx context.Context, id string) (*domain.LinkRecord, error) {
	return s.store.GetByID(ctx, id)
}

// Recent returns the newest records first. limit is clamped to
// [1, MaxListLimit]; zero or negative means DefaultListLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.LinkRecord, error) {
	return s.store.Recent(ctx, ClampLimit(limit))
}

// PlatformStats returns a counter for every known platform.
func (s *Service) PlatformStats(ctx context.Context) (map[domain.Platform]int64, error) {
	counts, err := s.store.PlatformCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Platform]int64, len(domain.Platforms))
	for _, p := range domain.Platforms {
		out[p] = counts[p]
	}
	return out, nil
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
