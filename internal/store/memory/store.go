package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
)

// Store keeps link records in process memory.
// Used by tests and by one-shot CLI runs.
type Store struct {
	mu          sync.RWMutex
	byID        map[string]*domain.LinkRecord // ID -> record
	byCanonical map[string]string             // canonical URL -> ID
	platforms   map[domain.Platform]int64
}

func New() *Store {
	return &Store{
		byID:        make(map[string]*domain.LinkRecord),
		byCanonical: make(map[string]string),
		platforms:   make(map[domain.Platform]int64),
	}
}

// InsertIfAbsent stores rec unless its canonical URL is already known.
func (s *Store) InsertIfAbsent(_ context.Context, rec *domain.LinkRecord) (*domain.LinkRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byCanonical[rec.CanonicalURL]; ok {
		return clone(s.byID[id]), false, nil
	}
	if _, taken := s.byID[rec.ID]; taken {
		return nil, false, domain.ErrIDConflict
	}

	stored := clone(rec)
	s.byID[stored.ID] = stored
	s.byCanonical[stored.CanonicalURL] = stored.ID
	s.platforms[stored.Platform]++

	return clone(stored), true, nil
}

func (s *Store) GetByID(_ context.Context, id string) (*domain.LinkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(rec), nil
}

func (s *Store) GetByCanonical(_ context.Context, canonicalURL string) (*domain.LinkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byCanonical[canonicalURL]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *Store) RecordClick(_ context.Context, id string, platform domain.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.ClickCount++
	s.platforms[platform]++
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(_ context.Context, limit int) ([]*domain.LinkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.LinkRecord, 0, len(s.byID))
	for _, rec := range s.byID {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]*domain.LinkRecord, len(all))
	for i, rec := range all {
		out[i] = clone(rec)
	}
	return out, nil
}

func (s *Store) PlatformCounts(_ context.Context) (map[domain.Platform]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.Platform]int64, len(s.platforms))
	for p, n := range s.platforms {
		out[p] = n
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func clone(rec *domain.LinkRecord) *domain.LinkRecord {
	if rec == nil {
		return nil
	}
	c := *rec
	return &c
}
