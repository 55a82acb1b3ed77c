package redis

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

const pruneBatch = 500

// PruneIndex drops ids from the chronological index and the click hash
// once their record has expired. It returns the number of ids removed.
func (s *Store) PruneIndex(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	removed := 0
	var cursor uint64
	for {
		ids, next, err := s.client.ZScan(ctx, s.keys.All(), cursor, "", pruneBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan link index: %w", err)
		}

		// ZSCAN returns member, score pairs
		members := make([]string, 0, len(ids)/2)
		for i := 0; i < len(ids); i += 2 {
			members = append(members, ids[i])
		}

		stale, err := s.missingRecords(ctx, members)
		if err != nil {
			return removed, err
		}
		if len(stale) > 0 {
			if err := s.dropFromIndex(ctx, stale); err != nil {
				return removed, err
			}
			removed += len(stale)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if removed > 0 {
		s.logger.Info("pruned expired links from index", logger.Int("removed", removed))
	}
	return removed, nil
}

func (s *Store) missingRecords(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.Record(id)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check link records: %w", err)
	}

	var stale []string
	for i, v := range vals {
		if v == nil {
			stale = append(stale, ids[i])
		}
	}
	return stale, nil
}

func (s *Store) dropFromIndex(ctx context.Context, ids []string) error {
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, s.keys.All(), members...)
	pipe.HDel(ctx, s.keys.Clicks(), ids...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to prune link index: %w", err)
	}
	return nil
}
