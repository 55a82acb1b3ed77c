package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

// Options configures the Redis store.
type Options struct {
	KeyPrefix string
	// RecordTTL expires records and canonical mappings. Zero keeps them forever.
	RecordTTL time.Duration
}

// Store keeps link records in Redis.
type Store struct {
	client *redis.Client
	keys   Keys
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(client *redis.Client, opts Options, log logger.Logger) *Store {
	return &Store{
		client: client,
		keys:   NewKeys(opts.KeyPrefix),
		ttl:    opts.RecordTTL,
		logger: log,
	}
}

// InsertIfAbsent claims the record key, then the canonical key. The writer
// that loses the canonical race removes its record and returns the winner.
func (s *Store) InsertIfAbsent(ctx context.Context, rec *domain.LinkRecord) (*domain.LinkRecord, bool, error) {
	if existing, err := s.GetByCanonical(ctx, rec.CanonicalURL); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal link: %w", err)
	}

	recordKey := s.keys.Record(rec.ID)
	ok, err := s.client.SetNX(ctx, recordKey, data, s.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to save link: %w", err)
	}
	if !ok {
		return nil, false, domain.ErrIDConflict
	}

	ok, err = s.client.SetNX(ctx, s.keys.Canonical(rec.CanonicalURL), rec.ID, s.ttl).Result()
	if err != nil {
		s.discard(ctx, recordKey)
		return nil, false, fmt.Errorf("failed to save canonical mapping: %w", err)
	}
	if !ok {
		s.discard(ctx, recordKey)
		existing, err := s.GetByCanonical(ctx, rec.CanonicalURL)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load concurrent link: %w", err)
		}
		return existing, false, nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, s.keys.All(), redis.Z{
			Score:  float64(rec.CreatedAt.UnixMilli()),
			Member: rec.ID,
		})
		pipe.HIncrBy(ctx, s.keys.Platforms(), string(rec.Platform), 1)
		return nil
	})
	if err != nil {
		// the record itself is stored; only the index and counters lag
		s.logger.Warn("failed to index link",
			logger.String("id", rec.ID),
			logger.Error(err))
	}

	stored := *rec
	stored.ClickCount = 0
	return &stored, true, nil
}

func (s *Store) discard(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("failed to remove orphan link record",
			logger.String("key", key),
			logger.Error(err))
	}
}

// GetByID loads a record and its click counter.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.LinkRecord, error) {
	var (
		recCmd    *redis.StringCmd
		clicksCmd *redis.StringCmd
	)
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		recCmd = pipe.Get(ctx, s.keys.Record(id))
		clicksCmd = pipe.HGet(ctx, s.keys.Clicks(), id)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	data, err := recCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	rec, err := decode(data)
	if err != nil {
		return nil, err
	}
	rec.ClickCount = parseCount(clicksCmd.Val())
	return rec, nil
}

// GetByCanonical follows the canonical mapping to the record.
func (s *Store) GetByCanonical(ctx context.Context, canonicalURL string) (*domain.LinkRecord, error) {
	id, err := s.client.Get(ctx, s.keys.Canonical(canonicalURL)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get canonical mapping: %w", err)
	}
	return s.GetByID(ctx, id)
}

// RecordClick bumps the click counter of id and the platform counter.
func (s *Store) RecordClick(ctx context.Context, id string, platform domain.Platform) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, s.keys.Clicks(), id, 1)
		pipe.HIncrBy(ctx, s.keys.Platforms(), string(platform), 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. Ids whose record has
// expired are skipped.
func (s *Store) Recent(ctx context.Context, limit int) ([]*domain.LinkRecord, error) {
	if limit <= 0 {
		return []*domain.LinkRecord{}, nil
	}

	ids, err := s.client.ZRevRange(ctx, s.keys.All(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.LinkRecord{}, nil
	}

	recordKeys := make([]string, len(ids))
	for i, id := range ids {
		recordKeys[i] = s.keys.Record(id)
	}

	var (
		recsCmd   *redis.SliceCmd
		clicksCmd *redis.SliceCmd
	)
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		recsCmd = pipe.MGet(ctx, recordKeys...)
		clicksCmd = pipe.HMGet(ctx, s.keys.Clicks(), ids...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	raw := recsCmd.Val()
	clicks := clicksCmd.Val()

	out := make([]*domain.LinkRecord, 0, len(ids))
	for i := range ids {
		str, ok := raw[i].(string)
		if !ok {
			continue
		}
		rec, err := decode([]byte(str))
		if err != nil {
			s.logger.Warn("skipping unreadable link record",
				logger.String("id", ids[i]),
				logger.Error(err))
			continue
		}
		if c, ok := clicks[i].(string); ok {
			rec.ClickCount = parseCount(c)
		}
		out = append(out, rec)
	}
	return out, nil
}

// PlatformCounts returns the per-platform counters.
func (s *Store) PlatformCounts(ctx context.Context) (map[domain.Platform]int64, error) {
	raw, err := s.client.HGetAll(ctx, s.keys.Platforms()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get platform counts: %w", err)
	}

	out := make(map[domain.Platform]int64, len(raw))
	for k, v := range raw {
		out[domain.ParsePlatform(k)] += parseCount(v)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func decode(data []byte) (*domain.LinkRecord, error) {
	var rec domain.LinkRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link: %w", err)
	}
	return &rec, nil
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
