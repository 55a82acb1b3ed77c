package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkfold/internal/links"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

const (
	// DefaultPruneInterval is how often the creation index is swept for expired records
	DefaultPruneInterval = time.Hour
)

// IndexPruner removes index entries whose record the store has already expired.
type IndexPruner struct {
	store    links.Pruner
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewIndexPruner creates a new index pruner
func NewIndexPruner(store links.Pruner, log logger.Logger, interval time.Duration) *IndexPruner {
	if interval <= 0 {
		interval = DefaultPruneInterval
	}

	return &IndexPruner{
		store:    store,
		logger:   log.With(logger.Component("index_pruner")),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs a first sweep and then one per interval.
func (ip *IndexPruner) Start(ctx context.Context) error {
	if _, err := ip.Prune(ctx); err != nil {
		ip.logger.Warn("initial index prune failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(ip.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := ip.Prune(ctx); err != nil {
					ip.logger.Error("index prune failed",
						logger.Error(err))
				}
			case <-ip.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the pruner
func (ip *IndexPruner) Stop() {
	ip.stopOnce.Do(func() { close(ip.stopCh) })
}

// Prune runs one sweep and returns the number of removed entries.
func (ip *IndexPruner) Prune(ctx context.Context) (int, error) {
	removed, err := ip.store.PruneIndex(ctx)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		ip.logger.Info("pruned expired links from index",
			logger.Int("removed", removed))
	} else {
		ip.logger.Debug("no expired links to prune")
	}
	return removed, nil
}
