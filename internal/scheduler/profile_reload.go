package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/resolver"
	"github.com/MrSnakeDoc/linkfold/internal/sources/profile"
)

// ProfileStatus describes the last header profile reload.
type ProfileStatus struct {
	Source     string
	LastReload time.Time
	LastError  string
}

// ProfileReloader periodically re-reads the header profile file and swaps it
// into the resolver. A failed reload keeps the previous profile.
type ProfileReloader struct {
	loader        *profile.Loader
	resolver      *resolver.Resolver
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu         sync.RWMutex
	lastReload time.Time
	lastErr    error
}

// NewProfileReloader creates a new profile reloader
func NewProfileReloader(
	profileFile string,
	res *resolver.Resolver,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ProfileReloader {
	return &ProfileReloader{
		loader:        profile.NewLoader(profileFile),
		resolver:      res,
		logger:        log.With(logger.Component("profile_reloader")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the profile once and then reloads it on every tick or manual trigger.
func (pr *ProfileReloader) Start(ctx context.Context) error {
	if err := pr.Reload(ctx); err != nil {
		return fmt.Errorf("initial profile load failed: %w", err)
	}

	ticker := time.NewTicker(pr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := pr.Reload(ctx); err != nil {
					pr.logger.Error("failed to reload header profile",
						logger.Error(err))
				}
			case <-pr.manualTrigger:
				pr.logger.Info("manual profile reload triggered")
				if err := pr.Reload(ctx); err != nil {
					pr.logger.Error("failed to reload header profile",
						logger.Error(err))
				}
			case <-pr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (pr *ProfileReloader) Stop() {
	pr.stopOnce.Do(func() { close(pr.stopCh) })
}

// Reload reads the profile file and installs it on the resolver.
func (pr *ProfileReloader) Reload(_ context.Context) error {
	p, err := pr.loader.Load()

	pr.mu.Lock()
	pr.lastErr = err
	if err == nil {
		pr.lastReload = time.Now()
	}
	pr.mu.Unlock()

	if err != nil {
		return err
	}

	pr.resolver.SetProfile(p)
	pr.logger.Info("header profile loaded",
		logger.String("source", p.Source),
		logger.Duration("timeout", p.Timeout),
		logger.Int("headers", len(p.Headers)),
		logger.Bool("parse_html_refresh", p.ParseHTMLRefresh))
	return nil
}

// Status reports the file and the outcome of the last reload.
func (pr *ProfileReloader) Status() ProfileStatus {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	st := ProfileStatus{
		Source:     pr.loader.Path(),
		LastReload: pr.lastReload,
	}
	if pr.lastErr != nil {
		st.LastError = pr.lastErr.Error()
	}
	return st
}
