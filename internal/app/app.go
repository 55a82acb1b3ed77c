package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/linkfold/internal/batch"
	"github.com/MrSnakeDoc/linkfold/internal/config"
	"github.com/MrSnakeDoc/linkfold/internal/httpserver"
	"github.com/MrSnakeDoc/linkfold/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkfold/internal/links"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/scheduler"
	"github.com/MrSnakeDoc/linkfold/internal/utils"
	"github.com/MrSnakeDoc/linkfold/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	store    links.Store
	reloader *scheduler.ProfileReloader
	pruner   *scheduler.IndexPruner
}

// New wires every component of the server. The store is opened here so
// that an unreachable backend fails fast.
func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	store, err := OpenStore(context.Background(), cfg, loggerClient)
	if err != nil {
		return nil, err
	}
	loggerClient.Info("link store initialized", logger.String("store", cfg.Store))

	res, err := NewResolver(cfg, loggerClient, false)
	if err != nil {
		utils.CloseLogged(store, "store", loggerClient)
		return nil, err
	}
	eng := NewEngine(res, loggerClient)
	svc := links.NewService(eng, store, loggerClient)

	var batchResolver batch.Resolver = eng
	if cfg.BatchStoreRecords {
		batchResolver = links.Recorder{Service: svc}
	}
	processor := batch.NewProcessor(batchResolver, batch.DelayPolicy{
		Delay:               cfg.BatchDelay,
		LargeBatchDelay:     cfg.BatchLargeDelay,
		LargeBatchThreshold: cfg.BatchLargeThreshold,
	}, cfg.BatchMaxRows, loggerClient)

	// Header profile reloader (only with a profile file)
	var reloader *scheduler.ProfileReloader
	var reloadTrigger chan struct{}
	if cfg.ProfileFile != "" {
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewProfileReloader(
			cfg.ProfileFile,
			res,
			loggerClient,
			cfg.ProfileReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("no profile file configured, using built-in header profile")
	}

	// Index pruner (only for stores that expire records)
	var pruner *scheduler.IndexPruner
	if p, ok := store.(links.Pruner); ok && cfg.RecordTTL > 0 {
		pruner = scheduler.NewIndexPruner(p, loggerClient, cfg.PruneInterval)
	}

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		CORSOrigins:    cfg.CORSOrigins,
		Links:          svc,
		Resolver:       res,
		Batch:          processor,
		StoreKind:      cfg.Store,
		LandingURL:     cfg.LandingURL,
		MaxUploadBytes: cfg.BatchMaxUpload,
		APITimeout:     cfg.APITimeout,
		BatchTimeout:   cfg.BatchTimeout,
		ProfileReload:  reloader,
		ReloadTrigger:  reloadTrigger,
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   httpserver.New(cfg, loggerClient, d),
		store:    store,
		reloader: reloader,
		pruner:   pruner,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting linkfold %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("linkfold %s", version.Get())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			utils.CloseLogged(a.store, "store", a.logger)
			return fmt.Errorf("failed to start profile reloader: %w", err)
		}
		a.logger.Info("profile reloader started",
			logger.String("file", a.cfg.ProfileFile),
			logger.Duration("interval", a.cfg.ProfileReloadInterval))
	}

	if a.pruner != nil {
		if err := a.pruner.Start(ctx); err != nil {
			if a.reloader != nil {
				a.reloader.Stop()
			}
			utils.CloseLogged(a.store, "store", a.logger)
			return fmt.Errorf("failed to start index pruner: %w", err)
		}
		a.logger.Info("index pruner started",
			logger.Duration("interval", a.cfg.PruneInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}
	if a.pruner != nil {
		a.pruner.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close store: %v", err)
	} else {
		a.logger.Info("✅ Store closed cleanly")
	}

	if runErr == nil {
		a.logger.Info("✅ linkfold stopped cleanly")
	}
	return runErr
}
