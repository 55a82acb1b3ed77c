package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/linkfold/internal/config"
	"github.com/MrSnakeDoc/linkfold/internal/engine"
	"github.com/MrSnakeDoc/linkfold/internal/links"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/platform"
	"github.com/MrSnakeDoc/linkfold/internal/redis"
	"github.com/MrSnakeDoc/linkfold/internal/resolver"
	"github.com/MrSnakeDoc/linkfold/internal/sources/profile"
	"github.com/MrSnakeDoc/linkfold/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/linkfold/internal/store/redis"
	"github.com/MrSnakeDoc/linkfold/internal/store/sqlite"
)

// OpenStore opens the store selected by cfg.Store.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (links.Store, error) {
	switch cfg.Store {
	case config.StoreRedis:
		client, err := redis.Connect(ctx, redis.ConnectOptions{
			URL:            cfg.RedisURL,
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.NewStore(client, redisstore.Options{
			KeyPrefix: cfg.KeyPrefix,
			RecordTTL: cfg.RecordTTL,
		}, log), nil

	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLiteDSN, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, nil

	case config.StoreMemory:
		log.Warn("using in-memory store, records are lost on restart")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// BaseProfile is the header profile used until (or without) a profile file.
func BaseProfile(cfg *config.Config) resolver.Profile {
	p := resolver.DefaultProfile()
	if cfg.ResolveTimeout > 0 {
		p.Timeout = cfg.ResolveTimeout
	}
	p.ParseHTMLRefresh = cfg.ParseHTMLRefresh
	return p
}

// NewResolver builds the resolver. With loadProfile the profile file, when
// configured, is read once up front; the server leaves that to its reloader.
func NewResolver(cfg *config.Config, log logger.Logger, loadProfile bool) (*resolver.Resolver, error) {
	res := resolver.New(BaseProfile(cfg), log)
	if !loadProfile || cfg.ProfileFile == "" {
		return res, nil
	}

	p, err := profile.NewLoader(cfg.ProfileFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load header profile: %w", err)
	}
	res.SetProfile(p)
	return res, nil
}

// NewEngine wires the detector, the strategy registry and res.
func NewEngine(res *resolver.Resolver, log logger.Logger) *engine.Engine {
	return engine.New(platform.NewDetector(nil), platform.DefaultRegistry(), res, log)
}
