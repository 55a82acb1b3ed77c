// Package redis opens the go-redis client used by the link store.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

// ConnectOptions describes the server and how long to wait for it at start.
type ConnectOptions struct {
	URL      string // redis:// or rediss://, replaces Addr/User/Password/RedisDB
	Addr     string
	User     string
	Password string
	RedisDB  int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	ConnectTimeout time.Duration // budget for all attempts
	RetryInterval  time.Duration // first pause, doubled after each failure
	MaxWait        time.Duration // pause cap
	PingTimeout    time.Duration
	WarnThreshold  int // failures logged at warn before switching to error
}

// validate reports every bad retry setting at once.
func (o ConnectOptions) validate() error {
	var errs []error
	positive := []struct {
		name string
		val  time.Duration
	}{
		{"ConnectTimeout", o.ConnectTimeout},
		{"RetryInterval", o.RetryInterval},
		{"MaxWait", o.MaxWait},
		{"PingTimeout", o.PingTimeout},
	}
	for _, p := range positive {
		if p.val <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", p.name, p.val))
		}
	}
	if o.WarnThreshold < 0 {
		errs = append(errs, fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold))
	}
	return errors.Join(errs...)
}

// clientOptions builds go-redis options from the URL when set, otherwise
// from the discrete fields.
func (o ConnectOptions) clientOptions() (*redis.Options, error) {
	opts := &redis.Options{
		Addr:     o.Addr,
		Username: o.User,
		Password: o.Password,
		DB:       o.RedisDB,
	}
	if o.URL != "" {
		parsed, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		opts = parsed
	}

	opts.DialTimeout = o.DialTimeout
	opts.ReadTimeout = o.ReadTimeout
	opts.WriteTimeout = o.WriteTimeout
	opts.PoolSize = o.PoolSize
	return opts, nil
}

// backoff doubles the pause after each failure, up to max.
type backoff struct {
	next, max time.Duration
}

func (b *backoff) Next() time.Duration {
	d := b.next
	b.next *= 2
	if b.next > b.max {
		b.next = b.max
	}
	return d
}

// Connect pings the server until it answers, ctx is done or
// ConnectTimeout runs out. The client is closed when Connect fails.
func Connect(ctx context.Context, o ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := o.validate(); err != nil {
		return nil, fmt.Errorf("invalid redis options: %w", err)
	}
	opts, err := o.clientOptions()
	if err != nil {
		return nil, err
	}

	log = log.With(logger.String("addr", opts.Addr), logger.Int("db", opts.DB))
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, o.ConnectTimeout)
	defer cancel()

	log.Info("connecting to redis", logger.Duration("timeout", o.ConnectTimeout))
	start := time.Now()
	wait := backoff{next: o.RetryInterval, max: o.MaxWait}

	for attempt := 1; ; attempt++ {
		err := ping(ctx, client, o.PingTimeout)
		if err == nil {
			if attempt > 1 {
				log.Warn("connected to redis after retry",
					logger.Int("attempts", attempt),
					logger.Duration("elapsed", time.Since(start)))
			} else {
				log.Info("connected to redis")
			}
			return client, nil
		}

		pause := wait.Next()
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			_ = client.Close()
			log.Error("redis unavailable",
				logger.Int("attempts", attempt),
				logger.Error(err))
			return nil, fmt.Errorf("redis unavailable at %s after %d attempts: %w", opts.Addr, attempt, err)
		case <-timer.C:
		}

		fields := []logger.Field{
			logger.Int("attempt", attempt),
			logger.Duration("waited", pause),
			logger.Error(err),
		}
		if attempt <= o.WarnThreshold {
			log.Warn("redis connection failed, retrying", fields...)
		} else {
			log.Error("redis still unavailable, retrying", fields...)
		}
	}
}

func ping(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
