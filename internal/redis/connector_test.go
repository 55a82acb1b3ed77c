package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

func testOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		DialTimeout:    200 * time.Millisecond,
		ReadTimeout:    200 * time.Millisecond,
		WriteTimeout:   200 * time.Millisecond,
		PoolSize:       2,
		ConnectTimeout: 500 * time.Millisecond,
		RetryInterval:  50 * time.Millisecond,
		MaxWait:        100 * time.Millisecond,
		PingTimeout:    100 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), testOptions(mr.Addr()), logger.New("error", false))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = client.Close() }()
}

func TestConnectWithURL(t *testing.T) {
	mr := miniredis.RunT(t)

	opts := testOptions("unused:1")
	opts.URL = "redis://" + mr.Addr() + "/0"

	client, err := Connect(context.Background(), opts, logger.New("error", false))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = client.Close() }()

	if client.Options().Addr != mr.Addr() {
		t.Errorf("Addr = %q, want %q", client.Options().Addr, mr.Addr())
	}
}

func TestConnectTimesOut(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := Connect(context.Background(), testOptions(addr), logger.New("error", false)); err == nil {
		t.Error("Connect() error = nil, want unavailable error")
	}
}

func TestConnectRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConnectOptions)
	}{
		{"zero connect timeout", func(o *ConnectOptions) { o.ConnectTimeout = 0 }},
		{"zero retry interval", func(o *ConnectOptions) { o.RetryInterval = 0 }},
		{"negative warn threshold", func(o *ConnectOptions) { o.WarnThreshold = -1 }},
		{"bad url", func(o *ConnectOptions) { o.URL = "http://not-redis" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions("localhost:0")
			tt.mutate(&opts)
			if _, err := Connect(context.Background(), opts, logger.New("error", false)); err == nil {
				t.Error("Connect() error = nil, want error")
			}
		})
	}
}

func TestConnectStopsOnCancel(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	opts := testOptions(addr)
	opts.ConnectTimeout = 10 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Connect(ctx, opts, logger.New("error", false))
	if err == nil {
		t.Fatal("Connect() error = nil, want unavailable error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Connect() returned after %v, want it bounded by ctx", elapsed)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	err := ConnectOptions{WarnThreshold: -1}.validate()
	if err == nil {
		t.Fatal("validate() error = nil, want error")
	}
	for _, name := range []string{"ConnectTimeout", "RetryInterval", "MaxWait", "PingTimeout", "WarnThreshold"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("validate() error = %q, want it to mention %s", err, name)
		}
	}
}

func TestBackoff(t *testing.T) {
	b := backoff{next: 50 * time.Millisecond, max: 150 * time.Millisecond}
	want := []time.Duration{50, 100, 150, 150}
	for i, w := range want {
		if got := b.Next(); got != w*time.Millisecond {
			t.Errorf("Next() #%d = %v, want %v", i+1, got, w*time.Millisecond)
		}
	}
}
