package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
	"github.com/MrSnakeDoc/linkfold/internal/engine"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/platform"
	"github.com/MrSnakeDoc/linkfold/internal/resolver"
)

// noRedirect never expands anything.
type noRedirect struct{}

func (noRedirect) Expand(_ context.Context, u string, _ domain.Platform) (resolver.Expansion, error) {
	return resolver.Expansion{URL: u, Outcome: resolver.OutcomeNoRedirect}, nil
}

func newTestProcessor(delay DelayPolicy, maxRows int) (*Processor, *[]time.Duration) {
	log := logger.New("error", false)
	e := engine.New(platform.NewDetector(nil), platform.DefaultRegistry(), noRedirect{}, log)

	p := NewProcessor(e, delay, maxRows, log)
	var sleeps []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return p, &sleeps
}

func TestProcess(t *testing.T) {
	p, sleeps := newTestProcessor(DefaultDelayPolicy(), 0)

	table := &Table{
		Headers: []string{"name", "link", "note"},
		Rows: []map[string]string{
			{"name": "a", "link": "https://www.youtube.com/watch?v=abc&t=1", "note": "plain"},
			{"name": "b", "link": "https://v.douyin.com/short/", "note": ""},
			{"name": "c", "link": "see example.com later", "note": ""},
			{"name": "d", "link": "", "note": "none"},
		},
	}

	res, err := p.Process(context.Background(), table)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := []string{"name", "link", "note", "link_long", "link_platform"}
	if len(res.Processed.Headers) != len(want) {
		t.Fatalf("Processed.Headers = %v, want %v", res.Processed.Headers, want)
	}
	for i := range want {
		if res.Processed.Headers[i] != want[i] {
			t.Errorf("Processed.Headers[%d] = %q, want %q", i, res.Processed.Headers[i], want[i])
		}
	}

	rows := res.Processed.Rows
	if rows[0]["link_long"] != "https://www.youtube.com/watch?v=abc" || rows[0]["link_platform"] != "youtube" {
		t.Errorf("row 1 = %v", rows[0])
	}
	if rows[1]["link_platform"] != FailedMarker {
		t.Errorf("row 2 platform = %q, want %q", rows[1]["link_platform"], FailedMarker)
	}
	if rows[2]["link_platform"] != FailedMarker || rows[2]["link_long"] != "see example.com later" {
		t.Errorf("row 3 = %v, want failure marker with original value", rows[2])
	}
	if _, ok := rows[3]["link_long"]; ok {
		t.Errorf("row 4 = %v, want no derived columns", rows[3])
	}
	if rows[0]["note"] != "plain" {
		t.Error("original cells not carried over")
	}

	if res.Stats != (Stats{TotalRows: 4, SuccessURLs: 1, FailedURLs: 2}) {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.Total != 4 {
		t.Errorf("Total = %d, want 4", res.Total)
	}
	if res.Message != "4 rows processed: 1 URLs resolved, 2 failed" {
		t.Errorf("Message = %q", res.Message)
	}
	if res.Original != table {
		t.Error("Original is not the input table")
	}

	// no delay before the first URL
	if len(*sleeps) != 2 {
		t.Errorf("sleeps = %d, want 2", len(*sleeps))
	}
	for _, d := range *sleeps {
		if d != 300*time.Millisecond {
			t.Errorf("sleep = %v, want 300ms", d)
		}
	}
}

func TestProcessKeepsExistingDerivedColumns(t *testing.T) {
	p, _ := newTestProcessor(DelayPolicy{}, 0)

	table := &Table{
		Headers: []string{"url", "url_long"},
		Rows: []map[string]string{
			{"url": "https://a.com/x#c", "url_long": "keepme"},
		},
	}

	res, err := p.Process(context.Background(), table)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := []string{"url", "url_long", "url_long_2", "url_platform"}
	if len(res.Processed.Headers) != len(want) {
		t.Fatalf("Processed.Headers = %v, want %v", res.Processed.Headers, want)
	}
	for i := range want {
		if res.Processed.Headers[i] != want[i] {
			t.Errorf("Processed.Headers[%d] = %q, want %q", i, res.Processed.Headers[i], want[i])
		}
	}

	row := res.Processed.Rows[0]
	if row["url_long"] != "keepme" {
		t.Errorf("url_long = %q, want the original value kept", row["url_long"])
	}
	if row["url_long_2"] != "https://a.com/x" || row["url_platform"] != "other" {
		t.Errorf("derived cells = %v", row)
	}
}

func TestProcessLargeBatchDelay(t *testing.T) {
	p, sleeps := newTestProcessor(DelayPolicy{Delay: time.Millisecond, LargeBatchDelay: 5 * time.Millisecond, LargeBatchThreshold: 2}, 0)

	table := &Table{Headers: []string{"u"}}
	for i := 0; i < 3; i++ {
		table.Rows = append(table.Rows, map[string]string{"u": "https://example.com/x"})
	}

	if _, err := p.Process(context.Background(), table); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	for _, d := range *sleeps {
		if d != 5*time.Millisecond {
			t.Errorf("sleep = %v, want large batch delay", d)
		}
	}
}

func TestProcessCancelled(t *testing.T) {
	p, _ := newTestProcessor(DefaultDelayPolicy(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table := &Table{
		Headers: []string{"u"},
		Rows: []map[string]string{
			{"u": "https://example.com/1"},
			{"u": "https://example.com/2"},
		},
	}

	if _, err := p.Process(ctx, table); !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
}

func TestProcessRowLimit(t *testing.T) {
	p, _ := newTestProcessor(DefaultDelayPolicy(), 1)
	table := &Table{Headers: []string{"u"}, Rows: []map[string]string{{"u": "a"}, {"u": "b"}}}

	_, err := p.Process(context.Background(), table)
	var tooMany *ErrTooManyRows
	if !errors.As(err, &tooMany) || tooMany.Rows != 2 || tooMany.Max != 1 {
		t.Errorf("Process() error = %v, want ErrTooManyRows{2, 1}", err)
	}
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("sleepContext() did not return on cancellation")
	}

	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("sleepContext() error = %v", err)
	}
}

func TestLooksLikeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"https://example.org", true},
		{"www.douyin.com/video/1", true},
		{"weibo.cn/abc", true},
		{"b23.tv/abc", true},
		{"youtu.be/abc", true},
		{"just text", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := LooksLikeURL(tt.input); got != tt.expected {
			t.Errorf("LooksLikeURL(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestDelayPolicyFor(t *testing.T) {
	p := DefaultDelayPolicy()
	if got := p.For(100); got != 300*time.Millisecond {
		t.Errorf("For(100) = %v, want 300ms", got)
	}
	if got := p.For(101); got != 600*time.Millisecond {
		t.Errorf("For(101) = %v, want 600ms", got)
	}
}
