package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/linkfold/internal/engine"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/platform"
)

const (
	LongSuffix     = "_long"
	PlatformSuffix = "_platform"

	// FailedMarker is written to the platform column of rows that did not resolve.
	FailedMarker = "resolution_failed"
)

// Resolver resolves one raw link.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (engine.ResolvedLink, error)
}

// DelayPolicy spaces out resolutions to stay below upstream anti-scraping limits.
type DelayPolicy struct {
	Delay               time.Duration
	LargeBatchDelay     time.Duration
	LargeBatchThreshold int
}

// DefaultDelayPolicy waits 300ms between links, 600ms once a batch has
// more than 100 rows.
func DefaultDelayPolicy() DelayPolicy {
	return DelayPolicy{
		Delay:               300 * time.Millisecond,
		LargeBatchDelay:     600 * time.Millisecond,
		LargeBatchThreshold: 100,
	}
}

// For returns the delay used for a batch of rows rows.
func (p DelayPolicy) For(rows int) time.Duration {
	if p.LargeBatchThreshold > 0 && rows > p.LargeBatchThreshold {
		return p.LargeBatchDelay
	}
	return p.Delay
}

// Stats counts resolved and failed URL cells.
type Stats struct {
	TotalRows   int `json:"totalRows"`
	SuccessURLs int `json:"successUrls"`
	FailedURLs  int `json:"failedUrls"`
}

// Result is the outcome of one batch run.
type Result struct {
	Original  *Table `json:"original"`
	Processed *Table `json:"processed"`
	Total     int    `json:"total"`
	Stats     Stats  `json:"stats"`
	Message   string `json:"message"`
}

// Processor resolves every URL-looking cell of a table, one at a time.
type Processor struct {
	resolver Resolver
	delay    DelayPolicy
	maxRows  int
	logger   logger.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewProcessor(resolver Resolver, delay DelayPolicy, maxRows int, log logger.Logger) *Processor {
	return &Processor{
		resolver: resolver,
		delay:    delay,
		maxRows:  maxRows,
		logger:   log.With(logger.Component("batch")),
		sleep:    sleepContext,
	}
}

// ErrTooManyRows is returned when a table exceeds the configured row limit.
type ErrTooManyRows struct {
	Rows, Max int
}

func (e *ErrTooManyRows) Error() string {
	return fmt.Sprintf("table has %d rows, limit is %d", e.Rows, e.Max)
}

// Process resolves t. A failing cell is marked and processing continues;
// only context cancellation stops the run early.
func (p *Processor) Process(ctx context.Context, t *Table) (*Result, error) {
	if p.maxRows > 0 && len(t.Rows) > p.maxRows {
		return nil, &ErrTooManyRows{Rows: len(t.Rows), Max: p.maxRows}
	}

	delay := p.delay.For(len(t.Rows))
	start := time.Now()

	p.logger.Info("batch started",
		logger.Int("rows", len(t.Rows)),
		logger.Duration("delay", delay))

	processed := &Table{Rows: make([]map[string]string, 0, len(t.Rows))}
	derived := newDerivedColumns(t.Headers)
	stats := Stats{TotalRows: len(t.Rows)}
	resolved := 0

	for i, row := range t.Rows {
		out := make(map[string]string, len(row)+2)
		for k, v := range row {
			out[k] = v
		}

		for _, col := range t.Headers {
			val := strings.TrimSpace(row[col])
			if !LooksLikeURL(val) {
				continue
			}

			if resolved > 0 && delay > 0 {
				if err := p.sleep(ctx, delay); err != nil {
					return nil, err
				}
			}
			resolved++

			long, tag := p.resolveCell(ctx, val)
			names := derived.For(col)
			out[names.long] = long
			out[names.platform] = tag

			if tag == FailedMarker {
				stats.FailedURLs++
			} else {
				stats.SuccessURLs++
			}
		}

		processed.Rows = append(processed.Rows, out)
		p.logger.Debug("batch row processed", logger.Int("row", i+1))
	}

	processed.Headers = derived.Headers()

	p.logger.Info("batch finished",
		logger.Int("rows", stats.TotalRows),
		logger.Int("success", stats.SuccessURLs),
		logger.Int("failed", stats.FailedURLs),
		logger.Duration("elapsed", time.Since(start)))

	return &Result{
		Original:  t,
		Processed: processed,
		Total:     len(processed.Rows),
		Stats:     stats,
		Message:   Summary(stats),
	}, nil
}

// resolveCell returns the long URL and the platform tag for one cell.
func (p *Processor) resolveCell(ctx context.Context, val string) (string, string) {
	raw, ok := engine.ExtractURL(val)
	if !ok {
		return val, FailedMarker
	}

	res, err := p.resolver.Resolve(ctx, raw)
	if err != nil {
		p.logger.Warn("batch cell rejected",
			logger.String("value", val),
			logger.Error(err))
		return raw, FailedMarker
	}
	if res.Failed() {
		return res.CanonicalURL, FailedMarker
	}
	return res.CanonicalURL, string(res.Platform)
}

type derivedNames struct {
	long, platform string
}

// derivedColumns names the <col>_long and <col>_platform columns. A name
// already taken by the table gets a numeric suffix, the same way duplicate
// headers do on read.
type derivedColumns struct {
	headers []string
	taken   map[string]bool
	names   map[string]derivedNames
}

func newDerivedColumns(headers []string) *derivedColumns {
	taken := make(map[string]bool, len(headers))
	for _, h := range headers {
		taken[h] = true
	}
	return &derivedColumns{
		headers: headers,
		taken:   taken,
		names:   make(map[string]derivedNames),
	}
}

// For returns the derived column names of col, reserving them on first use.
func (d *derivedColumns) For(col string) derivedNames {
	if n, ok := d.names[col]; ok {
		return n
	}
	n := derivedNames{
		long:     d.reserve(col + LongSuffix),
		platform: d.reserve(col + PlatformSuffix),
	}
	d.names[col] = n
	return n
}

func (d *derivedColumns) reserve(name string) string {
	candidate := name
	for i := 2; d.taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
	d.taken[candidate] = true
	return candidate
}

// Headers lists the original headers followed by the derived columns of
// every URL column, in header order.
func (d *derivedColumns) Headers() []string {
	out := make([]string, 0, len(d.headers)+2*len(d.names))
	out = append(out, d.headers...)
	for _, col := range d.headers {
		if n, ok := d.names[col]; ok {
			out = append(out, n.long, n.platform)
		}
	}
	return out
}

// LooksLikeURL is the loose check deciding which cells get resolved.
func LooksLikeURL(val string) bool {
	if val == "" {
		return false
	}
	v := strings.ToLower(val)
	if strings.Contains(v, "http") || strings.Contains(v, ".com") || strings.Contains(v, ".cn") {
		return true
	}
	for _, h := range platform.ShortHosts {
		if strings.Contains(v, h) {
			return true
		}
	}
	return false
}

// Summary is the human readable result line.
func Summary(s Stats) string {
	return fmt.Sprintf("%d rows processed: %d URLs resolved, %d failed", s.TotalRows, s.SuccessURLs, s.FailedURLs)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
