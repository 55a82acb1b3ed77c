package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/MrSnakeDoc/linkfold/internal/domain"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

// Store keeps link records in SQLite, or in libSQL/Turso for remote DSNs.
type Store struct {
	db     *sql.DB
	driver string
	logger logger.Logger
}

// DriverFor picks the database/sql driver for dsn.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "wss://") || strings.HasPrefix(dsn, "https://") {
		return "libsql"
	}
	return "sqlite"
}

// Open connects to dsn and applies the schema.
func Open(ctx context.Context, dsn string, log logger.Logger) (*Store, error) {
	driver := DriverFor(dsn)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// one writer at a time on a local file
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach %s database: %w", driver, err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	log.Info("sql store ready", logger.String("driver", driver))
	return &Store{db: db, driver: driver, logger: log}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS links (
		id TEXT PRIMARY KEY,
		raw_input TEXT NOT NULL,
		canonical_url TEXT NOT NULL UNIQUE,
		platform TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		domain TEXT NOT NULL DEFAULT '',
		thumbnail TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		failure TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		click_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at)`,
	`CREATE TABLE IF NOT EXISTS platform_counts (
		platform TEXT PRIMARY KEY,
		total INTEGER NOT NULL DEFAULT 0
	)`,
}

// migrate runs each statement on its own; remote drivers reject batches.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const selectColumns = `id, raw_input, canonical_url, platform, title, domain, thumbnail, status, failure, created_at, click_count`

const bumpPlatform = `INSERT INTO platform_counts (platform, total) VALUES (?, 1)
	ON CONFLICT(platform) DO UPDATE SET total = total + 1`

// InsertIfAbsent relies on the UNIQUE canonical_url constraint: a second
// insert of the same URL is a no-op and the existing row is returned.
func (s *Store) InsertIfAbsent(ctx context.Context, rec *domain.LinkRecord) (*domain.LinkRecord, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO links (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(canonical_url) DO NOTHING`,
		rec.ID, rec.RawInput, rec.CanonicalURL, string(rec.Platform), rec.Title, rec.Domain,
		rec.Thumbnail, string(rec.Status), string(rec.Failure), rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		_ = tx.Rollback()
		if _, getErr := s.GetByID(ctx, rec.ID); getErr == nil {
			return nil, false, domain.ErrIDConflict
		}
		return nil, false, fmt.Errorf("failed to insert link: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read insert result: %w", err)
	}
	if n == 0 {
		_ = tx.Rollback()
		existing, err := s.GetByCanonical(ctx, rec.CanonicalURL)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load existing link: %w", err)
		}
		return existing, false, nil
	}

	if _, err := tx.ExecContext(ctx, bumpPlatform, string(rec.Platform)); err != nil {
		return nil, false, fmt.Errorf("failed to update platform count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit link: %w", err)
	}

	stored := *rec
	stored.ClickCount = 0
	stored.CreatedAt = time.UnixMilli(rec.CreatedAt.UnixMilli()).UTC()
	return &stored, true, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.LinkRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM links WHERE id = ?`, id)
	return scanRecord(row)
}

func (s *Store) GetByCanonical(ctx context.Context, canonicalURL string) (*domain.LinkRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM links WHERE canonical_url = ?`, canonicalURL)
	return scanRecord(row)
}

func (s *Store) RecordClick(ctx context.Context, id string, platform domain.Platform) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE links SET click_count = click_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, bumpPlatform, string(platform)); err != nil {
		return fmt.Errorf("failed to update platform count: %w", err)
	}
	return tx.Commit()
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*domain.LinkRecord, error) {
	if limit <= 0 {
		return []*domain.LinkRecord{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM links ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*domain.LinkRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return out, nil
}

func (s *Store) PlatformCounts(ctx context.Context) (map[domain.Platform]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT platform, total FROM platform_counts`)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[domain.Platform]int64)
	for rows.Next() {
		var (
			platform string
			count    int64
		)
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("failed to scan platform count: %w", err)
		}
		out[domain.ParsePlatform(platform)] += count
	}
	return out, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the database/sql driver in use.
func (s *Store) Driver() string { return s.driver }

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.LinkRecord, error) {
	var (
		rec       domain.LinkRecord
		platform  string
		status    string
		failure   string
		createdAt int64
	)
	err := row.Scan(&rec.ID, &rec.RawInput, &rec.CanonicalURL, &platform, &rec.Title, &rec.Domain,
		&rec.Thumbnail, &status, &failure, &createdAt, &rec.ClickCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan link: %w", err)
	}

	rec.Platform = domain.ParsePlatform(platform)
	rec.Status = domain.ResolutionStatus(status)
	rec.Failure = domain.ErrorKind(failure)
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &rec, nil
}
