package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/pmv/pkg/logger"
	"github.com/okian/pmv/pkg/metrics"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// timeLayout is fixed width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const defaultBusyTimeout = 5 * time.Second

// legacyLayouts covers rows written without a zone suffix.
var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

//go:embed schema.sql
var schema string

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store on a single SQLite file.
//
// Writers are serialised by SQLite itself: WAL journaling, a busy timeout and
// IMMEDIATE transactions. The store keeps no locks of its own.
type SQLiteStore struct {
	db          *sql.DB
	path        string
	busyTimeout time.Duration
	now         func() time.Time
	logger      logger.Logger
}

// Open connects to the SQLite database at path and creates the schema.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("open store: %w: path is required", ErrNotConfigured)
	}
	s := &SQLiteStore{
		path:        filepath.Clean(path),
		busyTimeout: defaultBusyTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return nil, unavailable("open sqlite db", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable("ping sqlite db", err)
	}
	s.db = db

	if err := s.InitSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Info(ctx, "sqlite store ready", logger.String("path", s.path))
	return s, nil
}

func (s *SQLiteStore) dsn() string {
	q := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", s.busyTimeout.Milliseconds()),
		"_pragma=journal_mode(WAL)",
		"_pragma=foreign_keys(1)",
		"_pragma=synchronous(NORMAL)",
		"_txlock=immediate",
	}
	return s.path + "?" + strings.Join(q, "&")
}

// InitSchema creates the games, players and events tables if absent.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrNotConfigured
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return unavailable("init schema", err)
	}
	return s.normalizeTimestamps(ctx)
}

// timestampTables hold a created_at column in timeLayout.
var timestampTables = []string{"games", "players", "events"}

// canonicalGlob matches values already written in timeLayout.
const canonicalGlob = "[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]T[0-9][0-9]:[0-9][0-9]:[0-9][0-9].[0-9][0-9][0-9][0-9][0-9][0-9]Z"

// normalizeTimestamps rewrites created_at values in a legacy layout, such as
// 2024-01-01T10:00:00, into timeLayout so range filters can compare them as
// text. Values that cannot be parsed are left alone and logged.
func (s *SQLiteStore) normalizeTimestamps(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range timestampTables {
			fixed, err := s.normalizeTable(ctx, tx, table)
			if err != nil {
				return err
			}
			if fixed > 0 {
				s.logger.Info(ctx, "normalized legacy timestamps",
					logger.String("table", table),
					logger.Int("rows", fixed),
				)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) normalizeTable(ctx context.Context, tx *sql.Tx, table string) (int, error) {
	type legacyRow struct {
		id int64
		ts string
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT id, created_at FROM `+table+` WHERE created_at IS NOT NULL AND created_at NOT GLOB ?`,
		canonicalGlob,
	)
	if err != nil {
		return 0, unavailable("scan legacy timestamps", err)
	}
	var pending []legacyRow
	for rows.Next() {
		var r legacyRow
		if err := rows.Scan(&r.id, &r.ts); err != nil {
			_ = rows.Close()
			return 0, unavailable("scan legacy timestamps", err)
		}
		pending = append(pending, r)
	}
	if err := rows.Close(); err != nil {
		return 0, unavailable("scan legacy timestamps", err)
	}
	if err := rows.Err(); err != nil {
		return 0, unavailable("scan legacy timestamps", err)
	}

	fixed := 0
	for _, r := range pending {
		t, err := parseTime(r.ts)
		if err != nil {
			s.logger.Warn(ctx, "unparseable timestamp left as is",
				logger.String("table", table),
				logger.Int64("id", r.id),
				logger.String("created_at", r.ts),
			)
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET created_at = ? WHERE id = ?`, formatTime(t), r.id,
		); err != nil {
			return 0, unavailable("normalize timestamp", err)
		}
		fixed++
	}
	return fixed, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Count returns the number of rows per table.
func (s *SQLiteStore) Count(ctx context.Context) (c Counts, err error) {
	defer s.observe("count", time.Now(), &err)
	row := s.db.QueryRowContext(ctx, `SELECT
	    (SELECT COUNT(*) FROM players),
	    (SELECT COUNT(*) FROM games),
	    (SELECT COUNT(*) FROM events)`)
	if err = row.Scan(&c.Players, &c.Games, &c.Events); err != nil {
		return Counts{}, unavailable("count rows", err)
	}
	return c, nil
}

// withTx runs fn in one transaction and commits when fn succeeds.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Warn(ctx, "rollback failed", logger.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit transaction", err)
	}
	return nil
}

// observe records latency and failures of one store operation.
func (s *SQLiteStore) observe(op string, start time.Time, err *error) {
	failed := err != nil && *err != nil
	metrics.RecordStoreOperation(op, float64(time.Since(start).Microseconds())/1000, failed)
}

func (s *SQLiteStore) timestamp() string {
	return formatTime(s.now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, v); err == nil {
		return t, nil
	}
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", v)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ Store = (*SQLiteStore)(nil)
