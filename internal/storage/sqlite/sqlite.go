// Package sqlite is a single-file backend for local runs and small
// deployments. Timestamps are stored as unix nanoseconds.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

func Open(path string, logger *zap.Logger) (*Store, error) {
	// modernc DSN form: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// one writer; reconcile workers queue on the pool
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	logger.Info("opened SQLite database", zap.String("path", path))

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// WithClock replaces the time source used for match timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const schemaVersion = 1

// Migrate brings the schema up to schemaVersion, tracked in PRAGMA user_version.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if v >= schemaVersion {
		return tx.Commit()
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS candidates (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL DEFAULT '',
  preferred_locations TEXT NOT NULL DEFAULT '',
  preferred_level TEXT NOT NULL DEFAULT '',
  subject_specialty TEXT NOT NULL DEFAULT '',
  years_experience TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'new',
  created_at INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE TABLE IF NOT EXISTS opportunities (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL DEFAULT 'school',
  title TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  levels_offered TEXT NOT NULL DEFAULT '',
  subjects_needed TEXT NOT NULL DEFAULT '',
  functions TEXT NOT NULL DEFAULT '',
  experience_required TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE TABLE IF NOT EXISTS matches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  candidate_id TEXT NOT NULL,
  opportunity_id TEXT NOT NULL,
  score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
  reasons TEXT NOT NULL DEFAULT '[]',
  status TEXT NOT NULL DEFAULT 'pending'
    CHECK (status IN ('pending', 'contacted', 'interviewed', 'placed', 'rejected')),
  notes TEXT,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  UNIQUE (candidate_id, opportunity_id)
);`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_active ON opportunities(is_active);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_ranking ON matches(score DESC, updated_at DESC);`,
		fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion),
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}

	s.logger.Info("database schema migrated", zap.Int("from", v), zap.Int("to", schemaVersion))
	return nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
