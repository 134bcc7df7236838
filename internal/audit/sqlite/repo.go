// Package sqlite implements a SQLite-backed audit.Repository using
// database/sql. A local database file is the default way to keep run history
// for a tool that usually runs on a workstation or a single batch host.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver; replace with your preferred driver if desired.
	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3

	"remap/internal/audit"
)

func init() {
	audit.Register("sqlite", func(ctx context.Context, cfg audit.Config) (audit.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a SQLite-backed implementation of audit.Repository.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository opens a SQLite connection using the provided DSN and ensures
// the audit table exists.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:remap.db?cache=shared"
//	"remap.db"
//	":memory:"
func NewRepository(ctx context.Context, cfg audit.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	table := cfg.Table
	if table == "" {
		table = "remap_runs"
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// Fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	r := &Repository{db: db, table: table}
	if err := r.ensureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	job             TEXT NOT NULL,
	started_at      TEXT NOT NULL,
	duration_ms     INTEGER NOT NULL,
	input_path      TEXT NOT NULL,
	mapping_path    TEXT NOT NULL,
	output_path     TEXT NOT NULL,
	input_hash      TEXT NOT NULL DEFAULT '',
	mapping_hash    TEXT NOT NULL DEFAULT '',
	mapping_entries INTEGER NOT NULL,
	input_records   INTEGER NOT NULL,
	retained        INTEGER NOT NULL,
	skipped         INTEGER NOT NULL
)`, r.table)
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", r.table, err)
	}
	return nil
}

// Record inserts one run row.
func (r *Repository) Record(ctx context.Context, run audit.Run) error {
	q := fmt.Sprintf(`INSERT INTO %s
	(job, started_at, duration_ms, input_path, mapping_path, output_path,
	 input_hash, mapping_hash, mapping_entries, input_records, retained, skipped)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, r.table)

	_, err := r.db.ExecContext(ctx, q,
		run.Job,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.Duration.Milliseconds(),
		run.InputPath,
		run.MappingPath,
		run.OutputPath,
		run.InputHash,
		run.MappingHash,
		run.MappingEntries,
		run.InputRecords,
		run.Retained,
		run.Skipped,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert run: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for ad-hoc queries over the run history.
func (r *Repository) DB() *sql.DB { return r.db }

// Close releases the database handle.
func (r *Repository) Close() { _ = r.db.Close() }
