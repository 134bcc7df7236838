// Package postgres implements a Postgres-backed audit.Repository using
// pgx v5. It suits deployments where many hosts run the tool and the run
// history should land in one shared database.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"remap/internal/audit"
)

func init() {
	audit.Register("postgres", func(ctx context.Context, cfg audit.Config) (audit.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a Postgres-backed implementation of audit.Repository.
type Repository struct {
	pool  *pgxpool.Pool
	table string
}

// NewRepository connects via pgxpool and ensures the audit table exists.
func NewRepository(ctx context.Context, cfg audit.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	table := cfg.Table
	if table == "" {
		table = "remap_runs"
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	r := &Repository{pool: pool, table: table}
	if err := r.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	job             TEXT NOT NULL,
	started_at      TIMESTAMPTZ NOT NULL,
	duration_ms     BIGINT NOT NULL,
	input_path      TEXT NOT NULL,
	mapping_path    TEXT NOT NULL,
	output_path     TEXT NOT NULL,
	input_hash      TEXT NOT NULL DEFAULT '',
	mapping_hash    TEXT NOT NULL DEFAULT '',
	mapping_entries BIGINT NOT NULL,
	input_records   BIGINT NOT NULL,
	retained        BIGINT NOT NULL,
	skipped         BIGINT NOT NULL
)`, r.table)
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", r.table, err)
	}
	return nil
}

// Record inserts one run row.
func (r *Repository) Record(ctx context.Context, run audit.Run) error {
	q := fmt.Sprintf(`INSERT INTO %s
	(job, started_at, duration_ms, input_path, mapping_path, output_path,
	 input_hash, mapping_hash, mapping_entries, input_records, retained, skipped)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, r.table)

	_, err := r.pool.Exec(ctx, q,
		run.Job,
		run.StartedAt.UTC(),
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
		return fmt.Errorf("postgres: insert run: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Repository) Close() { r.pool.Close() }
