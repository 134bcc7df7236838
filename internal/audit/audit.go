// Package audit contains the storage-agnostic contract for the run-audit
// store and a registry-based factory for concrete backends.
//
// The audit store keeps one row per completed run: the paths and content
// fingerprints of the inputs, the record counts, and the duration. It exists
// so that a given output artifact can be traced back to the exact mapping
// table and input that produced it, across many invocations.
//
// Backends register themselves in an init function; importing the audit/all
// package (even blank) makes every built-in backend available.
package audit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Config selects and configures a backend.
type Config struct {
	// Kind selects the backend implementation, e.g. "sqlite" or "postgres".
	Kind string

	// DSN is the backend-specific connection string.
	DSN string

	// Table is the audit table name. When empty, backends use "remap_runs".
	Table string
}

// Run is one completed invocation as persisted to the audit store.
type Run struct {
	Job         string
	StartedAt   time.Time
	Duration    time.Duration
	InputPath   string
	MappingPath string
	OutputPath  string

	// InputHash and MappingHash are xxh3-64 hex digests of the input files.
	// Either may be empty when hashing failed; the run itself still counts.
	InputHash   string
	MappingHash string

	MappingEntries int64
	InputRecords   int64
	Retained       int64
	Skipped        int64
}

// Repository is the minimal interface audit backends implement.
type Repository interface {
	// Record persists one run. Backends create the audit table on first use.
	Record(ctx context.Context, run Run) error

	// Close releases the underlying connection resources.
	Close()
}

// Factory constructs a Repository from a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a factory for kind. Re-registering a kind overrides the
// previous factory (useful for tests and dynamic wiring).
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New constructs the Repository selected by cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported audit.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered backend kinds.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
