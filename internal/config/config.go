// Package config defines the canonical, JSON-serializable configuration model
// for a remap job. It is intentionally small, explicit, and dependency-free so
// that jobs can be loaded from disk (or assembled from flags) and passed
// through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure of the job file
//     passed via the -config flag.
//  3. Minimalism: No third-party config libraries; decoding is performed by
//     the standard library.
//
// Example (trimmed):
//
//	{
//	  "name":    "sast-update",
//	  "input":   { "path": "data.json", "key": "queryName" },
//	  "mapping": { "path": "mapping.csv", "old_column": "old", "new_column": "new" },
//	  "output":  { "path": "data.updated.json" },
//	  "audit":   { "kind": "sqlite", "dsn": "runs.db" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Job describes one full rewrite run: which file to read, which field to
// rewrite, where the mapping comes from, and where the result goes.
type Job struct {
	// Name identifies the run in logs, metrics labels, and the audit trail.
	Name string `json:"name"`

	// Input describes the JSON array to rewrite.
	Input Input `json:"input"`

	// Mapping describes the CSV lookup table of old values to new values.
	Mapping Mapping `json:"mapping"`

	// Output describes where the rewritten array is written.
	Output Output `json:"output"`

	// Logging configures the run log destination.
	Logging Logging `json:"logging"`

	// Metrics optionally selects a metrics backend. Empty means none.
	Metrics Metrics `json:"metrics"`

	// Audit optionally selects a run-history store. Empty kind means none.
	Audit Audit `json:"audit"`
}

// Input holds configuration for the JSON input side of a job.
type Input struct {
	// Path is the local filesystem path to the JSON array file.
	Path string `json:"path"`

	// Key names the field rewritten in each record.
	Key string `json:"key"`
}

// Mapping holds configuration for the CSV lookup table.
type Mapping struct {
	// Path is the local filesystem path to the CSV file.
	Path string `json:"path"`

	// OldColumn and NewColumn name the header cells of the lookup and
	// replacement columns.
	OldColumn string `json:"old_column"`
	NewColumn string `json:"new_column"`

	// Comma optionally overrides the field delimiter. Empty means ','.
	Comma string `json:"comma"`

	// FoldKeys enables accent-insensitive lookups: both the mapping keys and
	// the record values are stripped of diacritics before comparison.
	FoldKeys bool `json:"fold_keys"`
}

// Output holds configuration for the rewritten JSON file.
type Output struct {
	// Path is the destination file. It may equal the input path, in which case
	// the input is overwritten in place after a successful run.
	Path string `json:"path"`
}

// Logging configures where run logs go. Console output is always on; LogFile
// additionally appends to a file when non-empty.
type Logging struct {
	LogFile string `json:"log_file"`
}

// Metrics selects an optional metrics backend for run counters.
type Metrics struct {
	// Backend selects the implementation: "", "pushgateway", or "datadog".
	Backend string `json:"backend"`

	// PushgatewayURL is the Prometheus Pushgateway base URL, used when
	// Backend is "pushgateway".
	PushgatewayURL string `json:"pushgateway_url"`

	// DatadogAddr is the dogstatsd address (host:port or unix socket), used
	// when Backend is "datadog".
	DatadogAddr string `json:"datadog_addr"`
}

// Audit selects an optional run-history store.
type Audit struct {
	// Kind selects the backend registered with the audit package
	// (e.g., "sqlite", "postgres"). Empty disables the audit trail.
	Kind string `json:"kind"`

	// DSN is the backend connection string.
	DSN string `json:"dsn"`

	// Table optionally overrides the run-history table name.
	Table string `json:"table"`
}

// Defaults used when the corresponding Job fields are left empty.
const (
	DefaultOldColumn = "old"
	DefaultNewColumn = "new"
	DefaultLogFile   = "remap.log"
)

// ApplyDefaults fills empty optional fields with their documented defaults.
// Required fields (input path, key, mapping path, output path) are left alone;
// ValidateJob reports those.
func (j *Job) ApplyDefaults() {
	if j.Mapping.OldColumn == "" {
		j.Mapping.OldColumn = DefaultOldColumn
	}
	if j.Mapping.NewColumn == "" {
		j.Mapping.NewColumn = DefaultNewColumn
	}
	if j.Logging.LogFile == "" {
		j.Logging.LogFile = DefaultLogFile
	}
}

// LoadJob reads and decodes a job file. Unknown fields are rejected so typos
// in job files surface as errors instead of silently-ignored settings.
func LoadJob(path string) (Job, error) {
	var j Job
	f, err := os.Open(path)
	if err != nil {
		return j, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&j); err != nil {
		return j, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return j, nil
}
