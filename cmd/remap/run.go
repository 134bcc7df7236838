// Package main wires the rewrite pipeline end-to-end. This file keeps the CLI
// layer thin: it depends only on backend-agnostic interfaces and never imports
// database drivers or backend-specific packages directly.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"remap/internal/audit"
	"remap/internal/config"
	"remap/internal/datasource"
	"remap/internal/datasource/file"
	"remap/internal/datasource/httpds"
	"remap/internal/fingerprint"
	"remap/internal/metrics"
	"remap/internal/transformer"
	"remap/internal/transformer/builtin"
	"remap/internal/writer"

	csvparser "remap/internal/parser/csv"
	jsonparser "remap/internal/parser/json"
)

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	openSourceFn = openSource

	newAuditFn = func(ctx context.Context, cfg audit.Config) (audit.Repository, error) {
		return audit.New(ctx, cfg)
	}
)

// openSource picks a datasource for path: URLs go through the HTTP client,
// everything else is a local file.
func openSource(path string) datasource.Source {
	if httpds.IsURL(path) {
		return httpds.NewSource(nil, path)
	}
	return file.NewLocal(path)
}

// run executes one full rewrite: load the mapping CSV, decode the JSON array,
// rewrite the configured field in each record, and write the surviving
// records to the output file.
//
// Error semantics are two-tier. Anything that prevents a trustworthy output
// file — unreadable inputs, a missing mapping column, a top-level JSON value
// that is not an array, an unwritable destination — aborts the run and is
// returned as an error; the output file is not created. Per-record problems
// (a record that is not an object, a record without the configured field) are
// logged as warnings, counted, and the record is dropped while the rest of
// the run continues.
//
// Stats reported:
//
//   - input:           records decoded from the input array
//   - retained:        records written to the output
//   - skipped:         records dropped for any reason
//   - mapping_entries: usable rows loaded from the mapping CSV
func run(ctx context.Context, job config.Job) error {
	start := time.Now()

	// Hash local inputs up front so the audit row can prove what this run
	// actually read. URLs are not hashed; re-fetching just for a digest
	// could observe different bytes than the run itself.
	inputHash := hashLocal(job.Input.Path)
	mappingHash := hashLocal(job.Mapping.Path)

	// Stage 1: mapping CSV.
	stepStart := time.Now()
	mapping, droppedRows, err := loadMapping(ctx, job.Mapping)
	metrics.RecordStep(job.Name, "load_mapping", err, time.Since(stepStart))
	if err != nil {
		return fmt.Errorf("load mapping %s: %w", job.Mapping.Path, err)
	}
	if droppedRows > 0 {
		log.Printf("mapping: dropped %d rows with an empty %q cell", droppedRows, job.Mapping.OldColumn)
	}
	log.Printf("mapping: loaded %d entries from %s", len(mapping), job.Mapping.Path)

	// Stage 2: JSON input.
	stepStart = time.Now()
	items, err := loadRecords(ctx, job.Input.Path)
	metrics.RecordStep(job.Name, "load_input", err, time.Since(stepStart))
	if err != nil {
		return fmt.Errorf("load input %s: %w", job.Input.Path, err)
	}
	log.Printf("input: decoded %d records from %s", len(items), job.Input.Path)

	// Stage 3: rewrite. Per-record problems are warnings, not failures.
	stepStart = time.Now()
	chain := transformer.Chain{
		builtin.Remap{
			Key:      job.Input.Key,
			Mapping:  mapping,
			FoldKeys: job.Mapping.FoldKeys,
			Reject: func(r builtin.RejectedRecord) {
				log.Printf("warning: record %d: %s", r.Index, r.Reason)
			},
		},
	}
	kept, skipped := chain.Apply(items)
	metrics.RecordStep(job.Name, "transform", nil, time.Since(stepStart))
	log.Printf("total records skipped or removed: %d", skipped)

	// Stage 4: output. The destination is only created once the whole run
	// has survived; a fatal error above never leaves a partial file behind.
	stepStart = time.Now()
	err = writer.WriteFile(job.Output.Path, kept)
	metrics.RecordStep(job.Name, "write_output", err, time.Since(stepStart))
	if err != nil {
		return fmt.Errorf("write output %s: %w", job.Output.Path, err)
	}
	log.Printf("output: wrote %d records to %s", len(kept), job.Output.Path)

	metrics.RecordRow(job.Name, "input", int64(len(items)))
	metrics.RecordRow(job.Name, "retained", int64(len(kept)))
	metrics.RecordRow(job.Name, "skipped", int64(skipped))
	metrics.RecordRow(job.Name, "mapping_entries", int64(len(mapping)))

	if job.Audit.Kind != "" {
		if err := recordRun(ctx, job, audit.Run{
			Job:            job.Name,
			StartedAt:      start,
			Duration:       time.Since(start),
			InputPath:      job.Input.Path,
			MappingPath:    job.Mapping.Path,
			OutputPath:     job.Output.Path,
			InputHash:      inputHash,
			MappingHash:    mappingHash,
			MappingEntries: int64(len(mapping)),
			InputRecords:   int64(len(items)),
			Retained:       int64(len(kept)),
			Skipped:        int64(skipped),
		}); err != nil {
			// The output file is already good; a broken audit store should
			// not turn a finished run into a failure.
			log.Printf("warning: audit: %v", err)
		}
	}

	log.Printf("summary: input=%d retained=%d skipped=%d", len(items), len(kept), skipped)
	return nil
}

// loadMapping opens the mapping source and parses the two-column table.
func loadMapping(ctx context.Context, m config.Mapping) (csvparser.Mapping, int, error) {
	rc, err := openSourceFn(m.Path).Open(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	opt := csvparser.Options{
		OldColumn: m.OldColumn,
		NewColumn: m.NewColumn,
		FoldKeys:  m.FoldKeys,
	}
	if m.Comma != "" {
		opt.Comma = []rune(m.Comma)[0]
	}
	return csvparser.NewLoader(opt).Load(rc)
}

// loadRecords opens the input source and decodes the top-level JSON array.
func loadRecords(ctx context.Context, path string) ([]any, error) {
	rc, err := openSourceFn(path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return jsonparser.DecodeArray(rc)
}

// recordRun writes one row to the configured run-history store.
func recordRun(ctx context.Context, job config.Job, run audit.Run) error {
	repo, err := newAuditFn(ctx, audit.Config{
		Kind:  job.Audit.Kind,
		DSN:   job.Audit.DSN,
		Table: job.Audit.Table,
	})
	if err != nil {
		return err
	}
	defer repo.Close()
	return repo.Record(ctx, run)
}

// hashLocal fingerprints a local file, returning "" for URLs or unreadable
// paths. Hashing is best-effort; the run itself reports real read errors.
func hashLocal(path string) string {
	if httpds.IsURL(path) {
		return ""
	}
	h, err := fingerprint.File(path)
	if err != nil {
		return ""
	}
	return h
}
