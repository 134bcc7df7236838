package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"remap/internal/audit"
	"remap/internal/config"
)

// writeTemp drops content into dir under name and returns the full path.
func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// testJob builds a runnable job over temp input/mapping files.
func testJob(t *testing.T, input, mapping string) config.Job {
	t.Helper()
	dir := t.TempDir()
	j := config.Job{
		Name:    "unit",
		Input:   config.Input{Path: writeTemp(t, dir, "in.json", input), Key: "k"},
		Mapping: config.Mapping{Path: writeTemp(t, dir, "map.csv", mapping)},
		Output:  config.Output{Path: filepath.Join(dir, "out.json")},
	}
	j.ApplyDefaults()
	return j
}

func TestRun_RewritesAndDrops(t *testing.T) {
	const (
		mapping = "old,new\nA,X\nB,nan\nC,\n"
		input   = `[{"k":"A"},{"k":"B"},{"k":"C"},{"k":"D"},{"other":1}]`
	)
	job := testJob(t, input, mapping)

	if err := run(context.Background(), job); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, err := os.ReadFile(job.Output.Path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "[\n  {\n    \"k\": \"X\"\n  }\n]\n"
	if string(got) != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRun_EmptyArray(t *testing.T) {
	job := testJob(t, `[]`, "old,new\nA,X\n")

	if err := run(context.Background(), job); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := os.ReadFile(job.Output.Path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "[]\n" {
		t.Errorf("output = %q, want empty array", got)
	}
}

func TestRun_NonArrayInputIsFatal(t *testing.T) {
	job := testJob(t, `{"k":"A"}`, "old,new\nA,X\n")

	err := run(context.Background(), job)
	if err == nil {
		t.Fatalf("expected error for non-array input")
	}
	if !strings.Contains(err.Error(), "an object") {
		t.Errorf("error = %v, want mention of the actual type", err)
	}
	// A fatal run must not leave a partial output file behind.
	if _, statErr := os.Stat(job.Output.Path); !os.IsNotExist(statErr) {
		t.Errorf("output file exists after fatal error")
	}
}

func TestRun_MissingMappingIsFatal(t *testing.T) {
	job := testJob(t, `[{"k":"A"}]`, "old,new\nA,X\n")
	job.Mapping.Path = filepath.Join(t.TempDir(), "nope.csv")

	if err := run(context.Background(), job); err == nil {
		t.Fatalf("expected error for missing mapping file")
	}
}

func TestRun_MissingMappingColumnIsFatal(t *testing.T) {
	job := testJob(t, `[{"k":"A"}]`, "foo,bar\nA,X\n")

	err := run(context.Background(), job)
	if err == nil {
		t.Fatalf("expected error for missing mapping columns")
	}
	if !strings.Contains(err.Error(), "old") {
		t.Errorf("error = %v, want mention of the missing column", err)
	}
}

// TestRun_Idempotent proves that feeding a run's output back through a
// self-mapping reproduces the same bytes, including number formatting.
func TestRun_Idempotent(t *testing.T) {
	job := testJob(t, `[{"k":"A","n":1.50,"s":"Žlutý"}]`, "old,new\nA,X\n")
	if err := run(context.Background(), job); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, err := os.ReadFile(job.Output.Path)
	if err != nil {
		t.Fatalf("read first output: %v", err)
	}
	if !strings.Contains(string(first), "1.50") {
		t.Errorf("number formatting not preserved: %s", first)
	}
	if !strings.Contains(string(first), "Žlutý") {
		t.Errorf("non-ASCII text was escaped: %s", first)
	}

	job2 := testJob(t, string(first), "old,new\nX,X\n")
	if err := run(context.Background(), job2); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, err := os.ReadFile(job2.Output.Path)
	if err != nil {
		t.Fatalf("read second output: %v", err)
	}
	if string(second) != string(first) {
		t.Errorf("second pass changed bytes:\nfirst:  %q\nsecond: %q", first, second)
	}
}

// TestRun_AuditRow uses the audit seam to verify the recorded run stats.
func TestRun_AuditRow(t *testing.T) {
	var recorded []audit.Run
	restore := newAuditFn
	newAuditFn = func(ctx context.Context, cfg audit.Config) (audit.Repository, error) {
		return &captureRepo{runs: &recorded}, nil
	}
	defer func() { newAuditFn = restore }()

	job := testJob(t, `[{"k":"A"},{"k":"B"},{"nope":1}]`, "old,new\nA,X\n")
	job.Audit = config.Audit{Kind: "capture", DSN: "unused"}

	if err := run(context.Background(), job); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(recorded) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(recorded))
	}
	r := recorded[0]
	if r.Job != "unit" || r.InputRecords != 3 || r.Retained != 1 || r.Skipped != 2 {
		t.Errorf("audit run = %+v", r)
	}
	if r.MappingEntries != 1 {
		t.Errorf("mapping entries = %d, want 1", r.MappingEntries)
	}
	if r.InputHash == "" || r.MappingHash == "" {
		t.Errorf("hashes missing: %+v", r)
	}
}

// TestRun_AuditFailureIsNotFatal proves a broken audit store cannot fail a
// run whose output already landed.
func TestRun_AuditFailureIsNotFatal(t *testing.T) {
	restore := newAuditFn
	newAuditFn = func(ctx context.Context, cfg audit.Config) (audit.Repository, error) {
		return nil, os.ErrPermission
	}
	defer func() { newAuditFn = restore }()

	job := testJob(t, `[{"k":"A"}]`, "old,new\nA,X\n")
	job.Audit = config.Audit{Kind: "sqlite", DSN: "unused"}

	if err := run(context.Background(), job); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(job.Output.Path); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

// TestRun_HTTPSources serves both inputs over HTTP and checks the URL path
// through the datasource layer.
func TestRun_HTTPSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/in.json":
			w.Write([]byte(`[{"k":"A"},{"k":"B"}]`))
		case "/map.csv":
			w.Write([]byte("old,new\nA,X\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	job := config.Job{
		Name:    "unit",
		Input:   config.Input{Path: srv.URL + "/in.json", Key: "k"},
		Mapping: config.Mapping{Path: srv.URL + "/map.csv"},
		Output:  config.Output{Path: filepath.Join(dir, "out.json")},
	}
	job.ApplyDefaults()

	if err := run(context.Background(), job); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := os.ReadFile(job.Output.Path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(got), `"k": "X"`) {
		t.Errorf("output = %s", got)
	}
}

// captureRepo records audit rows in memory for assertions.
type captureRepo struct{ runs *[]audit.Run }

func (c *captureRepo) Record(ctx context.Context, run audit.Run) error {
	*c.runs = append(*c.runs, run)
	return nil
}
func (c *captureRepo) Close() {}
