package config

import "testing"

// validJob returns a job that passes validation with no errors.
func validJob() Job {
	return Job{
		Name:    "unit",
		Input:   Input{Path: "in.json", Key: "queryName"},
		Mapping: Mapping{Path: "map.csv", OldColumn: "old", NewColumn: "new"},
		Output:  Output{Path: "out.json"},
	}
}

// issueAt reports whether issues contains a finding with the given severity
// and path.
func issueAt(issues []Issue, sev IssueSeverity, path string) bool {
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path {
			return true
		}
	}
	return false
}

func TestValidateJob_Valid(t *testing.T) {
	t.Parallel()

	issues := ValidateJob(validJob())
	if HasErrors(issues) {
		t.Fatalf("valid job produced errors: %v", issues)
	}
}

func TestValidateJob_RequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Job)
		path   string
	}{
		{"missing input path", func(j *Job) { j.Input.Path = "" }, "input.path"},
		{"missing key", func(j *Job) { j.Input.Key = "" }, "input.key"},
		{"missing mapping path", func(j *Job) { j.Mapping.Path = "" }, "mapping.path"},
		{"missing old column", func(j *Job) { j.Mapping.OldColumn = "" }, "mapping.old_column"},
		{"missing new column", func(j *Job) { j.Mapping.NewColumn = "" }, "mapping.new_column"},
		{"missing output path", func(j *Job) { j.Output.Path = "" }, "output.path"},
		{"multi-rune comma", func(j *Job) { j.Mapping.Comma = "ab" }, "mapping.comma"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			j := validJob()
			tc.mutate(&j)
			issues := ValidateJob(j)
			if !issueAt(issues, SeverityError, tc.path) {
				t.Fatalf("expected error at %s, got %v", tc.path, issues)
			}
		})
	}
}

func TestValidateJob_Warnings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Job)
		path   string
	}{
		{"empty name", func(j *Job) { j.Name = "" }, "name"},
		{"same columns", func(j *Job) { j.Mapping.NewColumn = j.Mapping.OldColumn }, "mapping.new_column"},
		{"in-place overwrite", func(j *Job) { j.Output.Path = j.Input.Path }, "output.path"},
		{"unknown metrics backend", func(j *Job) { j.Metrics.Backend = "graphite" }, "metrics.backend"},
		{"unknown audit kind", func(j *Job) { j.Audit = Audit{Kind: "etcd", DSN: "x"} }, "audit.kind"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			j := validJob()
			tc.mutate(&j)
			issues := ValidateJob(j)
			if !issueAt(issues, SeverityWarning, tc.path) {
				t.Fatalf("expected warning at %s, got %v", tc.path, issues)
			}
			if HasErrors(issues) {
				t.Fatalf("warning-only mutation produced errors: %v", issues)
			}
		})
	}
}

// TestValidateJob_BackendWithoutAddressIsNotFatal pins the address fallback
// chain: selecting a metrics backend without an explicit address must warn,
// never error, because the CLI still resolves the address from the
// environment (PUSHGATEWAY_URL, DD_AGENT_ADDR) or a default after validation.
func TestValidateJob_BackendWithoutAddressIsNotFatal(t *testing.T) {
	t.Parallel()

	j := validJob()
	j.Metrics.Backend = "pushgateway"
	issues := ValidateJob(j)
	if HasErrors(issues) {
		t.Errorf("pushgateway without URL must not block the run: %v", issues)
	}
	if !issueAt(issues, SeverityWarning, "metrics.pushgateway_url") {
		t.Errorf("expected warning about the URL fallback: %v", issues)
	}

	j = validJob()
	j.Metrics.Backend = "datadog"
	issues = ValidateJob(j)
	if HasErrors(issues) {
		t.Errorf("datadog without addr must not block the run: %v", issues)
	}
	if !issueAt(issues, SeverityWarning, "metrics.datadog_addr") {
		t.Errorf("expected warning about the addr fallback: %v", issues)
	}
}

func TestValidateJob_AuditNeedsDSN(t *testing.T) {
	t.Parallel()

	j := validJob()
	j.Audit = Audit{Kind: "sqlite"}
	if issues := ValidateJob(j); !issueAt(issues, SeverityError, "audit.dsn") {
		t.Errorf("audit without DSN: %v", issues)
	}
}
