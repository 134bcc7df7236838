// Package config provides configuration models and helpers for remap jobs.
//
// This file adds a lightweight linter/validator for Job values. It performs
// static checks over a decoded Job and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Job.
//
// Path is a dotted path into the config (e.g. "mapping.old_column",
// "audit.dsn"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue in the slice is severity "error".
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateJob performs static validation / linting of a Job.
//
// It does not mutate the job. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	job, err := config.LoadJob(path)
//	if err != nil { ... }
//	for _, iss := range config.ValidateJob(job) {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidateJob(j Job) []Issue {
	var issues []Issue

	if strings.TrimSpace(j.Name) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "name",
			Message:  "name is empty; metrics and audit rows will be hard to attribute",
		})
	}

	issues = append(issues, validateInput(j.Input)...)
	issues = append(issues, validateMapping(j.Mapping)...)
	issues = append(issues, validateOutput(j.Input, j.Output)...)
	issues = append(issues, validateMetrics(j.Metrics)...)
	issues = append(issues, validateAudit(j.Audit)...)

	return issues
}

// validateInput checks the JSON input side.
func validateInput(in Input) []Issue {
	var issues []Issue

	if strings.TrimSpace(in.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input.path",
			Message:  "input.path must not be empty",
		})
	}
	if strings.TrimSpace(in.Key) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input.key",
			Message:  "input.key must not be empty; it names the field to rewrite",
		})
	}

	return issues
}

// validateMapping checks the CSV lookup table settings.
func validateMapping(m Mapping) []Issue {
	var issues []Issue

	if strings.TrimSpace(m.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "mapping.path",
			Message:  "mapping.path must not be empty",
		})
	}
	if strings.TrimSpace(m.OldColumn) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "mapping.old_column",
			Message:  "mapping.old_column must not be empty",
		})
	}
	if strings.TrimSpace(m.NewColumn) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "mapping.new_column",
			Message:  "mapping.new_column must not be empty",
		})
	}
	if m.OldColumn != "" && m.OldColumn == m.NewColumn {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "mapping.new_column",
			Message:  fmt.Sprintf("old_column and new_column are both %q; every lookup maps a value to itself", m.OldColumn),
		})
	}
	if n := len([]rune(m.Comma)); n > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "mapping.comma",
			Message:  fmt.Sprintf("comma %q must be a single character", m.Comma),
		})
	}

	return issues
}

// validateOutput checks the destination path.
func validateOutput(in Input, out Output) []Issue {
	var issues []Issue

	if strings.TrimSpace(out.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.path",
			Message:  "output.path must not be empty",
		})
		return issues
	}
	if out.Path == in.Path {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "output.path",
			Message:  "output.path equals input.path; the input file will be overwritten in place",
		})
	}

	return issues
}

// validateMetrics checks the optional metrics backend selection.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "":
		// Metrics disabled; nothing to check.
	case "pushgateway":
		// An empty URL is a warning only: the CLI falls back to the
		// PUSHGATEWAY_URL env var and then the conventional localhost default.
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway URL is empty; falling back to env PUSHGATEWAY_URL or the default",
			})
		}
	case "datadog":
		// Same fallback chain as pushgateway, via DD_AGENT_ADDR.
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.datadog_addr",
				Message:  "dogstatsd address is empty; falling back to env DD_AGENT_ADDR or the default",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; ensure a matching implementation exists", m.Backend),
		})
	}

	return issues
}

// validateAudit checks the optional run-history store selection.
func validateAudit(a Audit) []Issue {
	var issues []Issue

	if strings.TrimSpace(a.Kind) == "" {
		// Audit disabled; nothing to check.
		return issues
	}

	// Known kinds. Unknown kinds are warnings (for forward compatibility with
	// backends registered by other builds).
	known := map[string]struct{}{
		"sqlite":   {},
		"postgres": {},
	}
	if _, ok := known[a.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "audit.kind",
			Message:  fmt.Sprintf("unknown audit kind %q; ensure a matching backend is registered", a.Kind),
		})
	}
	if strings.TrimSpace(a.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "audit.dsn",
			Message:  "audit.dsn must not be empty when audit.kind is set",
		})
	}

	return issues
}
