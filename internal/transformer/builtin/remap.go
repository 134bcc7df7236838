// Package builtin contains the concrete transforms used by the remap
// pipeline.
package builtin

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	pcsv "remap/internal/parser/csv"
	"remap/pkg/records"
)

// RejectedRecord describes one skipped element, identified by its position in
// the input array. Reason is human-readable.
type RejectedRecord struct {
	Index  int
	Reason string
}

// Remap rewrites the Key field of each record through Mapping and drops
// records without a usable replacement.
//
// Per-element policy, in input order:
//   - element is not an object        -> Reject, skip
//   - Key absent from the record      -> Reject, skip
//   - replacement empty or "nan"      -> skip silently (counted only)
//   - otherwise                       -> overwrite Key, retain
//
// The "nan" guard is case-insensitive; it filters placeholder cells that a
// spreadsheet export renders as the literal string NaN.
type Remap struct {
	// Key is the field to look up and rewrite.
	Key string

	// Mapping is the old-value to new-value association.
	Mapping pcsv.Mapping

	// FoldKeys must match the option the mapping was loaded with.
	FoldKeys bool

	// Reject, when non-nil, receives one call per element skipped for a
	// shape-level reason (wrong type, missing key). Lookup misses are not
	// reported individually, only counted.
	Reject func(RejectedRecord)
}

// Apply implements transformer.Transformer. Retained elements are always
// records.Record values with Key overwritten; every other field is left
// untouched. The skipped count covers all drop reasons.
func (t Remap) Apply(in []any) ([]any, int) {
	out := make([]any, 0, len(in))
	skipped := 0

	for i, elem := range in {
		rec, ok := elem.(records.Record)
		if !ok {
			t.reject(i, fmt.Sprintf("not an object (%T)", elem))
			skipped++
			continue
		}

		val, ok := rec[t.Key]
		if !ok {
			t.reject(i, fmt.Sprintf("key %q not found", t.Key))
			skipped++
			continue
		}

		repl, ok := t.Mapping.Lookup(asString(val), t.FoldKeys)
		if !ok || repl == "" || strings.EqualFold(repl, "nan") {
			skipped++
			continue
		}

		rec[t.Key] = repl
		out = append(out, rec)
	}

	return out, skipped
}

func (t Remap) reject(i int, reason string) {
	if t.Reject != nil {
		t.Reject(RejectedRecord{Index: i, Reason: reason})
	}
}

// asString converts the JSON value types the decoder produces to their string
// form for the mapping lookup, without going through fmt for the common ones.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
