// Package csv implements the mapping loader: it reads a two-column CSV table
// and builds an association from old field value to new field value.
//
// The loader is strict about the table itself (a broken file or a missing
// column aborts the load) but lenient about individual rows: rows whose
// old-column cell is empty are dropped and counted, mirroring how the rest of
// the pipeline soft-fails per record instead of aborting the run.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"remap/internal/fold"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Mapping associates an old field value with its replacement. Keys and values
// are trimmed strings; a duplicate old value in the source table is resolved
// as last row wins.
type Mapping map[string]string

// Lookup returns the replacement for value, trimming it first and applying
// the same key folding the mapping was built with.
func (m Mapping) Lookup(value string, foldKeys bool) (string, bool) {
	k := strings.TrimSpace(value)
	if foldKeys {
		k = fold.Key(k)
	}
	v, ok := m[k]
	return v, ok
}

// Options configures the mapping loader. OldColumn and NewColumn are
// required; the remaining fields default sensibly when zero.
type Options struct {
	// OldColumn names the header of the column holding current values.
	OldColumn string

	// NewColumn names the header of the column holding replacement values.
	NewColumn string

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// FoldKeys strips diacritics from old values before they are inserted as
	// mapping keys. Lookups through Mapping.Lookup fold the same way.
	FoldKeys bool
}

// Loader reads mapping tables according to Options. It is safe to reuse
// across inputs, but Loader itself is not concurrency-safe.
type Loader struct{ opt Options }

// NewLoader constructs a Loader with the provided Options.
func NewLoader(opt Options) *Loader { return &Loader{opt: opt} }

// Load consumes the CSV table from r and returns the mapping along with the
// number of rows dropped because their old-column cell was empty or missing.
//
// Failure modes (all fatal to the load): unreadable header, either named
// column absent from the header, or any CSV syntax error in the body. A new
// column cell that is empty still produces an entry mapping to ""; filtering
// of empty replacements is the transformer's concern, not the loader's.
func (l *Loader) Load(r io.Reader) (Mapping, int, error) {
	cr := csv.NewReader(r)
	if l.opt.Comma != 0 {
		cr.Comma = l.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read mapping header: %w", err)
	}

	oldIdx, newIdx := -1, -1
	for i, raw := range header {
		c := strings.TrimSpace(raw)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		switch c {
		case l.opt.OldColumn:
			oldIdx = i
		case l.opt.NewColumn:
			newIdx = i
		}
	}
	if oldIdx < 0 || newIdx < 0 {
		return nil, 0, fmt.Errorf(
			"required columns %q or %q not found in mapping header %v",
			l.opt.OldColumn, l.opt.NewColumn, trimmedHeader(header),
		)
	}

	mapping := Mapping{}
	dropped := 0

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read mapping row: %w", err)
		}

		old := cell(row, oldIdx)
		if old == "" {
			dropped++
			continue
		}
		if l.opt.FoldKeys {
			old = fold.Key(old)
		}
		// Last row wins on duplicate old values.
		mapping[old] = cell(row, newIdx)
	}

	return mapping, dropped, nil
}

// LoadFile opens path and loads the mapping from it, wrapping errors with the
// file path so failures are diagnosable without re-running.
func (l *Loader) LoadFile(path string) (Mapping, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open mapping file %s: %w", path, err)
	}
	defer f.Close()

	m, dropped, err := l.Load(f)
	if err != nil {
		return nil, 0, fmt.Errorf("mapping file %s: %w", path, err)
	}
	return m, dropped, nil
}

// cell returns the trimmed value at idx, or "" when the row is too narrow.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func trimmedHeader(h []string) []string {
	out := make([]string, len(h))
	for i, c := range h {
		c = strings.TrimSpace(c)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		out[i] = c
	}
	return out
}
