// Package writer serializes the retained records back to a JSON array.
//
// Output is UTF-8 with non-ASCII characters kept literal (no \uXXXX escaping
// of text, no HTML escaping) and a stable two-space indent, so the artifact
// diffs cleanly and re-running the tool over its own output is byte-stable.
package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteArray encodes recs as an indented JSON array. A nil or empty slice
// encodes as []. The encoder appends a trailing newline.
func WriteArray(w io.Writer, recs []any) error {
	if recs == nil {
		recs = []any{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}

// WriteFile writes the array to path, creating or truncating the file. The
// file is only created here, after the transform stage has finished, so a
// failed run never leaves a partial artifact behind.
func WriteFile(path string, recs []any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file %s: %w", path, err)
	}

	if err := WriteArray(f, recs); err != nil {
		f.Close()
		return fmt.Errorf("output file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file %s: %w", path, err)
	}
	return nil
}
