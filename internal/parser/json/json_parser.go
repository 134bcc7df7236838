// Package json implements the record loader: it reads a JSON document whose
// top-level value must be an array and returns its elements.
//
// The loader enforces only the document-level contract (valid JSON, array at
// the top, nothing after it). Element shape is deliberately not checked here;
// the transformer decides per record whether an element is usable, so one
// malformed element never aborts a run.
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"remap/pkg/records"
)

// DecodeArray reads a single top-level JSON array from r and returns its
// elements verbatim. Objects decode to records.Record, everything else to the
// usual encoding/json generic types. Numbers are kept as json.Number so that
// untouched fields re-encode exactly as they appeared in the input.
func DecodeArray(r io.Reader) ([]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty input, expected a JSON array")
		}
		return nil, fmt.Errorf("decode: %w", err)
	}

	arr, ok := root.([]any)
	if !ok {
		return nil, fmt.Errorf("top-level JSON value is %s, expected an array", typeName(root))
	}

	// A valid document holds exactly one top-level value.
	if err := dec.Decode(new(any)); err != io.EOF {
		return nil, fmt.Errorf("trailing data after top-level array")
	}

	for i, elem := range arr {
		if m, ok := elem.(map[string]any); ok {
			arr[i] = records.Record(m)
		}
	}
	return arr, nil
}

// DecodeFile opens path and decodes the array from it, wrapping errors with
// the file path for diagnosis.
func DecodeFile(path string) ([]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open json file %s: %w", path, err)
	}
	defer f.Close()

	out, err := DecodeArray(f)
	if err != nil {
		return nil, fmt.Errorf("json file %s: %w", path, err)
	}
	return out, nil
}

// typeName renders a decoded JSON value's type for error messages.
func typeName(v any) string {
	switch v.(type) {
	case map[string]any:
		return "an object"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
