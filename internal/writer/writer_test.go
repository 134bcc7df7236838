package writer_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"remap/internal/writer"
	"remap/pkg/records"
)

func TestWriteArray_NonASCIIPreserved(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	recs := []any{records.Record{"name": "Žlutý kůň", "html": "<a&b>"}}
	if err := writer.WriteArray(&buf, recs); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("Žlutý kůň")) {
		t.Errorf("non-ASCII was escaped:\n%s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("<a&b>")) {
		t.Errorf("HTML characters were escaped:\n%s", out)
	}
}

func TestWriteArray_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writer.WriteArray(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != "[]\n" {
		t.Errorf("empty output = %q, want %q", got, "[]\n")
	}
}

func TestWriteArray_Indent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	recs := []any{records.Record{"k": "X"}}
	if err := writer.WriteArray(&buf, recs); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "[\n  {\n    \"k\": \"X\"\n  }\n]\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// Writing, reloading with UseNumber, and writing again must reproduce the
// same bytes. This is what makes re-running the tool over its own output
// stable.
func TestWriteArray_RoundTripStable(t *testing.T) {
	t.Parallel()

	var first bytes.Buffer
	recs := []any{records.Record{"k": "X", "n": json.Number("1.50"), "b": true}}
	if err := writer.WriteArray(&first, recs); err != nil {
		t.Fatalf("first write: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(first.Bytes()))
	dec.UseNumber()
	var reloaded []any
	if err := dec.Decode(&reloaded); err != nil {
		t.Fatalf("reload: %v", err)
	}

	var second bytes.Buffer
	if err := writer.WriteArray(&second, reloaded); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("round trip not byte-stable:\nfirst:  %q\nsecond: %q", first.String(), second.String())
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	if err := writer.WriteFile(path, []any{records.Record{"k": "X"}}); err != nil {
		t.Fatalf("write file: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got []records.Record
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0]["k"] != "X" {
		t.Errorf("file content = %v", got)
	}
}

func TestWriteFile_BadPath(t *testing.T) {
	t.Parallel()

	err := writer.WriteFile(filepath.Join(t.TempDir(), "nope", "out.json"), nil)
	if err == nil {
		t.Fatalf("expected error for unwritable path")
	}
}
