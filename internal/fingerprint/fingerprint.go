// Package fingerprint computes content hashes of the run's input artifacts.
// The digests go into the run log and the audit store so a given output can
// be traced back to the exact mapping table and input file that produced it.
package fingerprint

import (
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"
)

// Reader hashes everything from r and returns the xxh3-64 digest as a
// 16-character hex string.
func Reader(r io.Reader) (string, error) {
	h := xxh3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// File hashes the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sum, err := Reader(f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return sum, nil
}
