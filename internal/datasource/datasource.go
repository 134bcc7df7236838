// Package datasource abstracts where a run's inputs come from. The pipeline
// reads two artifacts per run, the JSON array and the mapping CSV, and both
// are consumed through this one interface so the stages never care whether a
// path named a local file or a URL.
package datasource

import (
	"context"
	"io"
)

// Source yields the raw bytes of one input artifact. Each Open call returns
// an independent reader the caller must close.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
