// Package file reads run inputs from the local filesystem, the common case
// for this tool: the mapping CSV and the JSON array usually sit next to each
// other on the machine running the job.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is a datasource.Source bound to one filesystem path.
type Local struct{ path string }

// NewLocal binds a source to path. The path is not touched until Open.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the path for reading.
//
// A context that is already canceled short-circuits before the filesystem is
// touched. Filesystem errors are wrapped with the path but stay transparent
// to errors.Is, so callers can still test for os.ErrNotExist to distinguish
// a mistyped path from a permission problem.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
