// Package transformer defines the transform stage contract: a transform
// consumes the loaded elements in order and returns the records it retains
// plus a count of the elements it skipped. Skipping is the only failure mode
// a transform has; a bad element never aborts the run.
package transformer

// Transformer processes elements positionally. Retained elements keep their
// relative input order; skipped is the number of elements dropped.
type Transformer interface {
	Apply(in []any) (kept []any, skipped int)
}

// Chain is an ordered list of transformers. Each stage consumes the previous
// stage's output; skip counts accumulate across stages.
type Chain []Transformer

func (c Chain) Apply(in []any) ([]any, int) {
	out, total := in, 0
	for _, t := range c {
		var n int
		out, n = t.Apply(out)
		total += n
	}
	return out, total
}
