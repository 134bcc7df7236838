// Package fold provides the diacritic folding used for lenient mapping
// lookups. Folding decomposes a string, strips nonspacing marks, and
// recomposes it, so "Zkušební" and "Zkusebni" compare equal.
package fold

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var chain = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Key folds s for use as a lookup key. Case is preserved; only accents are
// removed. Invalid UTF-8 passes through unchanged.
func Key(s string) string {
	out, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return out
}
