// Package definition holds the set of reference identifiers harvested
// from `[id]: url "title"` definition blocks during the block pre-pass
// (package blockdef), and normalizes identifiers the same way on both
// the write side and the read side so that `[Foo Bar]` and `[foo  bar]`
// name the same definition.
package definition

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

var fold = cases.Fold()

// Normalize collapses interior whitespace runs to a single space,
// folds full-width/half-width rune variants to their canonical form,
// trims the ends, and Unicode case-folds, matching CommonMark's
// reference-label matching rule. It is the one normalization routine
// both Set.Add and Set.Has must agree on.
func Normalize(raw []byte) string {
	collapsed := simplify(raw)
	return fold.String(width.Fold.String(collapsed))
}

// simplify is vfmd's whitespace collapse (trim, shorten runs of
// whitespace to a single space) ported byte-for-byte; case-folding is
// layered on top of it here since CommonMark definitions are matched
// case-insensitively, which the original construct never needed.
func simplify(buf []byte) string {
	out := make([]byte, 0, len(buf))
	drop := true
	for _, b := range buf {
		switch {
		case !isWhite(b):
			out = append(out, b)
			drop = false
		case !drop:
			out = append(out, ' ')
			drop = true
		default:
		}
	}
	if len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return string(out)
}

func isWhite(b byte) bool {
	return b == 0x09 || b == 0x0a || b == 0x0c || b == 0x0d || b == 0x20
}

// Definition is one `[id]: destination "title"` entry.
type Definition struct {
	Identifier  string // normalized
	Destination []byte
	Title       []byte
}

// Set is the read-only (once built) registry consulted by the label
// package's Effects.Defined. The document pre-pass is the only writer;
// inline resolution only ever calls Has/Lookup.
type Set struct {
	entries map[string]Definition
}

// NewSet returns an empty Set ready for Add calls during the block
// pre-pass.
func NewSet() *Set {
	return &Set{entries: make(map[string]Definition)}
}

// Add registers a definition under its normalized identifier. The
// first definition for a given identifier wins, matching CommonMark's
// "earlier definitions take precedence" rule -- a later duplicate is
// silently ignored rather than overwriting it.
func (s *Set) Add(rawIdentifier, destination, title []byte) {
	id := Normalize(rawIdentifier)
	if _, exists := s.entries[id]; exists {
		return
	}
	s.entries[id] = Definition{
		Identifier:  id,
		Destination: append([]byte(nil), destination...),
		Title:       append([]byte(nil), title...),
	}
}

// Has reports whether raw, once normalized, names a known definition.
// This is the method the label package's Effects.Defined wraps.
func (s *Set) Has(raw []byte) bool {
	_, ok := s.entries[Normalize(raw)]
	return ok
}

// Lookup returns the definition named by raw (normalized), if any.
func (s *Set) Lookup(raw []byte) (Definition, bool) {
	d, ok := s.entries[Normalize(raw)]
	return d, ok
}

// Len reports how many distinct definitions are registered.
func (s *Set) Len() int {
	return len(s.entries)
}
