// Package label recognizes a `]` terminator, looks back for its
// matching `[`/`![` opener, tries the resource/full-reference/
// collapsed-reference/shortcut suffixes in priority order, and
// rewrites the event log on success (resolveTo) or at end of document
// (resolveAll).
//
// Everything this package needs from the surrounding tokenizer --
// whitespace/destination/title/label sub-parsing, the definition
// registry, and the inside-span resolver for re-tokenizing matched
// link text -- arrives through the Effects interface and the
// Construct's injected factories, kept as black-box external
// collaborators rather than anything this package knows how to do
// itself.
package label

import "github.com/akavel/cmtoken/token"

// Mark is an opaque rollback point used by the suffix recognizers to
// undo a failed attempt: both the position and any events appended
// while probing a suffix must be discarded together.
type Mark struct {
	EventsLen int
	Pos       token.Point
}

// Effects is the seam between this package and whatever drives the
// character-by-character scan (the inline package's Scanner):
// Enter/Exit/Consume build the event log, Defined/InsideSpan/
// SliceSerialize read parser state, Now reports position.
type Effects interface {
	// Enter appends an Enter event for a token of type t starting at
	// the current position.
	Enter(t token.Type)
	// Exit closes the innermost still-open token of type t, setting
	// its End to the current position.
	Exit(t token.Type)
	// Consume advances the current position past the next rune in
	// the input, without itself emitting any event.
	Consume()
	// Byte returns the byte at the current position plus offset,
	// and whether that position is within the input.
	Byte(offset int) (b byte, ok bool)
	// Now returns the current position.
	Now() token.Point
	// Events returns the event log accumulated so far.
	Events() token.Log
	// SetEvents replaces the event log wholesale -- used by
	// ResolveTo/ResolveAll to install a rewritten log.
	SetEvents(token.Log)
	// Defined reports whether raw names a known reference
	// definition; the implementation normalizes raw internally
	// (whitespace collapse, Unicode case-fold) before the lookup.
	Defined(raw []byte) bool

	// Mark captures enough state (event-log length, position) to
	// roll back a failed suffix attempt. Reset restores it.
	Mark() Mark
	Reset(Mark)
	// InsideSpan re-runs the ambient span constructs (emphasis, code
	// spans, escapes, autolinks) over a slice of already-buffered
	// raw events, producing their resolved replacement. Used by
	// ResolveTo to process the text between a matched opener and
	// closer.
	InsideSpan(events token.Log) token.Log
	// SliceSerialize returns the raw input bytes between two
	// positions, for identifier extraction (shortcut/collapsed
	// reference lookups).
	SliceSerialize(start, end token.Point) []byte
}
