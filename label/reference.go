package label

import "github.com/akavel/cmtoken/token"

// attemptFullReference recognizes the `[label]` suffix, valid only
// when label (after normalization) names a known definition. Entered
// with the current position on `[`.
func (c Construct) attemptFullReference(eff Effects) bool {
	mark := eff.Mark()

	start := len(eff.Events())
	if !c.Label(eff) {
		eff.Reset(mark)
		return false
	}

	id := referenceStringContent(eff, start)
	if !eff.Defined(id) {
		eff.Reset(mark)
		return false
	}
	return true
}

// referenceStringContent locates the referenceString event emitted by
// the Label factory (starting at events[from:]) and returns its raw
// bytes, stripped of the enclosing `[`/`]` the factory already
// excludes from that token's span.
func referenceStringContent(eff Effects, from int) []byte {
	events := eff.Events()
	for i := from; i < len(events); i++ {
		ev := events[i]
		if ev.Kind == token.Enter && ev.Token.Type == token.ReferenceString {
			return eff.SliceSerialize(ev.Token.Start, ev.Token.End)
		}
	}
	return nil
}

// attemptCollapsedReference recognizes the `[]` suffix. Only entered
// once the opener's own bracket text is already known to
// be a defined shortcut identifier (checked by the caller, labelend.go,
// before dispatching here). Entered with the current position on `[`.
func (c Construct) attemptCollapsedReference(eff Effects) bool {
	mark := eff.Mark()

	eff.Enter(token.Reference)
	eff.Enter(token.ReferenceMarker)
	eff.Consume() // '['
	eff.Exit(token.ReferenceMarker)

	if b, ok := eff.Byte(0); !ok || b != ']' {
		eff.Reset(mark)
		return false
	}

	eff.Enter(token.ReferenceMarker)
	eff.Consume() // ']'
	eff.Exit(token.ReferenceMarker)
	eff.Exit(token.Reference)
	return true
}
