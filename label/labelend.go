package label

import "github.com/akavel/cmtoken/token"

// Tokenize's entry condition is that eff's current position sits on a
// `]`. It looks back for the nearest
// unbalanced opener, marks it balanced on any failure so the same `]`
// is never retried against it (the bookkeeping that keeps this a
// linear, not quadratic, pass), and on success leaves the event log
// positioned for the caller to run ResolveTo over.
func (c Construct) Tokenize(eff Effects) bool {
	events := eff.Events()
	openIdx, ok := events.LastUnbalancedOpener(len(events))
	if !ok {
		return false
	}

	if events[openIdx].Token.State == token.Inactive {
		events.MarkState(openIdx, token.Balanced)
		return false
	}

	opener := events[openIdx].Token
	candidate := eff.SliceSerialize(opener.End, eff.Now())
	defined := eff.Defined(candidate)

	eff.Enter(token.LabelEnd)
	eff.Enter(token.LabelMarker)
	eff.Consume() // the ']'
	eff.Exit(token.LabelMarker)
	eff.Exit(token.LabelEnd)

	next, hasNext := eff.Byte(0)

	switch {
	case hasNext && next == '(':
		if c.attemptResource(eff) {
			return true
		}
		if defined {
			return true
		}
		return c.balanced(eff, openIdx)

	case hasNext && next == '[':
		if c.attemptFullReference(eff) {
			return true
		}
		if defined {
			if c.attemptCollapsedReference(eff) {
				return true
			}
		}
		return c.balanced(eff, openIdx)

	default:
		if defined {
			return true
		}
		return c.balanced(eff, openIdx)
	}
}

// balanced marks the opener at index openIdx as permanently closed
// off and reports failure.
func (c Construct) balanced(eff Effects, openIdx int) bool {
	eff.Events().MarkState(openIdx, token.Balanced)
	return false
}

// Resolve drives ResolveTo over eff's current event log. Call it
// immediately after Tokenize reports success.
func (c Construct) Resolve(eff Effects) {
	eff.SetEvents(ResolveTo(eff.Events(), eff.InsideSpan))
}

// ResolveAll drives the end-of-document cleanup pass over eff's event
// log, demoting every opener left dangling by a
// Tokenize call that never succeeded.
func (c Construct) ResolveAll(eff Effects) {
	eff.SetEvents(ResolveAll(eff.Events()))
}
