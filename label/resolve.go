package label

import "github.com/akavel/cmtoken/token"

// ResolveTo is a pure rewrite of the event log: given a log ending in
// a just-matched label-end (the 4 events emitted by Tokenize, followed
// by whatever suffix events the successful resource/reference/shortcut
// attempt appended), it splices the whole range from the chosen opener
// onward into a `link`/`image` subtree.
//
// insideSpan re-runs the ambient span constructs (emphasis, code
// spans, escapes, autolinks) over the raw text between opener and
// closer; ResolveTo then also runs ResolveAll over that result, since
// nothing else will ever revisit this now-spliced-away range.
func ResolveTo(events token.Log, insideSpan func(token.Log) token.Log) token.Log {
	close, ok := lastLabelEndExit(events)
	if !ok {
		panic("label: resolveTo called without a pending labelEnd")
	}

	open, offset := findOpener(events, close)
	if open < 0 {
		panic("label: resolveTo found no matching opener for labelEnd")
	}

	opener := events[open].Token
	groupType := token.Link
	if opener.Type == token.LabelImage {
		groupType = token.Image
	}

	last := events[len(events)-1].Token

	group := token.Token{Type: groupType, Start: opener.Start, End: last.End}
	labelTok := token.Token{Type: token.Label, Start: opener.Start, End: events[close].Token.End}
	text := token.Token{
		Type:  token.LabelText,
		Start: events[open+offset+2].Token.End,
		End:   events[close-2].Token.Start,
	}

	inner := insideSpan(events[open+offset+4 : close-3])
	inner = ResolveAll(inner)

	repl := make(token.Log, 0, len(events)-open+8)
	repl = append(repl, token.EnterEvent(group), token.EnterEvent(labelTok))
	repl = append(repl, events[open+1:open+offset+3]...)
	repl = append(repl, token.EnterEvent(text))
	repl = append(repl, inner...)
	repl = append(repl, token.ExitEvent(text))
	repl = append(repl, events[close-2], events[close-1])
	repl = append(repl, token.ExitEvent(labelTok))
	repl = append(repl, events[close+1:]...)
	repl = append(repl, token.ExitEvent(group))

	return events.Splice(open, len(events), repl)
}

// lastLabelEndExit finds the most recently emitted `exit labelEnd`
// event -- the closer produced once Tokenize recognizes a `]`.
func lastLabelEndExit(events token.Log) (index int, ok bool) {
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Kind == token.Exit && ev.Token.Type == token.LabelEnd {
			return i, true
		}
	}
	return 0, false
}

// findOpener continues the backward walk from the closer: it
// locates the nearest unbalanced labelImage/labelLink opener before
// close, and -- for a non-image opener -- keeps walking past it to
// mark every still-pending, enclosing labelLink opener as inactive, so
// that link cannot nest inside link.
func findOpener(events token.Log, close int) (open, offset int) {
	open = -1
	for i := close - 1; i >= 0; i-- {
		ev := events[i]
		tok := ev.Token

		if open < 0 {
			if ev.Kind == token.Enter &&
				(tok.Type == token.LabelImage || tok.Type == token.LabelLink) &&
				tok.State != token.Balanced {
				open = i
				if tok.Type == token.LabelImage {
					offset = 2
					return open, offset
				}
			}
			continue
		}

		// Past the chosen (link) opener: keep walking to suppress
		// any enclosing, still-open link openers.
		if ev.Kind == token.Enter && tok.Type == token.Link {
			break
		}
		if ev.Kind == token.Enter && tok.Type == token.LabelLink && tok.State == token.Inactive {
			break
		}
		if ev.Kind == token.Enter && tok.Type == token.LabelLink {
			events.MarkState(i, token.Inactive)
		}
	}
	return open, offset
}

// ResolveAll walks the log once at end of document, demoting
// every remaining labelImage/labelLink/labelEnd opener-or-closer group
// -- tokens that were never claimed by a successful ResolveTo -- to a
// single `data` token apiece, with their marker events removed.
//
// Every labelImage/labelLink opener and every labelEnd closer is
// emitted as a full Enter+Exit pair (inline.openBracket/openImage emit
// a placeholder Exit for the opener; label.Tokenize's labelEnd Exit is
// real but still needs retyping). The skip count below must therefore
// also consume that trailing Exit event, not just the marker events
// between Enter and it -- otherwise it falls through to the default
// case unchanged, leaving a dangling labelLink/labelImage/labelEnd
// Exit with no matching Enter in the output.
func ResolveAll(events token.Log) token.Log {
	out := make(token.Log, 0, len(events))
	for i := 0; i < len(events); i++ {
		ev := events[i]
		if ev.Kind != token.Enter {
			out = append(out, ev)
			continue
		}

		switch ev.Token.Type {
		case token.LabelImage:
			tok := ev.Token
			tok.Type = token.Data
			tok.State = token.Open
			tok.End = events[i+4].Token.End
			out = append(out, token.EnterEvent(tok), token.ExitEvent(tok))
			i += 5 // the 4 marker events plus the opener's own trailing Exit
		case token.LabelLink, token.LabelEnd:
			tok := ev.Token
			tok.Type = token.Data
			tok.State = token.Open
			tok.End = events[i+2].Token.End
			out = append(out, token.EnterEvent(tok), token.ExitEvent(tok))
			i += 3 // the 2 marker events plus the opener/closer's own trailing Exit
		default:
			out = append(out, ev)
		}
	}
	return out
}
