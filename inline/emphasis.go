// Emphasis resolution re-runs over a sliced range of the event log as
// a separate pass, not a re-entry of the top-level tokenizer. Emphasis
// is the one ambient construct that genuinely needs this: `*`/`_` runs
// are scanned without being resolved (each lands as a plain one-rune
// data token, same as any other character), and only once a range's
// true extent is known -- either the whole top-level text, or the text
// trapped between a matched link/image opener and closer -- does this
// pass pair up delimiter runs into emphasis groups.
//
// The flanking-rank test and the stack-based delimiter matching follow
// the classic approach: a left-flanking run opens, a right-flanking
// run searches the stack for the nearest opening of the same character
// (discarding anything still open above it), and claims
// min(openLength, closeLength) characters from the right edge of the
// opener and the left edge of the closer. This implementation claims
// at most once per run rather than letting a run's leftover length
// keep hunting further down the stack -- chained multi-level matches
// off a single over-long delimiter run (e.g. `**a*b**`'s inner `*`
// re-using the outer `**`'s leftover length) fall back to literal text
// instead of a second match. See DESIGN.md.
package inline

import (
	"unicode"
	"unicode/utf8"

	"github.com/akavel/cmtoken/token"
)

type emphasisUnit struct {
	startIdx, endIdx int
	isDelim          bool
	char             byte
	length           int
}

func (u emphasisUnit) start(events token.Log) token.Point { return events[u.startIdx].Token.Start }
func (u emphasisUnit) end(events token.Log) token.Point   { return events[u.endIdx].Token.End }

type emphasisMatch struct {
	closeIdx int
	n        int
}

// ResolveEmphasis pairs up `*`/`_` delimiter runs within a flat event
// log into Emphasis/EmphasisSequence groups. It runs before
// label.ResolveAll, so unmatched labelImage/labelLink/labelEnd groups
// may still be present; each is treated as an opaque non-delimiter unit.
func ResolveEmphasis(events token.Log, slice func(token.Point, token.Point) []byte) token.Log {
	if len(events) == 0 {
		return events
	}
	units := partitionEmphasisUnits(events, slice)
	opens := matchEmphasisUnits(units, events, slice)
	return renderEmphasisRange(units, 0, len(units), opens, events)
}

func matchExit(events token.Log, i int, t token.Type) int {
	depth := 0
	for j := i; j < len(events); j++ {
		if events[j].Kind == token.Enter && events[j].Token.Type == t {
			depth++
		}
		if events[j].Kind == token.Exit && events[j].Token.Type == t {
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	panic("inline: unbalanced event log for type " + string(t))
}

func partitionEmphasisUnits(events token.Log, slice func(token.Point, token.Point) []byte) []emphasisUnit {
	var units []emphasisUnit
	i := 0
	for i < len(events) {
		ev := events[i]
		t := ev.Token.Type
		j := matchExit(events, i, t)

		if t != token.Data {
			units = append(units, emphasisUnit{startIdx: i, endIdx: j})
			i = j + 1
			continue
		}

		char, isDelim := delimChar(slice(ev.Token.Start, events[j].Token.End))
		start, end := i, j
		k := j + 1
		for k < len(events) && events[k].Kind == token.Enter && events[k].Token.Type == token.Data {
			j2 := matchExit(events, k, token.Data)
			c2, d2 := delimChar(slice(events[k].Token.Start, events[j2].Token.End))
			if d2 != isDelim || (isDelim && c2 != char) {
				break
			}
			end = j2
			k = j2 + 1
		}
		units = append(units, emphasisUnit{
			startIdx: start, endIdx: end,
			isDelim: isDelim, char: char,
			length: (end - start + 1) / 2,
		})
		i = end + 1
	}
	return units
}

func delimChar(b []byte) (char byte, isDelim bool) {
	if len(b) == 1 && (b[0] == '*' || b[0] == '_') {
		return b[0], true
	}
	return 0, false
}

func edgeRune(units []emphasisUnit, idx int, events token.Log, slice func(token.Point, token.Point) []byte, fromRight bool) rune {
	if idx < 0 || idx >= len(units) {
		return 0
	}
	u := units[idx]
	b := slice(u.start(events), u.end(events))
	if len(b) == 0 {
		return 0
	}
	if fromRight {
		r, _ := utf8.DecodeLastRune(b)
		return r
	}
	r, _ := utf8.DecodeRune(b)
	return r
}

// emphasisFringeRank ports span/detector.go's emphasisFringeRank: 0
// for whitespace/control/boundary, 1 for punctuation/symbols, 2 for
// everything else (letters, digits, and anything else word-like).
func emphasisFringeRank(r rune) int {
	switch {
	case r == utf8.RuneError || r == 0:
		return 0
	case unicode.In(r, unicode.Zs, unicode.Zl, unicode.Zp, unicode.Cc, unicode.Cf):
		return 0
	case unicode.In(r, unicode.Pc, unicode.Pd, unicode.Ps, unicode.Pe, unicode.Pi, unicode.Pf, unicode.Po, unicode.Sc, unicode.Sk, unicode.Sm, unicode.So):
		return 1
	default:
		return 2
	}
}

type emphasisOpening struct {
	unitIdx int
	char    byte
	length  int
}

func matchEmphasisUnits(units []emphasisUnit, events token.Log, slice func(token.Point, token.Point) []byte) map[int]emphasisMatch {
	opens := map[int]emphasisMatch{}
	var stack []emphasisOpening

	for idx, u := range units {
		if !u.isDelim {
			continue
		}
		leftRank := emphasisFringeRank(edgeRune(units, idx-1, events, slice, true))
		rightRank := emphasisFringeRank(edgeRune(units, idx+1, events, slice, false))
		flanking := leftRank - rightRank

		switch {
		case flanking < 0:
			stack = append(stack, emphasisOpening{unitIdx: idx, char: u.char, length: u.length})

		case flanking > 0:
			i := len(stack) - 1
			for i >= 0 && stack[i].char != u.char {
				i--
			}
			if i < 0 {
				continue // no compatible opener; this run stays literal
			}
			open := stack[i]
			stack = stack[:i] // discard this opener and anything still open above it
			n := open.length
			if u.length < n {
				n = u.length
			}
			opens[open.unitIdx] = emphasisMatch{closeIdx: idx, n: n}
		}
	}
	return opens
}

func renderEmphasisRange(units []emphasisUnit, a, b int, opens map[int]emphasisMatch, events token.Log) token.Log {
	var out token.Log
	k := a
	for k < b {
		u := units[k]
		if m, ok := opens[k]; ok {
			out = append(out, renderEmphasisMatch(units, k, m, opens, events)...)
			k = m.closeIdx + 1
			continue
		}
		if u.isDelim {
			tok := token.Token{Type: token.Data, Start: u.start(events), End: u.end(events)}
			out = append(out, token.EnterEvent(tok), token.ExitEvent(tok))
		} else {
			out = append(out, events[u.startIdx:u.endIdx+1]...)
		}
		k++
	}
	return out
}

func renderEmphasisMatch(units []emphasisUnit, openIdx int, m emphasisMatch, opens map[int]emphasisMatch, events token.Log) token.Log {
	open := units[openIdx]
	close := units[m.closeIdx]
	n := m.n

	var out token.Log

	prefixLen := open.length - n
	if prefixLen > 0 {
		prefixEnd := events[open.startIdx+2*prefixLen-1].Token.End
		tok := token.Token{Type: token.Data, Start: open.start(events), End: prefixEnd}
		out = append(out, token.EnterEvent(tok), token.ExitEvent(tok))
	}

	openMarkerStart := events[open.startIdx+2*prefixLen].Token.Start
	openMarkerEnd := open.end(events)
	closeMarkerStart := close.start(events)
	closeMarkerEnd := events[close.startIdx+2*n-1].Token.End

	group := token.Token{Type: token.Emphasis, Start: openMarkerStart, End: closeMarkerEnd}
	out = append(out, token.EnterEvent(group))

	seqOpen := token.Token{Type: token.EmphasisSequence, Start: openMarkerStart, End: openMarkerEnd}
	out = append(out, token.EnterEvent(seqOpen), token.ExitEvent(seqOpen))

	text := token.Token{Type: token.EmphasisText, Start: openMarkerEnd, End: closeMarkerStart}
	out = append(out, token.EnterEvent(text))
	out = append(out, renderEmphasisRange(units, openIdx+1, m.closeIdx, opens, events)...)
	out = append(out, token.ExitEvent(text))

	seqClose := token.Token{Type: token.EmphasisSequence, Start: closeMarkerStart, End: closeMarkerEnd}
	out = append(out, token.EnterEvent(seqClose), token.ExitEvent(seqClose))

	out = append(out, token.ExitEvent(group))

	suffixLen := close.length - n
	if suffixLen > 0 {
		suffixStart := events[close.startIdx+2*n].Token.Start
		tok := token.Token{Type: token.Data, Start: suffixStart, End: close.end(events)}
		out = append(out, token.EnterEvent(tok), token.ExitEvent(tok))
	}

	return out
}
