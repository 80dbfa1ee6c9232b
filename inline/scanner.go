// Package inline is the top-level tokenizer driver: the `[` and `![`
// opener recognizers, and the character-escape, autolink, and
// code-span recognizers consumed inside nested runs. It supplies all
// of them so label.Construct has something to run inside, emitting
// enter/exit events into a token.Log and calling into label.Construct
// on `]`.
package inline

import (
	"unicode/utf8"

	"github.com/akavel/cmtoken/definition"
	"github.com/akavel/cmtoken/label"
	"github.com/akavel/cmtoken/token"
)

// Scanner is the Effects implementation label.Construct drives. One
// Scanner tokenizes one contiguous run of inline-bearing text (a
// paragraph's or heading's joined raw lines); blocksplit.Split creates
// one per block that carries inline content.
type Scanner struct {
	input  []byte
	origin int // document offset of input[0]
	pos    int // byte index into input
	cur    token.Point
	events token.Log
	defs   *definition.Set
}

// NewScanner creates a Scanner over text, whose first byte sits at
// document position start.
func NewScanner(text []byte, start token.Point, defs *definition.Set) *Scanner {
	return &Scanner{input: text, origin: start.Offset, cur: start, defs: defs}
}

func (s *Scanner) Enter(t token.Type) {
	p := s.cur
	s.events = append(s.events, token.EnterEvent(token.Token{Type: t, Start: p, End: p}))
}

func (s *Scanner) Exit(t token.Type) {
	for i := len(s.events) - 1; i >= 0; i-- {
		ev := s.events[i]
		if ev.Kind == token.Enter && ev.Token.Type == t {
			s.events[i].Token.End = s.cur
			s.events = append(s.events, token.ExitEvent(s.events[i].Token))
			return
		}
	}
	panic("inline: exit without matching enter: " + string(t))
}

func (s *Scanner) Consume() {
	if s.pos >= len(s.input) {
		return
	}
	_, size := utf8.DecodeRune(s.input[s.pos:])
	s.cur = s.cur.Advance(s.input[s.pos : s.pos+size])
	s.pos += size
}

func (s *Scanner) Byte(offset int) (byte, bool) {
	i := s.pos + offset
	if i < 0 || i >= len(s.input) {
		return 0, false
	}
	return s.input[i], true
}

func (s *Scanner) Now() token.Point { return s.cur }

func (s *Scanner) Events() token.Log { return s.events }

func (s *Scanner) SetEvents(l token.Log) { s.events = l }

func (s *Scanner) Defined(raw []byte) bool { return s.defs.Has(raw) }

func (s *Scanner) Mark() label.Mark {
	return label.Mark{EventsLen: len(s.events), Pos: s.cur}
}

func (s *Scanner) Reset(m label.Mark) {
	s.events = s.events[:m.EventsLen]
	s.cur = m.Pos
	s.pos = m.Pos.Offset - s.origin
}

// InsideSpan re-runs the ambient span constructs over a slice of
// already-buffered raw events -- in practice just the emphasis
// resolver, since escapes/code spans/autolinks are already resolved
// live by the main Scan loop and never survive into this slice
// unresolved (see DESIGN.md).
func (s *Scanner) InsideSpan(events token.Log) token.Log {
	return ResolveEmphasis(events, s.SliceSerialize)
}

func (s *Scanner) SliceSerialize(start, end token.Point) []byte {
	return s.input[start.Offset-s.origin : end.Offset-s.origin]
}

// Tokenize drives the main character-by-character scan: at each
// position it tries, in order, the escape, code span and autolink recognizers,
// then the `[`/`![` opener recognizers, then -- on `]` -- dispatches
// into the label construct. Anything unclaimed becomes a single-rune
// data token. It returns the resolved event log: every successful
// label match has already been rewritten by ResolveTo, and a final
// ResolveEmphasis + label.Construct.ResolveAll pass demotes whatever's
// left.
func Tokenize(text []byte, start token.Point, defs *definition.Set) token.Log {
	s := NewScanner(text, start, defs)
	c := Construct()

	for s.pos < len(s.input) {
		b := s.input[s.pos]
		switch {
		case b == '\\' && escapedChar(s):
			continue
		case b == '`' && codeSpan(s):
			continue
		case b == '<' && autolink(s):
			continue
		case b == '[':
			openBracket(s)
			continue
		case b == '!' && s.pos+1 < len(s.input) && s.input[s.pos+1] == '[':
			openImage(s)
			continue
		case b == ']':
			before := s.pos
			if c.Tokenize(s) {
				c.Resolve(s)
			} else if s.pos == before {
				// Tokenize left the position unmoved only when it
				// found no opener to dispatch against at all, or the
				// nearest one was already Inactive -- both return
				// before ever consuming the ']'. Every other failure
				// path (the "balanced" outcome) already consumed it
				// via eff.Consume() before reporting failure, so
				// consuming again here would eat the byte after the
				// ']' instead of the ']' itself.
				data(s, 1)
			}
			continue
		default:
			data(s, 1)
		}
	}

	out := ResolveEmphasis(s.Events(), s.SliceSerialize)
	out = label.ResolveAll(out)
	return out
}

// data emits a single data token spanning n runes (not bytes) of
// plain text starting at the current position.
func data(s *Scanner, runes int) {
	start := s.Now()
	for i := 0; i < runes && s.pos < len(s.input); i++ {
		s.Consume()
	}
	end := s.Now()
	tok := token.Token{Type: token.Data, Start: start, End: end}
	s.events = append(s.events, token.EnterEvent(tok), token.ExitEvent(tok))
}
