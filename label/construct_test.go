package label

import (
	"strings"
	"testing"

	"github.com/akavel/cmtoken/token"
)

// fakeEffects is a minimal, in-memory Effects good enough to drive the
// label construct over a fixed byte string without any of the
// surrounding inline-tokenizer machinery. It treats "[" and "![" as
// already-opened labelLink/labelImage tokens supplied by the caller up
// front, matching how the real Scanner would have run the opener
// recognizers before ever reaching `]`.
type fakeEffects struct {
	input   []byte
	pos     int
	events  token.Log
	defined map[string]bool
}

func newFakeEffects(input string, defined ...string) *fakeEffects {
	d := make(map[string]bool, len(defined))
	for _, id := range defined {
		d[strings.ToLower(id)] = true
	}
	return &fakeEffects{input: []byte(input), defined: d}
}

func (f *fakeEffects) point() token.Point {
	return token.Point{Offset: f.pos, Line: 1, Column: f.pos + 1}
}

func (f *fakeEffects) openLabelLink() {
	start := f.point()
	f.events = append(f.events, token.EnterEvent(token.Token{Type: token.LabelLink, Start: start, End: start}))
	f.events = append(f.events, token.EnterEvent(token.Token{Type: token.LabelMarker, Start: start, End: start}))
	f.pos++ // '['
	end := f.point()
	f.events[len(f.events)-1].Token.End = end
	f.events[len(f.events)-2].Token.End = end // the labelLink Enter, as Scanner.Exit would set it
	f.events = append(f.events, token.ExitEvent(token.Token{Type: token.LabelMarker, Start: start, End: end}))
	f.events = append(f.events, token.ExitEvent(token.Token{Type: token.LabelLink, Start: start, End: end}))
}

func (f *fakeEffects) openLabelImage() {
	start := f.point()
	f.events = append(f.events, token.EnterEvent(token.Token{Type: token.LabelImage, Start: start, End: start}))
	f.events = append(f.events, token.EnterEvent(token.Token{Type: token.LabelMarker, Start: start, End: start}))
	f.pos++ // '!'
	mid := f.point()
	f.events[len(f.events)-1].Token.End = mid
	f.events = append(f.events, token.ExitEvent(token.Token{Type: token.LabelMarker, Start: start, End: mid}))
	f.events = append(f.events, token.EnterEvent(token.Token{Type: token.LabelMarker, Start: mid, End: mid}))
	f.pos++ // '['
	end := f.point()
	f.events[len(f.events)-1].Token.End = end
	f.events[len(f.events)-4].Token.End = end // the labelImage Enter, as Scanner.Exit would set it
	f.events = append(f.events, token.ExitEvent(token.Token{Type: token.LabelMarker, Start: mid, End: end}))
	f.events = append(f.events, token.ExitEvent(token.Token{Type: token.LabelImage, Start: start, End: end}))
}

func (f *fakeEffects) text(s string) {
	start := f.point()
	f.pos += len(s)
	end := f.point()
	f.events = append(f.events, token.EnterEvent(token.Token{Type: token.Data, Start: start, End: end}))
	f.events = append(f.events, token.ExitEvent(token.Token{Type: token.Data, Start: start, End: end}))
}

func (f *fakeEffects) Enter(t token.Type) {
	p := f.point()
	f.events = append(f.events, token.EnterEvent(token.Token{Type: t, Start: p, End: p}))
}

func (f *fakeEffects) Exit(t token.Type) {
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].Kind == token.Enter && f.events[i].Token.Type == t {
			f.events[i].Token.End = f.point()
			f.events = append(f.events, token.ExitEvent(f.events[i].Token))
			return
		}
	}
	panic("label_test: exit without matching enter: " + string(t))
}

func (f *fakeEffects) Consume() {
	f.pos++
}

func (f *fakeEffects) Byte(offset int) (byte, bool) {
	i := f.pos + offset
	if i < 0 || i >= len(f.input) {
		return 0, false
	}
	return f.input[i], true
}

func (f *fakeEffects) Now() token.Point { return f.point() }

func (f *fakeEffects) Events() token.Log { return f.events }

func (f *fakeEffects) SetEvents(l token.Log) { f.events = l }

func (f *fakeEffects) Defined(raw []byte) bool {
	return f.defined[strings.ToLower(strings.Join(strings.Fields(string(raw)), " "))]
}

func (f *fakeEffects) Mark() Mark { return Mark{EventsLen: len(f.events), Pos: f.point()} }

func (f *fakeEffects) Reset(m Mark) {
	f.events = f.events[:m.EventsLen]
	f.pos = m.Pos.Offset
}

func (f *fakeEffects) InsideSpan(events token.Log) token.Log {
	return events
}

func (f *fakeEffects) SliceSerialize(start, end token.Point) []byte {
	return f.input[start.Offset:end.Offset]
}

func whitespace(eff Effects) {
	for {
		b, ok := eff.Byte(0)
		if !ok || (b != ' ' && b != '\t' && b != '\n' && b != '\r') {
			return
		}
		eff.Consume()
	}
}

func destination(eff Effects, depthCap int) bool {
	b, ok := eff.Byte(0)
	if !ok || b == ')' {
		return false
	}
	start := eff.Now()
	eff.Enter(token.ResourceDestination)
	eff.Enter(token.ResourceDestinationRaw)
	eff.Enter(token.ResourceDestinationString)
	depth := 0
	for {
		b, ok := eff.Byte(0)
		if !ok {
			break
		}
		if b == '(' {
			depth++
			if depth > depthCap {
				return false
			}
		}
		if b == ')' {
			if depth == 0 {
				break
			}
			depth--
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			break
		}
		eff.Consume()
	}
	if eff.Now() == start {
		return false
	}
	eff.Exit(token.ResourceDestinationString)
	eff.Exit(token.ResourceDestinationRaw)
	eff.Exit(token.ResourceDestination)
	return true
}

func title(eff Effects) bool {
	open, _ := eff.Byte(0)
	var close byte
	switch open {
	case '"':
		close = '"'
	case '\'':
		close = '\''
	case '(':
		close = ')'
	default:
		return false
	}
	eff.Enter(token.ResourceTitle)
	eff.Enter(token.ResourceTitleMarker)
	eff.Consume()
	eff.Exit(token.ResourceTitleMarker)
	eff.Enter(token.ResourceTitleString)
	for {
		b, ok := eff.Byte(0)
		if !ok {
			return false
		}
		if b == close {
			break
		}
		eff.Consume()
	}
	eff.Exit(token.ResourceTitleString)
	eff.Enter(token.ResourceTitleMarker)
	eff.Consume()
	eff.Exit(token.ResourceTitleMarker)
	eff.Exit(token.ResourceTitle)
	return true
}

func label(eff Effects) bool {
	if b, ok := eff.Byte(0); !ok || b != '[' {
		return false
	}
	eff.Enter(token.Reference)
	eff.Enter(token.ReferenceMarker)
	eff.Consume()
	eff.Exit(token.ReferenceMarker)
	eff.Enter(token.ReferenceString)
	for {
		b, ok := eff.Byte(0)
		if !ok {
			return false
		}
		if b == ']' {
			break
		}
		eff.Consume()
	}
	eff.Exit(token.ReferenceString)
	eff.Enter(token.ReferenceMarker)
	eff.Consume()
	eff.Exit(token.ReferenceMarker)
	eff.Exit(token.Reference)
	return true
}

func testConstruct() Construct {
	return Construct{
		Whitespace:  whitespace,
		Destination: destination,
		Title:       title,
		Label:       label,
	}
}

func countByType(events token.Log, t token.Type, kind token.EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind && ev.Token.Type == t {
			n++
		}
	}
	return n
}

// Scenario 1: `[foo](/url)` with no definitions.
func TestResourceLink(t *testing.T) {
	eff := newFakeEffects("[foo](/url)")
	eff.openLabelLink()
	eff.text("foo")

	c := testConstruct()
	if !c.Tokenize(eff) {
		t.Fatalf("expected label-end to succeed")
	}
	c.Resolve(eff)
	c.ResolveAll(eff)

	events := eff.Events()
	if n := countByType(events, token.Link, token.Enter); n != 1 {
		t.Fatalf("expected exactly one link, got %d", n)
	}
	if n := countByType(events, token.Resource, token.Enter); n != 1 {
		t.Fatalf("expected exactly one resource, got %d", n)
	}
	assertNoDanglingOpeners(t, events)
	assertWellFormed(t, eff.input, events)
}

// Scenario 2: `[foo][bar]` with bar defined.
func TestFullReferenceLink(t *testing.T) {
	eff := newFakeEffects("[foo][bar]", "bar")
	eff.openLabelLink()
	eff.text("foo")

	c := testConstruct()
	if !c.Tokenize(eff) {
		t.Fatalf("expected label-end to succeed")
	}
	c.Resolve(eff)
	c.ResolveAll(eff)

	events := eff.Events()
	if n := countByType(events, token.Link, token.Enter); n != 1 {
		t.Fatalf("expected exactly one link, got %d", n)
	}
	if n := countByType(events, token.Reference, token.Enter); n != 1 {
		t.Fatalf("expected exactly one reference, got %d", n)
	}
	assertNoDanglingOpeners(t, events)
	assertWellFormed(t, eff.input, events)
}

// Scenario 3: `[foo][]` with foo defined.
func TestCollapsedReferenceLink(t *testing.T) {
	eff := newFakeEffects("[foo][]", "foo")
	eff.openLabelLink()
	eff.text("foo")

	c := testConstruct()
	if !c.Tokenize(eff) {
		t.Fatalf("expected label-end to succeed")
	}
	c.Resolve(eff)
	c.ResolveAll(eff)

	events := eff.Events()
	if n := countByType(events, token.Link, token.Enter); n != 1 {
		t.Fatalf("expected exactly one link, got %d", n)
	}
	assertNoDanglingOpeners(t, events)
	assertWellFormed(t, eff.input, events)
}

// Scenario 4: `[foo]` with foo defined (shortcut).
func TestShortcutReferenceLink(t *testing.T) {
	eff := newFakeEffects("[foo]", "foo")
	eff.openLabelLink()
	eff.text("foo")

	c := testConstruct()
	if !c.Tokenize(eff) {
		t.Fatalf("expected label-end to succeed")
	}
	c.Resolve(eff)
	c.ResolveAll(eff)

	events := eff.Events()
	if n := countByType(events, token.Link, token.Enter); n != 1 {
		t.Fatalf("expected exactly one link, got %d", n)
	}
	assertWellFormed(t, eff.input, events)
}

// Scenario 5: `[foo]` with nothing defined degrades to literal text.
func TestUndefinedShortcutFails(t *testing.T) {
	eff := newFakeEffects("[foo]")
	eff.openLabelLink()
	eff.text("foo")

	c := testConstruct()
	if c.Tokenize(eff) {
		t.Fatalf("expected label-end to fail for an undefined shortcut")
	}
	events := eff.Events()
	if events[0].Token.State != token.Balanced {
		t.Fatalf("expected opener to be marked balanced, got %v", events[0].Token.State)
	}
	c.ResolveAll(eff)
	assertNoDanglingOpeners(t, eff.Events())
}

// Scenario 7: `![img](/u)` — image opener occupies 2 extra marker events.
func TestResourceImage(t *testing.T) {
	eff := newFakeEffects("![img](/u)")
	eff.openLabelImage()
	eff.text("img")

	c := testConstruct()
	if !c.Tokenize(eff) {
		t.Fatalf("expected label-end to succeed")
	}
	c.Resolve(eff)
	c.ResolveAll(eff)

	events := eff.Events()
	if n := countByType(events, token.Image, token.Enter); n != 1 {
		t.Fatalf("expected exactly one image, got %d", n)
	}
	assertNoDanglingOpeners(t, events)
	assertWellFormed(t, eff.input, events)
}

// `[a [b](c) d](e)` — the bracket whose `]` is reached first (here,
// the inner "[b](c)") wins; resolving it deactivates the still-pending
// outer opener, so links never nest.
func TestNestedLinkSuppression(t *testing.T) {
	eff := newFakeEffects("[a [b](c) d](e)")
	c := testConstruct()

	eff.openLabelLink() // "[a "
	eff.text("a ")
	eff.openLabelLink() // "[b"
	eff.text("b")

	if !c.Tokenize(eff) {
		t.Fatalf("expected inner label-end to succeed")
	}
	c.Resolve(eff)

	eff.text(" d")

	if c.Tokenize(eff) {
		t.Fatalf("expected outer label-end to fail: its opener must be inactive")
	}

	c.ResolveAll(eff)
	events := eff.Events()

	if n := countByType(events, token.Link, token.Enter); n != 1 {
		t.Fatalf("expected exactly one link in output, got %d", n)
	}
	assertNoDanglingOpeners(t, events)

	depth := 0
	for _, ev := range events {
		if ev.Kind == token.Enter && ev.Token.Type == token.Link {
			depth++
			if depth > 1 {
				t.Fatalf("link nested inside link")
			}
		}
		if ev.Kind == token.Exit && ev.Token.Type == token.Link {
			depth--
		}
	}
}

func assertNoDanglingOpeners(t *testing.T, events token.Log) {
	t.Helper()
	for _, ev := range events {
		switch ev.Token.Type {
		case token.LabelImage, token.LabelLink, token.LabelEnd:
			t.Fatalf("dangling opener/closer survived resolveAll: %v", ev.Token.Type)
		}
	}
}

// assertWellFormed checks that every token's start/end offsets stay
// ordered and within the input, a cheap proxy for "the splice math
// didn't corrupt positions."
func assertWellFormed(t *testing.T, input []byte, events token.Log) {
	t.Helper()
	for _, ev := range events {
		if ev.Token.Start.Offset > ev.Token.End.Offset {
			t.Fatalf("token %v has start %d after end %d", ev.Token.Type, ev.Token.Start.Offset, ev.Token.End.Offset)
		}
		if ev.Token.End.Offset > len(input) {
			t.Fatalf("token %v end %d beyond input length %d", ev.Token.Type, ev.Token.End.Offset, len(input))
		}
	}
}
