package inline

import (
	"testing"

	"github.com/akavel/cmtoken/definition"
	"github.com/akavel/cmtoken/token"
)

func tokenize(t *testing.T, text string) token.Log {
	t.Helper()
	return Tokenize([]byte(text), token.Point{Line: 1, Column: 1}, definition.NewSet())
}

func countType(log token.Log, typ token.Type) int {
	n := 0
	for _, ev := range log {
		if ev.Kind == token.Enter && ev.Token.Type == typ {
			n++
		}
	}
	return n
}

func findFirst(log token.Log, typ token.Type) (token.Token, bool) {
	for _, ev := range log {
		if ev.Kind == token.Enter && ev.Token.Type == typ {
			return ev.Token, true
		}
	}
	return token.Token{}, false
}

func mustBalanced(t *testing.T, log token.Log) {
	t.Helper()
	depth := map[token.Type]int{}
	for _, ev := range log {
		if ev.Kind == token.Enter {
			depth[ev.Token.Type]++
		} else {
			depth[ev.Token.Type]--
			if depth[ev.Token.Type] < 0 {
				t.Fatalf("event log unbalanced for %s", ev.Token.Type)
			}
		}
	}
	for typ, d := range depth {
		if d != 0 {
			t.Fatalf("event log unbalanced for %s: depth %d", typ, d)
		}
	}
}

func TestTokenizePlainText(t *testing.T) {
	log := tokenize(t, "hello world")
	mustBalanced(t, log)
	if countType(log, token.Link) != 0 {
		t.Fatalf("unexpected link in plain text")
	}
}

func TestTokenizeResourceLink(t *testing.T) {
	log := tokenize(t, `[text](/dest "title")`)
	mustBalanced(t, log)
	if countType(log, token.Link) != 1 {
		t.Fatalf("want exactly one link, got log = %+v", log)
	}
	tok, ok := findFirst(log, token.ResourceDestinationString)
	if !ok {
		t.Fatalf("missing resource destination")
	}
	_ = tok
}

func TestTokenizeFailedLinkBecomesLiteralText(t *testing.T) {
	log := tokenize(t, `[not a link (no closing paren`)
	mustBalanced(t, log)
	if countType(log, token.Link) != 0 {
		t.Fatalf("expected no link, got log = %+v", log)
	}
}

func TestTokenizeShortcutReference(t *testing.T) {
	defs := definition.NewSet()
	defs.Add([]byte("foo"), []byte("/foo"), nil)
	log := Tokenize([]byte(`[foo]`), token.Point{Line: 1, Column: 1}, defs)
	mustBalanced(t, log)
	if countType(log, token.Link) != 1 {
		t.Fatalf("want shortcut reference to resolve to a link, got log = %+v", log)
	}
}

func TestTokenizeNestedLinkSuppressed(t *testing.T) {
	defs := definition.NewSet()
	defs.Add([]byte("foo"), []byte("/foo"), nil)
	defs.Add([]byte("bar"), []byte("/bar"), nil)
	log := Tokenize([]byte(`[[foo](/foo) and bar](/bar)`), token.Point{Line: 1, Column: 1}, defs)
	mustBalanced(t, log)
	if countType(log, token.Link) != 1 {
		t.Fatalf("nested link must be suppressed, got log = %+v", log)
	}
}

func TestTokenizeImage(t *testing.T) {
	log := tokenize(t, `![alt](/img.png)`)
	mustBalanced(t, log)
	if countType(log, token.Image) != 1 {
		t.Fatalf("want exactly one image, got log = %+v", log)
	}
}

func TestTokenizeEmphasis(t *testing.T) {
	log := tokenize(t, `a *b* c`)
	mustBalanced(t, log)
	if countType(log, token.Emphasis) != 1 {
		t.Fatalf("want exactly one emphasis group, got log = %+v", log)
	}
}

func TestTokenizeStrongEmphasis(t *testing.T) {
	log := tokenize(t, `a **b** c`)
	mustBalanced(t, log)
	tok, ok := findFirst(log, token.EmphasisSequence)
	if !ok {
		t.Fatalf("missing emphasisSequence")
	}
	if n := tok.End.Offset - tok.Start.Offset; n != 2 {
		t.Fatalf("want a 2-byte strong marker, got %d", n)
	}
}

func TestTokenizeEmphasisInsideLinkText(t *testing.T) {
	log := tokenize(t, `[a *b* c](/dest)`)
	mustBalanced(t, log)
	if countType(log, token.Link) != 1 {
		t.Fatalf("want link, got log = %+v", log)
	}
	if countType(log, token.Emphasis) != 1 {
		t.Fatalf("want emphasis resolved inside link text, got log = %+v", log)
	}
}

func TestTokenizeUnmatchedEmphasisStaysLiteral(t *testing.T) {
	log := tokenize(t, `a * b`)
	mustBalanced(t, log)
	if countType(log, token.Emphasis) != 0 {
		t.Fatalf("mid-word-boundary '*' with no closer must stay literal, got log = %+v", log)
	}
}

func TestTokenizeCodeSpan(t *testing.T) {
	log := tokenize(t, "a `code` b")
	mustBalanced(t, log)
	if countType(log, token.CodeText) != 1 {
		t.Fatalf("want exactly one code span, got log = %+v", log)
	}
}

func TestTokenizeCodeSpanLongerDelimiter(t *testing.T) {
	log := tokenize(t, "a `` code ` with backtick `` b")
	mustBalanced(t, log)
	if countType(log, token.CodeText) != 1 {
		t.Fatalf("want exactly one code span, got log = %+v", log)
	}
}

func TestTokenizeAutolinkURI(t *testing.T) {
	log := tokenize(t, "see <https://example.com/path>")
	mustBalanced(t, log)
	if countType(log, token.Autolink) != 1 {
		t.Fatalf("want exactly one autolink, got log = %+v", log)
	}
	if countType(log, token.AutolinkProtocol) != 1 {
		t.Fatalf("want autolinkProtocol content, got log = %+v", log)
	}
}

func TestTokenizeAutolinkEmail(t *testing.T) {
	log := tokenize(t, "mail <foo@example.com> now")
	mustBalanced(t, log)
	if countType(log, token.AutolinkEmail) != 1 {
		t.Fatalf("want exactly one email autolink, got log = %+v", log)
	}
}

func TestTokenizeEscapedBracketDoesNotOpen(t *testing.T) {
	log := tokenize(t, `\[not a link](/dest)`)
	mustBalanced(t, log)
	if countType(log, token.Link) != 0 {
		t.Fatalf("escaped '[' must not open a label, got log = %+v", log)
	}
	if countType(log, token.CharacterEscape) != 1 {
		t.Fatalf("want one characterEscape, got log = %+v", log)
	}
}

func TestTokenizeDepthCapRejectsResource(t *testing.T) {
	deep := ""
	for i := 0; i < 33; i++ {
		deep += "("
	}
	for i := 0; i < 33; i++ {
		deep += ")"
	}
	log := tokenize(t, `[text](`+deep+`)`)
	mustBalanced(t, log)
	if countType(log, token.Link) != 0 {
		t.Fatalf("33 levels of nested parens must exceed the depth cap, got log = %+v", log)
	}
}
