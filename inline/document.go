// Document ties together the surrounding collaborator packages --
// preprocess, blockdef, blocksplit -- with this package's own
// Tokenize, into the single entry point a caller (the cmtoken CLI)
// actually wants: raw document bytes in, a resolved token.Log out.
package inline

import (
	"bytes"

	"github.com/akavel/cmtoken/blockdef"
	"github.com/akavel/cmtoken/blocksplit"
	"github.com/akavel/cmtoken/definition"
	"github.com/akavel/cmtoken/preprocess"
	"github.com/akavel/cmtoken/token"
)

// Document tokenizes a whole document: preprocess.Clean normalizes the
// bytes, blockdef.Scan harvests reference definitions and blanks out
// the lines they occupied, blocksplit.Split walks the remaining lines
// into block-level groups, and each paragraph/heading's text is handed
// to Tokenize via the InlineResolver seam. It returns the resolved log
// alongside the cleaned bytes (every token.Point.Offset in the log
// indexes into these, not into raw) and the harvested definition set,
// both of which htmlrender needs to turn the log into HTML.
func Document(raw []byte) (token.Log, []byte, *definition.Set) {
	clean := preprocess.Clean(raw)

	rawLines := splitRawLines(clean)
	defs := definition.NewSet()
	scanned := blockdef.Scan(rawLines, defs)

	lines := reconcileLines(clean, scanned)

	resolve := func(text []byte, start token.Point) token.Log {
		return Tokenize(text, start, defs)
	}

	tok := token.Token{Type: token.Document, Start: token.Point{Line: 1, Column: 1}}
	body := blocksplit.Split(lines, resolve)
	if n := len(body); n > 0 {
		tok.End = body[n-1].Token.End
	}

	out := make(token.Log, 0, len(body)+2)
	out = append(out, token.EnterEvent(tok))
	out = append(out, body...)
	out = append(out, token.ExitEvent(tok))
	return out, clean, defs
}

// splitRawLines splits clean into lines (each keeping its trailing
// line ending, like bufio.Scanner's ScanLines without the trimming),
// the shape blockdef.Scan expects.
func splitRawLines(clean []byte) [][]byte {
	var out [][]byte
	for len(clean) > 0 {
		i := bytes.IndexByte(clean, '\n')
		if i < 0 {
			out = append(out, clean)
			break
		}
		out = append(out, clean[:i+1])
		clean = clean[i+1:]
	}
	return out
}

// reconcileLines re-derives blocksplit.Line positions from the
// original clean bytes, carrying over the nil holes blockdef.Scan
// punched out for consumed reference-definition lines.
func reconcileLines(clean []byte, scanned [][]byte) []blocksplit.Line {
	out := make([]blocksplit.Line, len(scanned))
	pos := token.Point{Line: 1, Column: 1}
	for i, raw := range splitRawLines(clean) {
		out[i] = blocksplit.Line{Bytes: scanned[i], Start: pos}
		pos = pos.Advance(raw)
	}
	return out
}
