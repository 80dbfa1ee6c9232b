// Package blocksplit implements the line-oriented block-level pass a
// complete document pipeline needs in order to ever hand the label
// package's core something to run on: a paragraph's, or a heading's,
// raw text.
//
// It runs a single pass over an already-preprocessed,
// already-definition-stripped line slice, emitting directly into a
// token.Log.
package blocksplit

import (
	"bytes"
	"regexp"

	"github.com/akavel/cmtoken/token"
)

// Line is one line of a document after preprocessing and the
// blockdef pre-pass. Bytes is nil for a line fully consumed by a
// recognized reference definition -- blocksplit skips those without
// emitting anything for them, same as it skips blank lines.
type Line struct {
	Bytes []byte
	Start token.Point
}

// Lines splits preprocessed document bytes into Line records,
// tracking Point positions with token.Point.Advance so downstream
// inline tokenization can report accurate positions.
func Lines(doc []byte) []Line {
	var out []Line
	pos := token.Point{Line: 1, Column: 1}
	for len(doc) > 0 {
		i := bytes.IndexByte(doc, '\n')
		var raw []byte
		if i < 0 {
			raw = doc
			doc = nil
		} else {
			raw = doc[:i+1]
			doc = doc[i+1:]
		}
		out = append(out, Line{Bytes: raw, Start: pos})
		pos = pos.Advance(raw)
	}
	return out
}

var (
	reThematicBreak = regexp.MustCompile(`^ {0,3}((\* *\* *\*[ *]*)|(- *- *-[ -]*)|(_ *_ *_[ _]*))$`)
	reAtxHeading    = regexp.MustCompile(`^ {0,3}(#{1,6})(\s+(.*?))?\s*$`)
)

// InlineResolver tokenizes one block's raw text (already joined
// across its contributing lines) into inline-level events --
// ordinarily inline.Tokenize wrapped with label.Construct.ResolveAll,
// injected here so this package never imports the inline package
// (blocksplit is lower in the dependency graph; inline.Document is
// the one that wires the two together).
type InlineResolver func(text []byte, start token.Point) token.Log

// Split walks lines and returns the document's block-level token.Log:
// atxHeading, thematicBreak, blockQuote and codeBlock groups, plus
// paragraph groups whose interior is produced by calling resolve on
// the paragraph's joined raw text.
func Split(lines []Line, resolve InlineResolver) token.Log {
	var out token.Log
	i := 0
	for i < len(lines) {
		line := lines[i]
		if line.Bytes == nil || isBlank(line.Bytes) {
			i++
			continue
		}

		switch {
		case isThematicBreak(line.Bytes):
			out = append(out, thematicBreak(line)...)
			i++

		case isAtxHeading(line.Bytes):
			out = append(out, atxHeading(line, resolve)...)
			i++

		case isQuoteStart(line.Bytes):
			end := quoteExtent(lines, i)
			out = append(out, blockQuote(lines[i:end], resolve)...)
			i = end

		case hasFourSpacePrefix(line.Bytes):
			end := codeExtent(lines, i)
			out = append(out, codeBlock(lines[i:end])...)
			i = end

		default:
			end := paragraphExtent(lines, i)
			out = append(out, paragraph(lines[i:end], resolve)...)
			i = end
		}
	}
	return out
}

func isBlank(b []byte) bool {
	return len(bytes.Trim(b, " \t\r\n")) == 0
}

func hasFourSpacePrefix(b []byte) bool {
	return bytes.HasPrefix(b, []byte("    "))
}

func isThematicBreak(b []byte) bool {
	return reThematicBreak.Match(bytes.TrimRight(b, "\r\n"))
}

func isAtxHeading(b []byte) bool {
	return reAtxHeading.Match(bytes.TrimRight(b, "\r\n"))
}

func isQuoteStart(b []byte) bool {
	trimmed := bytes.TrimLeft(b, " ")
	return len(trimmed) > 0 && trimmed[0] == '>'
}

func thematicBreak(line Line) token.Log {
	end := line.Start.Advance(line.Bytes)
	tok := token.Token{Type: token.ThematicBreak, Start: line.Start, End: end}
	return token.Log{token.EnterEvent(tok), token.ExitEvent(tok)}
}

func atxHeading(line Line, resolve InlineResolver) token.Log {
	text := bytes.TrimRight(line.Bytes, "\r\n")
	m := reAtxHeading.FindSubmatch(text)
	level := len(m[1])
	if level > 6 {
		level = 6
	}
	content := bytes.Trim(m[3], " \t")
	// The text content starts after the `#` run and following
	// whitespace; compute its offset within the line for accurate
	// inline positions.
	contentStart := line.Start
	if off := bytes.Index(text, m[3]); off >= 0 && len(m[3]) > 0 {
		contentStart = line.Start.Advance(text[:off])
	}
	end := line.Start.Advance(line.Bytes)

	tok := token.Token{Type: token.AtxHeading, Start: line.Start, End: end}
	out := token.Log{token.EnterEvent(tok)}
	if len(content) > 0 {
		out = append(out, resolve(content, contentStart)...)
	}
	out = append(out, token.ExitEvent(tok))
	return out
}

// quoteExtent returns the index one past the last line belonging to
// the block quote starting at lines[start]: a blank line ends the
// quote (and belongs to it) unless the next line also starts with
// `>`, and a thematic-break line without a `>` marker ends it too;
// any other line continues it.
func quoteExtent(lines []Line, start int) int {
	i := start
	for i < len(lines) {
		b := lines[i].Bytes
		if b == nil {
			break
		}
		if i > start && isBlank(b) {
			// A blank line continues the quote only if the next
			// line also starts with '>'.
			if i+1 >= len(lines) || lines[i+1].Bytes == nil ||
				!isQuoteStart(lines[i+1].Bytes) {
				i++
				break
			}
		} else if i > start && !isBlank(b) && !isQuoteStart(b) && !hasFourSpacePrefix(b) &&
			isThematicBreak(b) {
			break
		}
		i++
	}
	return i
}

func trimQuoteMarker(b []byte) ([]byte, int) {
	trimmed := bytes.TrimLeft(b, " ")
	consumed := len(b) - len(trimmed)
	if len(trimmed) > 0 && trimmed[0] == '>' {
		rest := trimmed[1:]
		consumed++
		if len(rest) > 0 && rest[0] == ' ' {
			rest = rest[1:]
			consumed++
		}
		return rest, consumed
	}
	return b, 0
}

func blockQuote(lines []Line, resolve InlineResolver) token.Log {
	inner := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Bytes == nil {
			continue
		}
		rest, consumed := trimQuoteMarker(l.Bytes)
		inner = append(inner, Line{Bytes: rest, Start: l.Start.Advance(l.Bytes[:consumed])})
	}

	start := lines[0].Start
	end := start
	if n := len(lines); n > 0 {
		end = lines[n-1].Start.Advance(lines[n-1].Bytes)
	}

	tok := token.Token{Type: token.BlockQuote, Start: start, End: end}
	out := token.Log{token.EnterEvent(tok)}
	out = append(out, Split(inner, resolve)...)
	out = append(out, token.ExitEvent(tok))
	return out
}

// codeExtent implements mdblock/code.go's pause-on-blank-line rule:
// a run of four-space-indented lines may contain blank lines, but a
// blank line followed by a non-indented line ends the block (the
// blank lines belong to whatever follows instead).
func codeExtent(lines []Line, start int) int {
	i := start
	lastIndented := start
	for i < len(lines) {
		b := lines[i].Bytes
		if b == nil {
			break
		}
		switch {
		case hasFourSpacePrefix(b):
			lastIndented = i
			i++
		case isBlank(b):
			i++
		default:
			return lastIndented + 1
		}
	}
	return lastIndented + 1
}

func codeBlock(lines []Line) token.Log {
	start := lines[0].Start
	end := lines[len(lines)-1].Start.Advance(lines[len(lines)-1].Bytes)
	tok := token.Token{Type: token.CodeBlock, Start: start, End: end}
	return token.Log{token.EnterEvent(tok), token.ExitEvent(tok)}
}

// paragraphExtent implements mdblock/para.go's continuation rule: a
// paragraph ends at a blank line, or at the start of a thematic break,
// an ATX heading, or a block quote marker -- whichever comes first.
func paragraphExtent(lines []Line, start int) int {
	i := start + 1
	for i < len(lines) {
		b := lines[i].Bytes
		if b == nil || isBlank(b) {
			break
		}
		if isThematicBreak(b) || isAtxHeading(b) || isQuoteStart(b) {
			break
		}
		i++
	}
	return i
}

func paragraph(lines []Line, resolve InlineResolver) token.Log {
	start := lines[0].Start
	end := lines[len(lines)-1].Start.Advance(lines[len(lines)-1].Bytes)

	text := make([]byte, 0, end.Offset-start.Offset)
	for _, l := range lines {
		text = append(text, l.Bytes...)
	}
	text = bytes.TrimRight(text, "\r\n")

	tok := token.Token{Type: token.Paragraph, Start: start, End: end}
	out := token.Log{token.EnterEvent(tok)}
	out = append(out, resolve(text, start)...)
	out = append(out, token.ExitEvent(tok))
	return out
}
