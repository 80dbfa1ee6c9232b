// Package blockdef implements the reference-definition pre-pass: a
// scan over the document's raw lines, before inline tokenization
// begins, that recognizes `[id]: destination "title"` blocks (one or
// two lines) and harvests them into a definition.Set. Lines consumed
// by a recognized definition produce no visible output: they are
// replaced by nil in the line sequence handed to the block splitter.
package blockdef

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/akavel/cmtoken/definition"
)

var (
	reLabel       = regexp.MustCompile(`^ *\[(([^\\\[\]\!]|\\.|\![^\[])*((\!\[([^\\\[\]]|\\.)*\](\[([^\\\[\]]|\\.)*\])?)?([^\\\[\]]|\\.)*)*)\] *:(.*)$`)
	reDestination = regexp.MustCompile(`^ *([^ \<\>]+|\<[^\<\>]*\>)( .*)?$`)
	reTitleLine   = regexp.MustCompile(`^ +("(([^"\\]|\\.)*)"|'(([^'\\]|\\.)*)'|\(([^\\\(\)]|\\.)*\)) *$`)
	reTitleInline = regexp.MustCompile(`^\((([^\\\(\)]|\\.)*)\)`)
)

// Scan walks lines looking for reference definitions, registering
// each into set, and returns the lines with any definition lines
// replaced by nil (a hole the block splitter skips over). lines is not
// mutated in place; Scan returns a fresh slice.
func Scan(lines [][]byte, set *definition.Set) [][]byte {
	out := make([][]byte, len(lines))
	copy(out, lines)

	for i := 0; i < len(out); i++ {
		line := out[i]
		if line == nil || hasFourSpacePrefix(line) {
			continue
		}

		var next []byte
		if i+1 < len(out) {
			next = out[i+1]
		}

		consumed, ok := recognize(line, next, set)
		if !ok {
			continue
		}

		out[i] = nil
		if consumed == 2 {
			out[i+1] = nil
			i++
		}
	}

	return out
}

// recognize attempts to parse line (plus, if needed, next) as a
// reference definition. On success it registers the definition and
// reports how many lines (1 or 2) it consumed.
func recognize(line, next []byte, set *definition.Set) (consumed int, ok bool) {
	m := reLabel.FindSubmatch(bytes.TrimRight(line, "\n"))
	if len(m) == 0 {
		return 0, false
	}
	rawIdentifier := m[1]

	tail := m[9]
	dm := reDestination.FindSubmatch(tail)
	if len(dm) == 0 {
		return 0, false
	}

	destination := stripAngleBracketsAndSpaces(dm[1])
	trailing := dm[2]

	var nlines int
	titleContainer := ""
	if bytes.IndexAny(trailing, " ") == -1 && next != nil &&
		reTitleLine.Match(bytes.TrimRight(next, "\n")) {
		nlines = 2
		titleContainer = string(bytes.TrimRight(next, "\n"))
	} else {
		nlines = 1
		titleContainer = string(trailing)
	}
	titleContainer = strings.TrimLeft(titleContainer, " ")

	var title string
	if tm := reTitleInline.FindStringSubmatch(titleContainer); len(tm) != 0 {
		title = deEscape(tm[1])
	} else if s := quotedStringPrefix(titleContainer); s != "" {
		title = deEscape(s[1 : len(s)-1])
	}

	set.Add(rawIdentifier, destination, []byte(title))
	return nlines, true
}

func stripAngleBracketsAndSpaces(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for _, c := range raw {
		if c != ' ' && c != '<' && c != '>' {
			out = append(out, c)
		}
	}
	return out
}

func quotedStringPrefix(s string) string {
	if len(s) < 2 {
		return ""
	}
	q := s[0]
	if q != '"' && q != '\'' {
		return ""
	}
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case q:
			return s[:i+1]
		}
	}
	return ""
}

// isPunctOrSymbol reports whether c is a Unicode punctuation or
// symbol character, per CommonMark's escape rule.
func isPunctOrSymbol(c rune) bool {
	return unicode.IsPunct(c) || unicode.IsSymbol(c)
}

// deEscape un-escapes `\x` sequences where x is punctuation or a
// symbol, leaving other backslashes alone -- CommonMark's escape rule.
func deEscape(s string) string {
	var buf strings.Builder
	esc := false
	for _, c := range s {
		if esc {
			if !isPunctOrSymbol(c) {
				buf.WriteByte('\\')
			}
			buf.WriteRune(c)
			esc = false
			continue
		}
		if c != '\\' {
			buf.WriteRune(c)
			continue
		}
		esc = true
	}
	if esc {
		buf.WriteByte('\\')
	}
	return buf.String()
}

func hasFourSpacePrefix(line []byte) bool {
	n := 0
	for _, b := range line {
		switch b {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n >= 4
		}
		if n >= 4 {
			return true
		}
	}
	return false
}
