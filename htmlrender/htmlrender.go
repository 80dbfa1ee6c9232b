// Package htmlrender is the HTML back-end that consumes a resolved
// token stream and writes out the corresponding markup. It walks a
// flat token.Log by index, switching on token type much as a tag-tree
// walker would switch on node kind, using html/template values for the
// link/image attribute escaping.
package htmlrender

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/akavel/cmtoken/definition"
	"github.com/akavel/cmtoken/token"
	"github.com/yuin/goldmark/util"
)

var (
	tmplLink = template.Must(template.New("cmtoken.<a href>").Parse(
		`<a href="{{.URL}}"` +
			`{{if not (eq .Title "")}} title="{{.Title}}"{{end}}` +
			`>`))
	tmplImage = template.Must(template.New("cmtoken.<img>").Parse(
		`<img src="{{.URL}}"` +
			`{{if not (eq .Alt "")}} alt="{{.Alt}}"{{end}}` +
			`{{if not (eq .Title "")}} title="{{.Title}}"{{end}}` +
			` />`))
)

// Render walks log -- the output of inline.Document -- and writes
// HTML to w. src must be the cleaned document bytes inline.Document
// returned alongside log; defs resolves reference-style links and
// images.
func Render(w io.Writer, log token.Log, src []byte, defs *definition.Set) error {
	r := &renderer{w: w, log: log, src: src, defs: defs}
	_, err := r.run(0, len(log))
	return err
}

type renderer struct {
	w    io.Writer
	log  token.Log
	src  []byte
	defs *definition.Set
	err  error
}

func (r *renderer) printf(format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *renderer) write(b []byte) {
	if r.err != nil {
		return
	}
	_, r.err = r.w.Write(b)
}

func (r *renderer) escape(b []byte) {
	r.write([]byte(template.HTMLEscapeString(string(b))))
}

func (r *renderer) slice(a, b token.Point) []byte {
	return r.src[a.Offset:b.Offset]
}

// matchExit returns the index of the Exit event balancing the Enter
// at i.
func (r *renderer) matchExit(i int) int {
	t := r.log[i].Token.Type
	depth := 0
	for j := i; j < len(r.log); j++ {
		if r.log[j].Kind == token.Enter && r.log[j].Token.Type == t {
			depth++
		}
		if r.log[j].Kind == token.Exit && r.log[j].Token.Type == t {
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	panic("htmlrender: unbalanced event log for type " + string(t))
}

// run renders log[a:b], a sequence of complete top-level Enter..Exit
// groups, and returns b.
func (r *renderer) run(a, b int) (int, error) {
	i := a
	for i < b && r.err == nil {
		j := r.matchExit(i)
		r.node(i, j)
		i = j + 1
	}
	return i, r.err
}

// node renders the single group log[i:j+1], where i is its Enter and
// j its matching Exit.
func (r *renderer) node(i, j int) {
	tok := r.log[i].Token
	switch tok.Type {
	case token.Document:
		r.run(i+1, j)

	case token.Paragraph:
		r.printf("<p>")
		r.run(i+1, j)
		r.printf("</p>\n")

	case token.AtxHeading:
		level := headingLevel(r.slice(tok.Start, tok.End))
		r.printf("<h%d>", level)
		r.run(i+1, j)
		r.printf("</h%d>\n", level)

	case token.ThematicBreak:
		r.printf("<hr />\n")

	case token.BlockQuote:
		r.printf("<blockquote>\n")
		r.run(i+1, j)
		r.printf("</blockquote>\n")

	case token.CodeBlock:
		r.printf("<pre><code>")
		r.write([]byte(stripIndent(r.slice(tok.Start, tok.End))))
		r.printf("</code></pre>\n")

	case token.Data:
		r.escape(r.slice(tok.Start, tok.End))

	case token.CharacterEscape:
		// Skip the escapeMarker child; render only the escaped data.
		r.run(i+1, j)

	case token.EscapeMarker:
		// handled by the CharacterEscape case's skip of itself; nothing
		// to do if ever reached directly.

	case token.Emphasis:
		level := emphasisLevel(r.log, i, j)
		r.printf("%s", emphasisOpen[level])
		r.renderEmphasisText(i, j)
		r.printf("%s", emphasisClose[level])

	case token.CodeText:
		r.printf("<code>")
		r.renderCodeTextData(i, j)
		r.printf("</code>")

	case token.Autolink:
		r.renderAutolink(i, j)

	case token.Link:
		r.renderLinkOrImage(i, j, false)

	case token.Image:
		r.renderLinkOrImage(i, j, true)

	default:
		r.run(i+1, j)
	}
}

var emphasisOpen = map[int]string{1: "<em>", 2: "<strong>", 3: "<strong><em>"}
var emphasisClose = map[int]string{1: "</em>", 2: "</strong>", 3: "</em></strong>"}

// emphasisLevel derives the nesting level from the byte length of the
// opening emphasisSequence marker, since token.Token carries no level
// field of its own.
func emphasisLevel(log token.Log, i, j int) int {
	// i+1 is the Enter emphasisSequence marker.
	mark := log[i+1].Token
	n := mark.End.Offset - mark.Start.Offset
	if n > 3 {
		n = 3
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (r *renderer) renderEmphasisText(i, j int) {
	for k := i + 1; k < j; k++ {
		if r.log[k].Kind == token.Enter && r.log[k].Token.Type == token.EmphasisText {
			end := r.matchExit(k)
			r.run(k+1, end)
			return
		}
	}
}

func (r *renderer) renderCodeTextData(i, j int) {
	for k := i + 1; k < j; k++ {
		if r.log[k].Kind == token.Enter && r.log[k].Token.Type == token.CodeTextData {
			end := r.matchExit(k)
			r.escape(r.slice(r.log[k].Token.Start, r.log[end].Token.End))
			return
		}
	}
}

func (r *renderer) renderAutolink(i, j int) {
	for k := i + 1; k < j; k++ {
		ev := r.log[k]
		if ev.Kind != token.Enter {
			continue
		}
		switch ev.Token.Type {
		case token.AutolinkProtocol:
			end := r.matchExit(k)
			text := r.slice(ev.Token.Start, r.log[end].Token.End)
			r.printf(`<a href="%s">`, template.HTMLEscapeString(string(text)))
			r.escape(text)
			r.printf(`</a>`)
			return
		case token.AutolinkEmail:
			end := r.matchExit(k)
			text := r.slice(ev.Token.Start, r.log[end].Token.End)
			r.printf(`<a href="mailto:%s">`, template.HTMLEscapeString(string(text)))
			r.escape(text)
			r.printf(`</a>`)
			return
		}
	}
}

// renderLinkOrImage finds the group's label/resource/reference
// children and writes the corresponding <a>/<img>, falling back to
// the group's whole literal source text when neither a resource nor a
// known reference definition resolves the destination -- ported from
// mdhtml.go's "found" branch.
func (r *renderer) renderLinkOrImage(i, j int, isImage bool) {
	tok := r.log[i].Token
	var dest, title string
	var textStart, textEnd int
	found := false

	for k := i + 1; k < j; k++ {
		ev := r.log[k]
		if ev.Kind != token.Enter {
			continue
		}
		switch ev.Token.Type {
		case token.LabelText:
			textStart, textEnd = k+1, r.matchExit(k)
		case token.Resource:
			end := r.matchExit(k)
			dest, title = r.resourceDestTitle(k, end)
			found = true
			k = end
		case token.Reference:
			end := r.matchExit(k)
			id := r.referenceString(k, end)
			if len(id) == 0 {
				// Collapsed reference `[]`: the identifier is the
				// label text itself.
				id = r.slice(r.log[textStart].Token.Start, r.log[textEnd-1].Token.End)
			}
			if d, ok := r.defs.Lookup(id); ok {
				dest, title = string(d.Destination), string(d.Title)
				found = true
			}
			k = end
		}
	}

	if !found {
		// Shortcut/collapsed reference: the label text itself is the
		// identifier, for both links and images alike.
		id := r.slice(r.log[textStart].Token.Start, r.log[textEnd-1].Token.End)
		if d, ok := r.defs.Lookup(id); ok {
			dest, title = string(d.Destination), string(d.Title)
			found = true
		}
	}

	if !found {
		// Resolution succeeded at tokenize time but no definition is
		// registered now (shouldn't happen in well-formed input);
		// fall back to the group's literal source text.
		r.escape(r.slice(tok.Start, tok.End))
		return
	}

	if isImage {
		var alt strings.Builder
		alt.Write(util.TrimRightSpace(r.slice(r.log[textStart].Token.Start, r.log[textEnd-1].Token.End)))
		r.err = tmplImage.Execute(r.w, map[string]interface{}{
			"Alt":   alt.String(),
			"Title": title,
			"URL":   template.URL(dest),
		})
		return
	}

	r.err = tmplLink.Execute(r.w, map[string]interface{}{
		"Title": title,
		"URL":   template.URL(dest),
	})
	r.run(textStart, textEnd)
	r.printf(`</a>`)
}

func (r *renderer) resourceDestTitle(i, j int) (dest, title string) {
	for k := i + 1; k < j; k++ {
		ev := r.log[k]
		if ev.Kind != token.Enter {
			continue
		}
		switch ev.Token.Type {
		case token.ResourceDestinationString:
			end := r.matchExit(k)
			dest = string(deBackslashEscape(r.slice(ev.Token.Start, r.log[end].Token.End)))
		case token.ResourceTitleString:
			end := r.matchExit(k)
			title = string(deBackslashEscape(r.slice(ev.Token.Start, r.log[end].Token.End)))
		}
	}
	return dest, title
}

func (r *renderer) referenceString(i, j int) []byte {
	for k := i + 1; k < j; k++ {
		if r.log[k].Kind == token.Enter && r.log[k].Token.Type == token.ReferenceString {
			end := r.matchExit(k)
			return r.slice(r.log[k].Token.Start, r.log[end].Token.End)
		}
	}
	return nil
}

// headingLevel counts the leading '#' run, capped at 6, matching the
// AtxHeading token's own Start..End span (which still includes the
// marker).
func headingLevel(raw []byte) int {
	n := 0
	for n < len(raw) && raw[n] == '#' && n < 6 {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

// stripIndent removes up to 4 leading spaces from each line of a code
// block's raw text.
func stripIndent(raw []byte) string {
	lines := strings.SplitAfter(string(raw), "\n")
	var out strings.Builder
	for _, line := range lines {
		trimmed := line
		for i := 0; i < 4 && len(trimmed) > 0 && trimmed[0] == ' '; i++ {
			trimmed = trimmed[1:]
		}
		out.WriteString(template.HTMLEscapeString(trimmed))
	}
	return out.String()
}

// asciiPunct lists the characters a backslash may escape.
const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// deBackslashEscape removes the backslash from `\x` escape sequences
// inside a destination or title string, per CommonMark's escape rule.
func deBackslashEscape(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) && strings.IndexByte(asciiPunct, raw[i+1]) >= 0 {
			out = append(out, raw[i+1])
			i++
			continue
		}
		out = append(out, raw[i])
	}
	return out
}
