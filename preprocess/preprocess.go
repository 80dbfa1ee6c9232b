// Package preprocess cleans raw document bytes before block splitting
// begins: strips a leading byte-order mark, normalizes CRLF and lone CR to LF,
// expands tabs to the next 4-column stop, and falls back to
// byte-as-ISO-8859-1 decoding for invalid UTF-8. Each byte is fed
// through a small state machine one at a time, and every run of
// output bytes is tagged with the rule that produced it (Chunk), so a
// caller could in principle tell which bytes were touched and how;
// this package only ever uses that bookkeeping internally, exposing a
// single Clean entry point instead of requiring callers to drive the
// io.Writer themselves.
package preprocess

import (
	"bytes"
	"unicode/utf8"

	"github.com/akavel/cmtoken/token"
)

// ChunkType records which rule produced a Chunk's bytes.
type ChunkType int

const (
	ChunkIgnoredBOM ChunkType = iota
	ChunkUnchangedRunes
	ChunkNormalizedCRLF
	ChunkExpandedTab
)

// Chunk is one run of output bytes, tagged with the rule that produced
// it.
type Chunk struct {
	Bytes []byte
	Type  ChunkType
}

// Preprocessor accumulates Chunks as bytes are written to it one at a
// time, tracking its current position with a token.Point so tab-stop
// math uses the same rune-aware column counting as the rest of this
// module instead of a bare byte counter.
type Preprocessor struct {
	Chunks  []Chunk
	pending []byte
	state   int
	pos     token.Point
}

const (
	stateMaybeBOM = iota
	stateNormal
	stateCR
)

// Clean runs doc through a fresh Preprocessor and returns the
// concatenated output bytes.
func Clean(doc []byte) []byte {
	p := &Preprocessor{}
	p.Write(doc)
	// Flush what the state machine still holds at end of input: a
	// partial BOM prefix or an incomplete multi-byte sequence (both
	// decoded as ISO-8859-1), and a trailing lone CR.
	if p.state == stateMaybeBOM {
		p.state = stateNormal
	}
	if len(p.pending) > 0 {
		buf := p.pending
		p.pending = nil
		p.Write(iso2utf(buf...))
	}
	if p.state == stateCR {
		p.otherChunk(ChunkNormalizedCRLF, '\n')
	}
	return p.Bytes()
}

// Bytes concatenates every chunk's bytes into the cleaned output.
func (p *Preprocessor) Bytes() []byte {
	var out []byte
	for _, c := range p.Chunks {
		out = append(out, c.Bytes...)
	}
	return out
}

func (p *Preprocessor) Write(buf []byte) (int, error) {
	for _, b := range buf {
		p.writeByte(b)
	}
	return len(buf), nil
}

func (p *Preprocessor) writeByte(b byte) {
	const (
		cr = '\r'
		lf = '\n'
	)

	if p.state == stateMaybeBOM {
		bom := []byte{0xEF, 0xBB, 0xBF}
		p.pending = append(p.pending, b)
		switch {
		case !bytes.HasPrefix(bom, p.pending):
			p.state = stateNormal
			buf := p.pending
			p.pending = nil
			p.Write(buf)
			return
		case len(p.pending) == len(bom):
			p.otherChunk(ChunkIgnoredBOM) // the BOM contributes no output bytes
			return
		default:
			return
		}
	}

	if p.state == stateCR {
		if b == lf {
			p.otherChunk(ChunkNormalizedCRLF, lf)
			return
		}
		p.otherChunk(ChunkNormalizedCRLF, lf) // a lone CR is a line ending too
	}

	if b >= utf8.RuneSelf {
		p.pending = append(p.pending, b)
		if !utf8.FullRune(p.pending) {
			return
		}
		buf := p.pending
		p.pending = nil
		r, _ := utf8.DecodeRune(buf)
		if r == utf8.RuneError {
			p.Write(iso2utf(buf...))
		} else {
			p.normalChunk(buf...)
		}
		return
	}
	if len(p.pending) > 0 {
		buf := p.pending
		p.pending = nil
		p.Write(iso2utf(buf...))
	}

	if b == cr {
		p.state = stateCR
		return
	}

	if b == '\t' {
		spaces := 4 - (p.pos.Column % 4)
		bufSpaces := []byte("    ")
		p.otherChunk(ChunkExpandedTab, bufSpaces[:spaces]...)
		return
	}

	p.normalChunk(b)
}

func (p *Preprocessor) normalChunk(b ...byte) {
	p.calcColumn(b)
	n := len(p.Chunks)
	if n == 0 || p.Chunks[n-1].Type != ChunkUnchangedRunes {
		p.Chunks = append(p.Chunks, Chunk{Type: ChunkUnchangedRunes})
		n++
	}
	p.Chunks[n-1].Bytes = append(p.Chunks[n-1].Bytes, b...)
}

func (p *Preprocessor) otherChunk(typ ChunkType, b ...byte) {
	p.calcColumn(b)
	p.Chunks = append(p.Chunks, Chunk{Bytes: b, Type: typ})
	p.pending = nil
	p.state = stateNormal
}

func (p *Preprocessor) calcColumn(added []byte) {
	p.pos = p.pos.Advance(added)
}

func iso2utf(buf ...byte) []byte {
	out := make([]byte, 0, 2*len(buf))
	for _, b := range buf {
		r := rune(b)
		n := utf8.RuneLen(r)
		pos := len(out)
		out = out[:pos+n]
		utf8.EncodeRune(out[pos:], r)
	}
	return out
}
