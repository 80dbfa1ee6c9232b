package inline

import "github.com/akavel/cmtoken/token"

// codeSpan recognizes a backtick-delimited code span, ported from
// codespan.go's CodeSpanDetector / span/detector.go's CodeTags: scan
// the opening run of backticks, then search for a closing run of the
// same length, treating any run of a different length as code
// content rather than a delimiter.
func codeSpan(s *Scanner) bool {
	openLen := runLength(s, '`')
	closeAt, closeLen := findClosingBackticks(s, openLen)
	if closeAt < 0 {
		return false
	}

	s.Enter(token.CodeText)
	s.Enter(token.CodeTextSequence)
	for i := 0; i < openLen; i++ {
		s.Consume()
	}
	s.Exit(token.CodeTextSequence)

	s.Enter(token.CodeTextData)
	for s.pos < closeAt {
		s.Consume()
	}
	s.Exit(token.CodeTextData)

	s.Enter(token.CodeTextSequence)
	for i := 0; i < closeLen; i++ {
		s.Consume()
	}
	s.Exit(token.CodeTextSequence)
	s.Exit(token.CodeText)
	return true
}

func runLength(s *Scanner, b byte) int {
	n := 0
	for {
		c, ok := s.Byte(n)
		if !ok || c != b {
			return n
		}
		n++
	}
}

// findClosingBackticks returns the byte index (within s.input) of a
// run of exactly openLen backticks after the opening run, and its
// length (always openLen), or (-1, 0) if none exists before input end.
func findClosingBackticks(s *Scanner, openLen int) (at int, length int) {
	i := s.pos + openLen
	for i < len(s.input) {
		if s.input[i] != '`' {
			i++
			continue
		}
		start := i
		for i < len(s.input) && s.input[i] == '`' {
			i++
		}
		if i-start == openLen {
			return start, openLen
		}
	}
	return -1, 0
}
