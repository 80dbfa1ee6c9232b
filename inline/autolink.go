// autolink recognizes CommonMark's two bracketed autolink forms,
// `<scheme:...>` and `<user@host>`; bare (non-bracketed) URL autolinks
// are a GFM extension and out of scope here.
package inline

import (
	"regexp"

	"github.com/akavel/cmtoken/token"
)

var (
	reAutolinkURI   = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9+.-]{1,31}:[^<>\x00-\x20]*)>`)
	reAutolinkEmail = regexp.MustCompile(`^<([a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*)>`)
)

func autolink(s *Scanner) bool {
	rest := s.input[s.pos:]

	if m := reAutolinkURI.FindSubmatchIndex(rest); m != nil {
		emitAutolink(s, m[1]-m[0], m[3]-m[2], token.AutolinkProtocol)
		return true
	}
	if m := reAutolinkEmail.FindSubmatchIndex(rest); m != nil {
		emitAutolink(s, m[1]-m[0], m[3]-m[2], token.AutolinkEmail)
		return true
	}
	return false
}

// emitAutolink consumes totalLen bytes starting at the current `<`,
// wrapping the inner contentLen bytes (the URI or email address) as
// contentType.
func emitAutolink(s *Scanner, totalLen, contentLen int, contentType token.Type) {
	s.Enter(token.Autolink)
	s.Enter(token.AutolinkMarker)
	s.Consume() // '<'
	s.Exit(token.AutolinkMarker)

	s.Enter(contentType)
	for end := s.pos + contentLen; s.pos < end; {
		s.Consume() // one rune, which may span several bytes
	}
	s.Exit(contentType)

	s.Enter(token.AutolinkMarker)
	s.Consume() // '>'
	s.Exit(token.AutolinkMarker)
	s.Exit(token.Autolink)
}
