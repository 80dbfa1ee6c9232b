package label

import "github.com/akavel/cmtoken/token"

// attemptResource recognizes the `(dest "title")` suffix state
// machine. Entered with the current position on `(`.
func (c Construct) attemptResource(eff Effects) bool {
	mark := eff.Mark()

	eff.Enter(token.Resource)
	eff.Enter(token.ResourceMarker)
	eff.Consume() // '('
	eff.Exit(token.ResourceMarker)

	c.Whitespace(eff)

	if b, ok := eff.Byte(0); !ok || b != ')' {
		if !c.Destination(eff, DestinationDepthCap) {
			eff.Reset(mark)
			return false
		}

		if b, ok := eff.Byte(0); ok && isLineEndingOrSpace(b) {
			c.Whitespace(eff)

			if b, ok := eff.Byte(0); ok && isTitleOpener(b) {
				if !c.Title(eff) {
					eff.Reset(mark)
					return false
				}
				c.Whitespace(eff)
			}
		}
	}

	if b, ok := eff.Byte(0); !ok || b != ')' {
		eff.Reset(mark)
		return false
	}

	eff.Enter(token.ResourceMarker)
	eff.Consume() // ')'
	eff.Exit(token.ResourceMarker)
	eff.Exit(token.Resource)
	return true
}

func isLineEndingOrSpace(b byte) bool {
	return b == '\n' || b == '\r' || b == ' ' || b == '\t'
}

func isTitleOpener(b byte) bool {
	return b == '"' || b == '\'' || b == '('
}
