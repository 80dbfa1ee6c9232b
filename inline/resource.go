// Package-level resource sub-recognizers: the whitespace, destination,
// title and label factories label.Construct treats as black boxes.
// The destination factory supports both the bracketed `<dest>` and
// bare balanced-paren destination shapes, plus three title quote
// forms, as a character-by-character recognizer rather than a
// whole-remaining-input regex match, to fit label.Effects'
// one-byte-at-a-time seam.
package inline

import (
	"github.com/akavel/cmtoken/label"
	"github.com/akavel/cmtoken/token"
)

func whitespace(eff label.Effects) {
	for {
		b, ok := eff.Byte(0)
		if !ok || !isSpaceOrLineEnding(b) {
			return
		}
		eff.Consume()
	}
}

func isSpaceOrLineEnding(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// destination recognizes either a `<...>` pointy-bracketed literal
// destination or a bare, balanced-parenthesis sequence up to depthCap
// levels deep.
func destination(eff label.Effects, depthCap int) bool {
	b, ok := eff.Byte(0)
	if !ok {
		return false
	}
	if b == '<' {
		return angleDestination(eff)
	}
	return bareDestination(eff, depthCap)
}

func angleDestination(eff label.Effects) bool {
	eff.Enter(token.ResourceDestination)
	eff.Enter(token.ResourceDestinationLiteral)
	eff.Enter(token.ResourceDestinationLiteralMarker)
	eff.Consume() // '<'
	eff.Exit(token.ResourceDestinationLiteralMarker)

	eff.Enter(token.ResourceDestinationString)
	for {
		b, ok := eff.Byte(0)
		if !ok || b == '\n' {
			return false
		}
		if b == '>' {
			break
		}
		if b == '\\' {
			eff.Consume()
			if _, ok := eff.Byte(0); ok {
				eff.Consume()
			}
			continue
		}
		eff.Consume()
	}
	eff.Exit(token.ResourceDestinationString)

	eff.Enter(token.ResourceDestinationLiteralMarker)
	eff.Consume() // '>'
	eff.Exit(token.ResourceDestinationLiteralMarker)
	eff.Exit(token.ResourceDestinationLiteral)
	eff.Exit(token.ResourceDestination)
	return true
}

func bareDestination(eff label.Effects, depthCap int) bool {
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
		if isSpaceOrLineEnding(b) {
			break
		}
		if b == '\\' {
			eff.Consume()
			if _, ok := eff.Byte(0); ok {
				eff.Consume()
			}
			continue
		}
		if b < 0x20 {
			return false
		}
		if b == '(' {
			depth++
			if depth > depthCap {
				return false
			}
			eff.Consume()
			continue
		}
		if b == ')' {
			if depth == 0 {
				break
			}
			depth--
			eff.Consume()
			continue
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

// title recognizes any of the three title-quote forms: `"..."`,
// `'...'` or `(...)`.
func title(eff label.Effects) bool {
	open, ok := eff.Byte(0)
	if !ok {
		return false
	}
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
		if b == '\\' {
			eff.Consume()
			if _, ok := eff.Byte(0); ok {
				eff.Consume()
			}
			continue
		}
		// An unescaped '(' inside a paren-delimited title is not
		// allowed to nest.
		if close == ')' && b == '(' {
			return false
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

// label_ recognizes a full-reference `[label]` suffix.
// Named with a trailing underscore because `label` is this package's
// import name for the core construct's own package.
func label_(eff label.Effects) bool {
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
		if !ok || b == '[' {
			return false // an unescaped '[' is not allowed inside a label
		}
		if b == '\\' {
			eff.Consume()
			if _, ok := eff.Byte(0); ok {
				eff.Consume()
			}
			continue
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
