package inline

import "github.com/akavel/cmtoken/token"

// openBracket emits a labelLink opener directly into the event log
// rather than a side-table; label.Construct's backward scan
// (token.Log.LastUnbalancedOpener) plays the role an explicit openers
// stack would otherwise play.
func openBracket(s *Scanner) {
	s.Enter(token.LabelLink)
	s.Enter(token.LabelMarker)
	s.Consume() // '['
	s.Exit(token.LabelMarker)
	// LabelLink's true extent is only known later: either
	// label.ResolveTo (on match) splices clean over this whole range,
	// or label.ResolveAll (on abandonment) retypes this opener to a
	// data token and must explicitly skip past this placeholder Exit
	// event along with the marker events above -- it does not ignore
	// it, and getting that skip count wrong leaves this Exit dangling
	// in the output. Emit it now so the event log stays well-formed
	// for any caller that walks it before resolution.
	s.Exit(token.LabelLink)
}

// openImage emits a labelImage opener, ported from
// span/detector.go's ImageTags.Detect `![` recognition.
func openImage(s *Scanner) {
	s.Enter(token.LabelImage)
	s.Enter(token.LabelMarker)
	s.Consume() // '!'
	s.Exit(token.LabelMarker)
	s.Enter(token.LabelMarker)
	s.Consume() // '['
	s.Exit(token.LabelMarker)
	s.Exit(token.LabelImage)
}
