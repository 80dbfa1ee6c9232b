// Package token defines the event-log data model shared by the label,
// inline, blockdef and htmlrender packages: points, tokens, the
// enter/exit event log, and the small set of operations the label
// package's resolvers need over it (splicing, backward scanning).
package token

// Point is a position in the original input.
type Point struct {
	Offset int
	Line   int
	Column int
}

// Type identifies what a Token represents. The string values are
// stable, bit-exact names: downstream consumers (htmlrender, the
// cmtoken CLI) match on them directly.
type Type string

const (
	Document Type = "document"

	// Link/image closing construct (spec core).
	LabelImage  Type = "labelImage"
	LabelLink   Type = "labelLink"
	LabelEnd    Type = "labelEnd"
	LabelMarker Type = "labelMarker"
	Label       Type = "label"
	LabelText   Type = "labelText"
	Link        Type = "link"
	Image       Type = "image"
	Data        Type = "data"

	Resource                         Type = "resource"
	ResourceMarker                   Type = "resourceMarker"
	ResourceDestination              Type = "resourceDestination"
	ResourceDestinationLiteral       Type = "resourceDestinationLiteral"
	ResourceDestinationLiteralMarker Type = "resourceDestinationLiteralMarker"
	ResourceDestinationRaw           Type = "resourceDestinationRaw"
	ResourceDestinationString        Type = "resourceDestinationString"
	ResourceTitle                    Type = "resourceTitle"
	ResourceTitleMarker              Type = "resourceTitleMarker"
	ResourceTitleString              Type = "resourceTitleString"

	Reference       Type = "reference"
	ReferenceMarker Type = "referenceMarker"
	ReferenceString Type = "referenceString"

	// Ambient span constructs that run inside label text and
	// elsewhere in the inline stream.
	Text             Type = "text"
	CharacterEscape  Type = "characterEscape"
	EscapeMarker     Type = "escapeMarker"
	Emphasis         Type = "emphasis"
	EmphasisSequence Type = "emphasisSequence"
	EmphasisText     Type = "emphasisText"
	CodeText         Type = "codeText"
	CodeTextSequence Type = "codeTextSequence"
	CodeTextData     Type = "codeTextData"
	Autolink         Type = "autolink"
	AutolinkMarker   Type = "autolinkMarker"
	AutolinkProtocol Type = "autolinkProtocol"
	AutolinkEmail    Type = "autolinkEmail"

	// Block-level constructs, used by blockdef and htmlrender.
	Paragraph              Type = "paragraph"
	AtxHeading             Type = "atxHeading"
	AtxHeadingSequence     Type = "atxHeadingSequence"
	ThematicBreak          Type = "thematicBreak"
	BlockQuote             Type = "blockQuote"
	BlockQuoteMarker       Type = "blockQuoteMarker"
	CodeBlock              Type = "codeBlock"
	Definition             Type = "definition"
	DefinitionLabel        Type = "definitionLabel"
	DefinitionMarker       Type = "definitionMarker"
	DefinitionDestination  Type = "definitionDestination"
	DefinitionTitle        Type = "definitionTitle"
	LineEnding             Type = "lineEnding"
)

// OpenState replaces the two booleans `_inactive`/`_balanced` from the
// reference model with a single tag-union, so "both at once" is not a
// representable state.
type OpenState int

const (
	// Open is the default: still awaiting a closer, still a
	// candidate to become a link/image.
	Open OpenState = iota
	// Inactive means the opener (always a LabelLink) precedes a link
	// that resolved while it was still pending, so it would enclose
	// that link; it can never become a link itself (nested links are
	// forbidden) and is demoted to plain text.
	Inactive
	// Balanced means a closer was seen and paired with this opener,
	// but no suffix matched; the opener will never succeed again.
	Balanced
)

// Token is one node in the event log: every Enter event is later
// matched by an Exit event carrying the same Type (set when the
// token's true extent becomes known). Only opener tokens
// (LabelImage/LabelLink) ever carry a non-Open State.
type Token struct {
	Type  Type
	Start Point
	End   Point
	State OpenState
}

// EventKind distinguishes the start and the end of a token's span in
// the log.
type EventKind int

const (
	Enter EventKind = iota
	Exit
)

// Event is one entry of the append-only log that the label package's
// resolvers read and rewrite.
type Event struct {
	Kind  EventKind
	Token Token
}

func EnterEvent(t Token) Event { return Event{Kind: Enter, Token: t} }
func ExitEvent(t Token) Event  { return Event{Kind: Exit, Token: t} }
