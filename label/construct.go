package label

// DestinationDepthCap is the balanced-parenthesis nesting limit a
// resource destination may use before the resource attempt is
// abandoned. CommonMark's reference implementations use 32; exceeding
// it must fail the resource recognizer and fall through to
// reference/shortcut logic.
const DestinationDepthCap = 32

// WhitespaceFactory consumes zero or more bytes of optional
// whitespace at the current position. It cannot fail: an absence of
// whitespace is a valid (empty) match.
type WhitespaceFactory func(eff Effects)

// DestinationFactory attempts to recognize a link/image destination
// (either a `<...>` pointy-bracketed literal or a bare, balanced-paren
// sequence up to depthCap levels deep), emitting resourceDestination*
// tokens on success. It reports whether it matched.
type DestinationFactory func(eff Effects, depthCap int) bool

// TitleFactory attempts to recognize a `"..."`, `'...'` or `(...)`
// title, emitting resourceTitle* tokens on success.
type TitleFactory func(eff Effects) bool

// LabelFactory attempts to recognize a `[...]` full-reference label
// starting at the current `[`, emitting reference/referenceMarker/
// referenceString tokens. It reports whether a well-formed label was
// present (balanced brackets, no bare `[`/`]` inside) -- membership in
// the definition set is then checked by the caller against the
// referenceString content.
type LabelFactory func(eff Effects) bool

// Construct bundles the three sub-recognizer factories a caller must
// supply: this package never knows how whitespace, destinations,
// titles or labels are actually scanned, only how to sequence attempts
// at them.
type Construct struct {
	Whitespace  WhitespaceFactory
	Destination DestinationFactory
	Title       TitleFactory
	Label       LabelFactory
}
