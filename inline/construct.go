package inline

import "github.com/akavel/cmtoken/label"

// Construct builds the label.Construct value wired to this package's
// whitespace/destination/title/label sub-recognizers -- the
// byte-at-a-time recognizers in resource.go, written against
// label.Effects.
func Construct() label.Construct {
	return label.Construct{
		Whitespace:  whitespace,
		Destination: destination,
		Title:       title,
		Label:       label_,
	}
}
