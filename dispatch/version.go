package dispatch

import "github.com/anybox/anybox/layout"

// Version is the layout version of this package's boundary structs. 1.0.0
// tables carried only the prefix slots; 1.1.0 appended the stream and
// serialization slots.
const Version = "1.1.0"

func init() {
	// Registration can only fail on a malformed constant.
	_ = layout.RegisterPackageVersion("github.com/anybox/anybox/dispatch", Version)
}
