package options

import (
	"github.com/spf13/pflag"
)

// IOptions is implemented by every reusable option group.
type IOptions interface {
	// Validate checks the option values entered by the user at startup.
	Validate() []error

	// AddFlags binds the options to the given flag set.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}
