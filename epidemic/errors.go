package epidemic

import "errors"

var (
	// ErrUnsupportedVariant is returned when a model tag is not one of the
	// supported variants. This is a wiring error, not a user-input error.
	ErrUnsupportedVariant = errors.New("epidemic: unsupported model variant")
)
