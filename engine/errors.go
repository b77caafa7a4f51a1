package engine

import "errors"

var (
	// ErrNumericalInstability indicates a compartment became NaN or
	// infinite. Run returns it together with the partial series up to
	// the failing step so callers can still display what was computed.
	ErrNumericalInstability = errors.New("engine: numerical instability detected")
)
