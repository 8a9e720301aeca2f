// Package simulation defines domain-specific errors
package simulation

import "errors"

var (
	// ErrInvalidConfiguration is returned when duration or interval is not positive.
	ErrInvalidConfiguration = errors.New("invalid simulation configuration")
)
