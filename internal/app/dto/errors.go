package dto

import "errors"

// Request errors
var (
	ErrMissingField = errors.New("required field missing")
)
