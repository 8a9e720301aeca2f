package serialization

import "errors"

var (
	ErrUnknownFormat      = errors.New("unknown document format")
	ErrUnknownCompression = errors.New("unknown compression type")
)
