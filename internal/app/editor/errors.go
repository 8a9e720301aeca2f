package editor

import "errors"

// Editor errors
var (
	ErrNilCommand       = errors.New("command cannot be nil")
	ErrEmptyLabel       = errors.New("node label cannot be empty")
	ErrNoChanges        = errors.New("no properties to update")
	ErrOffsetOutOfRange = errors.New("history offset out of range")
	ErrUnknownCommand   = errors.New("unknown command type")
)
