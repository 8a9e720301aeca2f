package services

import "errors"

var (
	ErrNilSink = errors.New("export sink is nil")
)
