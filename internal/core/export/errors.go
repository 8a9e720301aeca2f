// Package export defines domain-specific errors
package export

import "errors"

var (
	// Artifact validation errors
	ErrNilArtifact       = errors.New("artifact cannot be nil")
	ErrInvalidArtifactID = errors.New("invalid artifact ID")
	ErrInvalidFilename   = errors.New("invalid artifact filename")

	// Sink errors
	ErrUnknownSink      = errors.New("unknown export sink")
	ErrWriteFailed      = errors.New("failed to write export")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrStoreFull        = errors.New("artifact store is full")
)
