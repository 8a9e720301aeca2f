// Package export provides sink interfaces
package export

import "context"

// Sink receives finished artifacts. Each Write is one complete export.
type Sink interface {
	// Name identifies the sink in logs and metrics
	Name() string

	// Write delivers the artifact
	Write(ctx context.Context, artifact *Artifact) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, artifact *Artifact) error

// Name implements Sink
func (f SinkFunc) Name() string { return "func" }

// Write implements Sink
func (f SinkFunc) Write(ctx context.Context, artifact *Artifact) error { return f(ctx, artifact) }
