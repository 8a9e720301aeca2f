// Package archive writes export artifacts as serialized, compressed archives
// holding the structured tick records rather than the CSV text.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/export"
	"github.com/ThatOrJohn/flowturi-designer/pkg/serialization"
)

// Sink writes <dir>/<slug>-historical-data.<codec><compression ext>
type Sink struct {
	dir        string
	serializer *serialization.Serializer
}

// NewSink creates an archive sink. A nil serializer means msgpack with zstd.
func NewSink(dir string, serializer *serialization.Serializer) *Sink {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &Sink{dir: dir, serializer: serializer}
}

// Name implements export.Sink
func (s *Sink) Name() string { return "archive" }

// Path returns where the artifact will be written
func (s *Sink) Path(a *export.Artifact) string {
	base := strings.TrimSuffix(filepath.Base(a.Filename), ".csv")
	return filepath.Join(s.dir, base+"."+s.serializer.Codec().Name()+s.serializer.Compression().Extension())
}

// Write serializes the artifact into the archive file
func (s *Sink) Write(ctx context.Context, a *export.Artifact) error {
	if a == nil {
		return export.ErrNilArtifact
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("artifact validation failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.serializer.Serialize(a)
	if err != nil {
		return fmt.Errorf("%w: %w", export.ErrWriteFailed, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", export.ErrWriteFailed, s.dir, err)
	}
	if err := os.WriteFile(s.Path(a), data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", export.ErrWriteFailed, err)
	}
	return nil
}

// Read loads an archive written by Write. The CSV field is not stored and
// comes back empty.
func (s *Sink) Read(path string) (*export.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var a export.Artifact
	if err := s.serializer.Deserialize(data, &a); err != nil {
		return nil, fmt.Errorf("reading archive %s: %w", path, err)
	}
	return &a, nil
}
