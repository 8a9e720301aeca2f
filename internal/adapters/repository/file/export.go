// Package file writes export artifacts as CSV files into a directory.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/export"
)

// Sink writes each artifact to <dir>/<artifact filename>
type Sink struct {
	dir  string
	perm os.FileMode
}

// NewSink creates a file sink rooted at dir. The directory is created on
// first write if missing.
func NewSink(dir string) *Sink {
	return &Sink{dir: dir, perm: 0o644}
}

// Name implements export.Sink
func (s *Sink) Name() string { return "file" }

// Dir returns the output directory
func (s *Sink) Dir() string { return s.dir }

// Path returns where the artifact will be written
func (s *Sink) Path(a *export.Artifact) string {
	return filepath.Join(s.dir, filepath.Base(a.Filename))
}

// Write stores the CSV. The file is written to a temporary name and renamed
// so readers never observe a partial export.
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

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", export.ErrWriteFailed, s.dir, err)
	}

	return writeAtomic(s.Path(a), a.CSV, s.perm)
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", export.ErrWriteFailed, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", export.ErrWriteFailed, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", export.ErrWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", export.ErrWriteFailed, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", export.ErrWriteFailed, err)
	}
	return nil
}
