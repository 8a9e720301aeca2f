// Package export provides the export artifact and the sink abstraction that
// receives it. It has no external dependencies.
package export

import (
	"time"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
)

// Artifact is the result of one export: the generated series and its CSV form.
type Artifact struct {
	ID          string                  `json:"id" yaml:"id" msgpack:"id"`
	Title       string                  `json:"title" yaml:"title" msgpack:"title"`
	Filename    string                  `json:"filename" yaml:"filename" msgpack:"filename"`
	GeneratedAt time.Time               `json:"generated_at" yaml:"generated_at" msgpack:"generated_at"`
	Settings    simulation.Settings     `json:"settings" yaml:"settings" msgpack:"settings"`
	Records     []simulation.TickRecord `json:"records" yaml:"records" msgpack:"records"`
	CSV         []byte                  `json:"-" yaml:"-" msgpack:"-"`
}

// Rows is the number of CSV data rows in the artifact.
func (a *Artifact) Rows() int {
	return simulation.RowCount(a.Records)
}

// Validate ensures the artifact can be written
func (a *Artifact) Validate() error {
	if a.ID == "" {
		return ErrInvalidArtifactID
	}
	if a.Filename == "" {
		return ErrInvalidFilename
	}
	return nil
}
