package flowturi

import (
	"context"
	"io"

	"github.com/ThatOrJohn/flowturi-designer/internal/app/editor"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/services"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/export"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/history"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
)

// Re-export core types for convenience
type (
	Node       = diagram.Node
	Edge       = diagram.Edge
	Position   = diagram.Position
	Category   = diagram.Category
	FlowType   = diagram.FlowType
	Volume     = diagram.Volume
	Snapshot   = diagram.Snapshot
	Settings   = simulation.Settings
	TickRecord = simulation.TickRecord
	Entry      = history.Entry
	Artifact   = export.Artifact
	Sink       = export.Sink

	Editor       = editor.Editor
	EditorOption = editor.Option
	Command      = editor.Command
	AddNode      = editor.AddNode
	PlaceNode    = editor.PlaceNode
	MoveNode     = editor.MoveNode
	RenameNode   = editor.RenameNode
	UpdateNode   = editor.UpdateNodeProperties
	DeleteNode   = editor.DeleteNode
	Connect      = editor.Connect
	Disconnect   = editor.Disconnect
	SetTitle     = editor.SetTitle
)

const (
	CategorySource       = diagram.CategorySource
	CategoryIntermediate = diagram.CategoryIntermediate
	CategorySink         = diagram.CategorySink
	MaxHistoryDepth      = history.MaxDepth
)

// NewEditor creates an editor on an empty diagram with default settings.
func NewEditor(opts ...EditorOption) *Editor {
	return editor.New(opts...)
}

// DefaultSettings returns 60 minutes at 15 second intervals.
func DefaultSettings() Settings {
	return simulation.DefaultSettings()
}

// Generate produces the tick series for s using the wall clock and a random
// value source.
func Generate(s Snapshot, settings Settings) ([]TickRecord, error) {
	return simulation.NewGenerator().GenerateSnapshot(s, settings)
}

// Render returns the CSV text of records.
func Render(records []TickRecord) ([]byte, error) {
	return simulation.Render(records)
}

// WriteCSV streams the CSV text of records to w.
func WriteCSV(w io.Writer, records []TickRecord) error {
	return simulation.WriteCSV(w, records)
}

// Filename derives the CSV download name from a diagram title.
func Filename(title string) string {
	return simulation.Filename(title)
}

// Export generates, renders and writes one artifact to sink.
func Export(ctx context.Context, s Snapshot, settings Settings, sink Sink) (*Artifact, error) {
	return services.NewExportService().Export(ctx, s, settings, sink)
}
