package dto

import (
	"time"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/history"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
)

// CreateSessionRequest optionally seeds a new session
type CreateSessionRequest struct {
	Title    string               `json:"title,omitempty" validate:"omitempty,max=200"`
	Settings *simulation.Settings `json:"settings,omitempty"`
}

// SettingsRequest replaces the generator settings of a session
type SettingsRequest struct {
	TotalDuration int `json:"totalDuration" validate:"required,gt=0"`
	Interval      int `json:"interval" validate:"required,gt=0"`
}

// Settings converts the request
func (r SettingsRequest) Settings() simulation.Settings {
	return simulation.Settings{TotalDuration: r.TotalDuration, Interval: r.Interval}
}

// JumpRequest moves through history by a signed number of steps
type JumpRequest struct {
	Offset int `json:"offset"`
}

// SessionResponse is the state of one editing session
type SessionResponse struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	Diagram   diagram.Snapshot    `json:"diagram"`
	Settings  simulation.Settings `json:"settings"`
	CanUndo   bool                `json:"can_undo"`
	CanRedo   bool                `json:"can_redo"`
}

// HistoryResponse lists every reachable state
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
	CanUndo bool            `json:"can_undo"`
	CanRedo bool            `json:"can_redo"`
}

// SessionSummary is one entry of the session list
type SessionSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
}

// OptionsResponse lists the preset settings values offered by pickers
type OptionsResponse struct {
	Durations []simulation.Option `json:"durations"`
	Intervals []simulation.Option `json:"intervals"`
	Defaults  simulation.Settings `json:"defaults"`
}

// HistoryStepResponse is the result of an undo or redo. Applied is false when
// there was nothing to step over.
type HistoryStepResponse struct {
	Applied bool            `json:"applied"`
	Session SessionResponse `json:"session"`
}
