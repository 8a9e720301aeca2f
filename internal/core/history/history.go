// Package history provides bounded linear undo/redo over diagram snapshots.
//
// The manager stores whole-diagram copies rather than diffs. Every snapshot is
// cloned on the way in and on the way out, so callers can never reach the
// recorded state through a shared slice.
package history

import (
	"sync"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
)

// MaxDepth caps the number of undo steps kept in the past stack.
const MaxDepth = 25

// Manager holds the past and future stacks.
// past is oldest-to-newest; future is nearest-to-furthest.
type Manager struct {
	mu     sync.Mutex
	past   []diagram.Snapshot
	future []diagram.Snapshot
}

// NewManager creates an empty history.
func NewManager() *Manager {
	return &Manager{}
}

// Record appends s to the past, evicting the oldest entry beyond MaxDepth,
// and clears the redo trail.
func (m *Manager) Record(s diagram.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.past = append(m.past, s.Clone())
	if len(m.past) > MaxDepth {
		m.past = append(m.past[:0:0], m.past[len(m.past)-MaxDepth:]...)
	}
	m.future = nil
}

// Undo pops the most recent past snapshot and pushes current onto the front
// of the future. It reports false and leaves state untouched when there is
// nothing to undo; current then stays authoritative.
func (m *Manager) Undo(current diagram.Snapshot) (diagram.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.past) == 0 {
		return diagram.Snapshot{}, false
	}
	prev := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.future = append([]diagram.Snapshot{current.Clone()}, m.future...)
	return prev.Clone(), true
}

// Redo pops the nearest future snapshot and pushes current onto the past.
// It reports false when there is nothing to redo.
func (m *Manager) Redo(current diagram.Snapshot) (diagram.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.future) == 0 {
		return diagram.Snapshot{}, false
	}
	next := m.future[0]
	m.future = m.future[1:]
	m.past = append(m.past, current.Clone())
	return next.Clone(), true
}

// CanUndo reports whether Undo would change state.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

// CanRedo reports whether Redo would change state.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// Depth returns the sizes of the past and future stacks.
func (m *Manager) Depth() (past, future int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past), len(m.future)
}

// Past returns a copy of the past stack, oldest first.
func (m *Manager) Past() []diagram.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.past)
}

// Future returns a copy of the future stack, nearest first.
func (m *Manager) Future() []diagram.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.future)
}

// Reset drops both stacks.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.past = nil
	m.future = nil
}

// Entry is one row of the history log.
type Entry struct {
	// Offset is the number of redos (positive) or undos (negative) needed to
	// reach this state. The current state has offset 0.
	Offset      int    `json:"offset"`
	Description string `json:"description"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
}

// Timeline lists every reachable state in order: the past, current, then the
// future. Each entry is described relative to the state before it.
func (m *Manager) Timeline(current diagram.Snapshot) []Entry {
	m.mu.Lock()
	states := make([]diagram.Snapshot, 0, len(m.past)+1+len(m.future))
	states = append(states, m.past...)
	states = append(states, current)
	states = append(states, m.future...)
	pastLen := len(m.past)
	m.mu.Unlock()

	entries := make([]Entry, len(states))
	for i := range states {
		var prev *diagram.Snapshot
		if i > 0 {
			prev = &states[i-1]
		}
		entries[i] = Entry{
			Offset:      i - pastLen,
			Description: Describe(prev, states[i]),
			Nodes:       len(states[i].Nodes),
			Edges:       len(states[i].Edges),
		}
	}
	return entries
}

func cloneAll(in []diagram.Snapshot) []diagram.Snapshot {
	out := make([]diagram.Snapshot, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
