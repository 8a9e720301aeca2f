// Package editor applies user edits to a diagram as explicit commands and
// keeps the undo history in step with them.
//
// Every successful command records the state it replaced, so one Undo always
// reverts exactly one command. Rejected commands leave both the state and the
// history untouched.
package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/history"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
)

// Editor owns one diagram, its simulation settings and its history.
// All methods are safe for concurrent use.
type Editor struct {
	mu       sync.Mutex
	state    diagram.Snapshot
	settings simulation.Settings
	history  *history.Manager

	handler     Handler
	middlewares []Middleware
	logger      *zap.Logger
	metrics     Metrics
	newID       func() string
}

// Option configures an Editor
type Option func(*Editor)

// WithLogger sets the logger; commands are logged through LoggingMiddleware.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithMetrics reports command and history activity to m.
func WithMetrics(m Metrics) Option {
	return func(e *Editor) {
		e.metrics = m
	}
}

// WithMiddleware appends middleware around command dispatch.
func WithMiddleware(mw ...Middleware) Option {
	return func(e *Editor) {
		e.middlewares = append(e.middlewares, mw...)
	}
}

// WithIDGenerator replaces the uuid generator used for new nodes and connections.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

// WithInitialState starts the editor from s instead of an empty diagram.
// The initial state is not undoable.
func WithInitialState(s diagram.Snapshot) Option {
	return func(e *Editor) {
		e.state = s.Clone()
	}
}

// WithSettings starts the editor with the given simulation settings.
func WithSettings(s simulation.Settings) Option {
	return func(e *Editor) {
		e.settings = s
	}
}

// New creates an editor on an empty, untitled diagram with default settings.
func New(opts ...Option) *Editor {
	e := &Editor{
		state:    diagram.New(),
		settings: simulation.DefaultSettings(),
		history:  history.NewManager(),
		logger:   zap.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	chain := []Middleware{LoggingMiddleware(e.logger)}
	if e.metrics != nil {
		chain = append(chain, MetricsMiddleware(e.metrics))
	}
	chain = append(chain, e.middlewares...)
	e.handler = Chain(HandlerFunc(e.apply), chain...)

	return e
}

// Dispatch validates cmd and applies it to the current state. On success the
// replaced state is recorded in the history and the state cmd produced is
// returned, even if other commands have been applied since.
func (e *Editor) Dispatch(ctx context.Context, cmd Command) (diagram.Snapshot, error) {
	if cmd == nil {
		return diagram.Snapshot{}, ErrNilCommand
	}
	if err := ctx.Err(); err != nil {
		return diagram.Snapshot{}, err
	}

	cmd = e.assignIDs(cmd)
	slot := &result{}
	if err := e.handler.Handle(withResult(ctx, slot), cmd); err != nil {
		return diagram.Snapshot{}, err
	}
	if !slot.set {
		// a middleware replaced the context on the way in
		return e.State(), nil
	}
	return slot.state, nil
}

// apply is the innermost handler. Recording and mutation share one critical
// section so concurrent dispatches cannot interleave with undo or redo.
func (e *Editor) apply(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := cmd.Apply(e.state.Clone())
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}

	e.history.Record(e.state)
	e.state = next
	e.observeDepth()
	if slot := resultFrom(ctx); slot != nil {
		slot.state = next.Clone()
		slot.set = true
	}
	return nil
}

func (e *Editor) assignIDs(cmd Command) Command {
	switch c := cmd.(type) {
	case AddNode:
		if c.Node.ID == "" {
			c.Node.ID = e.newID()
		}
		return c
	case PlaceNode:
		if c.ID == "" {
			c.ID = e.newID()
		}
		return c
	case Connect:
		if c.Edge.ID == "" {
			c.Edge.ID = e.newID()
		}
		return c
	}
	return cmd
}

// PlaceNode drops a new palette node at pos. It is labelled after its
// category and numbered one past the existing nodes of that category.
func (e *Editor) PlaceNode(ctx context.Context, category diagram.Category, pos diagram.Position) (diagram.Node, error) {
	id := e.newID()
	next, err := e.Dispatch(ctx, PlaceNode{ID: id, Category: category, Position: pos})
	if err != nil {
		return diagram.Node{}, err
	}
	node, ok := next.NodeByID(id)
	if !ok {
		return diagram.Node{}, fmt.Errorf("%s: %w: %s", CommandPlaceNode, diagram.ErrNodeNotFound, id)
	}
	return node, nil
}

// Undo restores the state before the most recent command. It reports false
// when there is nothing to undo.
func (e *Editor) Undo() (diagram.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev, ok := e.history.Undo(e.state)
	if ok {
		e.state = prev
	}
	e.observeHistory("undo", ok)
	return e.state.Clone(), ok
}

// Redo re-applies the most recently undone command. It reports false when
// there is nothing to redo.
func (e *Editor) Redo() (diagram.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, ok := e.history.Redo(e.state)
	if ok {
		e.state = next
	}
	e.observeHistory("redo", ok)
	return e.state.Clone(), ok
}

// Jump moves through the history by offset steps: negative values undo,
// positive values redo. Offsets come from Timeline. The whole jump is atomic.
func (e *Editor) Jump(offset int) (diagram.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	past, future := e.history.Depth()
	if offset < -past || offset > future {
		return diagram.Snapshot{}, fmt.Errorf("%w: %d (undo %d, redo %d)", ErrOffsetOutOfRange, offset, past, future)
	}

	for ; offset < 0; offset++ {
		e.state, _ = e.history.Undo(e.state)
	}
	for ; offset > 0; offset-- {
		e.state, _ = e.history.Redo(e.state)
	}
	e.observeHistory("jump", true)
	return e.state.Clone(), nil
}

// Timeline lists every state reachable through undo and redo.
func (e *Editor) Timeline() []history.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Timeline(e.state)
}

// State returns a copy of the current diagram.
func (e *Editor) State() diagram.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// CanUndo reports whether Undo would change state.
func (e *Editor) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo reports whether Redo would change state.
func (e *Editor) CanRedo() bool {
	return e.history.CanRedo()
}

// Settings returns the simulation settings.
func (e *Editor) Settings() simulation.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// SetSettings replaces the simulation settings. Settings are not part of the
// diagram and are not undoable.
func (e *Editor) SetSettings(s simulation.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = s
	return nil
}

func (e *Editor) observeHistory(op string, applied bool) {
	if !applied {
		e.logger.Debug("history unchanged", zap.String("op", op))
	}
	if e.metrics != nil {
		e.metrics.RecordHistoryOp(op, applied)
	}
	e.observeDepth()
}

func (e *Editor) observeDepth() {
	if e.metrics != nil {
		e.metrics.SetHistoryDepth(e.history.Depth())
	}
}
