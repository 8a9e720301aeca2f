package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/history"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestEditor(opts ...Option) *Editor {
	return New(append([]Option{WithIDGenerator(sequentialIDs())}, opts...)...)
}

type fakeMetrics struct {
	mu        sync.Mutex
	commands  map[string]int
	failures  map[string]int
	history   map[string]int
	lastPast  int
	lastFutur int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{commands: map[string]int{}, failures: map[string]int{}, history: map[string]int{}}
}

func (m *fakeMetrics) RecordCommand(command string, err error, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.failures[command]++
		return
	}
	m.commands[command]++
}

func (m *fakeMetrics) RecordHistoryOp(op string, applied bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[fmt.Sprintf("%s/%t", op, applied)]++
}

func (m *fakeMetrics) SetHistoryDepth(past, future int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPast, m.lastFutur = past, future
}

func TestNew_Defaults(t *testing.T) {
	e := New()

	s := e.State()
	assert.Equal(t, diagram.DefaultTitle, s.Title)
	assert.Empty(t, s.Nodes)
	assert.Empty(t, s.Edges)
	assert.Equal(t, simulation.DefaultSettings(), e.Settings())
	assert.False(t, e.CanUndo())
	assert.False(t, e.CanRedo())
}

func TestDispatch_RecordsReplacedState(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor()

	_, err := e.Dispatch(ctx, SetTitle{Title: "Orders"})
	require.NoError(t, err)
	s, err := e.Dispatch(ctx, AddNode{Node: diagram.Node{Label: "Kafka", Category: diagram.CategorySource}})
	require.NoError(t, err)

	require.Len(t, s.Nodes, 1)
	assert.Equal(t, "id-1", s.Nodes[0].ID)
	assert.True(t, e.CanUndo())

	prev, ok := e.Undo()
	require.True(t, ok)
	assert.Equal(t, "Orders", prev.Title)
	assert.Empty(t, prev.Nodes)

	prev, ok = e.Undo()
	require.True(t, ok)
	assert.Equal(t, diagram.DefaultTitle, prev.Title)

	_, ok = e.Undo()
	assert.False(t, ok)
}

func TestDispatch_RejectedCommandRecordsNothing(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor()

	tests := []struct {
		name    string
		cmd     Command
		wantErr error
	}{
		{"nil command", nil, ErrNilCommand},
		{"move missing node", MoveNode{NodeID: "ghost"}, diagram.ErrNodeNotFound},
		{"label too long", AddNode{Node: diagram.Node{ID: "n1", Label: "a label that is too long"}}, diagram.ErrLabelTooLong},
		{"bad category", AddNode{Node: diagram.Node{ID: "n1", Category: "database"}}, diagram.ErrInvalidNodeCategory},
		{"disconnect missing", Disconnect{EdgeID: "e1"}, diagram.ErrEdgeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Dispatch(ctx, tt.cmd)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, e.CanUndo())
			assert.Equal(t, diagram.New(), e.State())
		})
	}
}

func TestDispatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEditor()
	_, err := e.Dispatch(ctx, SetTitle{Title: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, e.CanUndo())
}

func TestUndoRedo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor()

	for i := 0; i < 3; i++ {
		_, err := e.PlaceNode(ctx, diagram.CategoryIntermediate, diagram.Position{X: float64(i)})
		require.NoError(t, err)
	}
	before := e.State()

	_, ok := e.Undo()
	require.True(t, ok)
	after, ok := e.Redo()
	require.True(t, ok)

	assert.Equal(t, before, after)
	assert.Equal(t, before, e.State())
}

func TestDispatch_ClearsRedo(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor()

	_, err := e.Dispatch(ctx, SetTitle{Title: "a"})
	require.NoError(t, err)
	_, ok := e.Undo()
	require.True(t, ok)
	require.True(t, e.CanRedo())

	_, err = e.Dispatch(ctx, SetTitle{Title: "b"})
	require.NoError(t, err)
	assert.False(t, e.CanRedo())

	s, ok := e.Redo()
	assert.False(t, ok)
	assert.Equal(t, "b", s.Title)
}

func TestHistory_BoundedDepth(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor()

	for i := 0; i < history.MaxDepth+10; i++ {
		_, err := e.Dispatch(ctx, SetTitle{Title: fmt.Sprintf("t%d", i)})
		require.NoError(t, err)
	}

	undos := 0
	for e.CanUndo() {
		_, ok := e.Undo()
		require.True(t, ok)
		undos++
	}
	assert.Equal(t, history.MaxDepth, undos)
	// The oldest 10 states were evicted; the earliest reachable one is t9.
	assert.Equal(t, "t9", e.State().Title)
}

func TestPlaceNode_LabelsByCategory(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor()

	var labels []string
	for _, c := range []diagram.Category{
		diagram.CategorySource,
		diagram.CategoryIntermediate,
		diagram.CategorySource,
		diagram.CategorySink,
		diagram.CategoryIntermediate,
	} {
		n, err := e.PlaceNode(ctx, c, diagram.Position{X: 10, Y: 20})
		require.NoError(t, err)
		labels = append(labels, n.Label)
	}

	assert.Equal(t, []string{"Source 1", "Process 1", "Source 2", "Sink 1", "Process 2"}, labels)
	assert.Equal(t, "id-5", e.State().Nodes[4].ID)

	_, err := e.PlaceNode(ctx, "database", diagram.Position{})
	assert.ErrorIs(t, err, diagram.ErrInvalidNodeCategory)
}

func TestDispatch_ReturnsOwnStateWhenAnotherCommandFollows(t *testing.T) {
	ctx := context.Background()

	var e *Editor
	intruder := func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, cmd Command) error {
			err := next.Handle(ctx, cmd)
			if err == nil && cmd.Name() != CommandAddNode {
				other := diagram.Node{ID: "other-" + cmd.Name(), Label: "Other"}
				_, otherErr := e.Dispatch(context.Background(), AddNode{Node: other})
				require.NoError(t, otherErr)
			}
			return err
		})
	}
	e = newTestEditor(WithMiddleware(intruder))

	n, err := e.PlaceNode(ctx, diagram.CategorySource, diagram.Position{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, "id-1", n.ID)
	assert.Equal(t, "Source 1", n.Label)
	assert.Len(t, e.State().Nodes, 2)

	next, err := e.Dispatch(ctx, SetTitle{Title: "mine"})
	require.NoError(t, err)
	assert.Equal(t, "mine", next.Title)
	assert.Len(t, next.Nodes, 2)
	assert.Len(t, e.State().Nodes, 3)
}

func TestJump(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor()
	for _, title := range []string{"a", "b", "c", "d"} {
		_, err := e.Dispatch(ctx, SetTitle{Title: title})
		require.NoError(t, err)
	}

	s, err := e.Jump(-3)
	require.NoError(t, err)
	assert.Equal(t, "a", s.Title)

	s, err = e.Jump(2)
	require.NoError(t, err)
	assert.Equal(t, "c", s.Title)

	s, err = e.Jump(0)
	require.NoError(t, err)
	assert.Equal(t, "c", s.Title)

	_, err = e.Jump(-4)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
	_, err = e.Jump(2)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
	assert.Equal(t, "c", e.State().Title)
}

func TestTimeline(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor()

	n, err := e.PlaceNode(ctx, diagram.CategorySource, diagram.Position{})
	require.NoError(t, err)
	_, err = e.Dispatch(ctx, MoveNode{NodeID: n.ID, Position: diagram.Position{X: 50, Y: 50}})
	require.NoError(t, err)
	_, _ = e.Undo()

	entries := e.Timeline()
	require.Len(t, entries, 3)

	assert.Equal(t, history.Entry{Offset: -1, Description: history.InitialState, Nodes: 0, Edges: 0}, entries[0])
	assert.Equal(t, 0, entries[1].Offset)
	assert.Equal(t, "Added 1 node", entries[1].Description)
	assert.Equal(t, 1, entries[2].Offset)
	assert.Equal(t, "Moved 1 node", entries[2].Description)
}

func TestSettings(t *testing.T) {
	e := newTestEditor(WithSettings(simulation.Settings{TotalDuration: 30, Interval: 30}))
	assert.Equal(t, 30, e.Settings().TotalDuration)

	require.NoError(t, e.SetSettings(simulation.Settings{TotalDuration: 1440, Interval: 600}))
	assert.Equal(t, simulation.Settings{TotalDuration: 1440, Interval: 600}, e.Settings())

	err := e.SetSettings(simulation.Settings{TotalDuration: 60, Interval: 0})
	assert.ErrorIs(t, err, simulation.ErrInvalidConfiguration)
	assert.Equal(t, 600, e.Settings().Interval)
	assert.False(t, e.CanUndo())
}

func TestWithInitialState(t *testing.T) {
	initial := diagram.Snapshot{
		Title: "Loaded",
		Nodes: []diagram.Node{{ID: "a", Label: "A"}},
	}
	e := newTestEditor(WithInitialState(initial))
	initial.Nodes[0].Label = "mutated"

	assert.Equal(t, "A", e.State().Nodes[0].Label)
	assert.False(t, e.CanUndo())
}

func TestStateIsACopy(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor()
	_, err := e.PlaceNode(ctx, diagram.CategorySink, diagram.Position{})
	require.NoError(t, err)

	s := e.State()
	s.Nodes[0].Label = "mutated"
	assert.Equal(t, "Sink 1", e.State().Nodes[0].Label)
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()

	var order []string
	tag := func(name string) Middleware {
		return func(next Handler) Handler {
			return HandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name+":"+cmd.Name())
				return next.Handle(ctx, cmd)
			})
		}
	}
	veto := func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, cmd Command) error {
			if cmd.Name() == CommandDeleteNode {
				return errors.New("read only")
			}
			return next.Handle(ctx, cmd)
		})
	}

	e := newTestEditor(WithMiddleware(tag("outer"), tag("inner"), veto))

	n, err := e.PlaceNode(ctx, diagram.CategorySource, diagram.Position{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer:place_node", "inner:place_node"}, order)

	_, err = e.Dispatch(ctx, DeleteNode{NodeID: n.ID})
	assert.EqualError(t, err, "read only")
	assert.Len(t, e.State().Nodes, 1)
}

func TestMetricsAndLogging(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	m := newFakeMetrics()
	e := newTestEditor(WithLogger(zap.New(core)), WithMetrics(m))

	_, err := e.Dispatch(ctx, SetTitle{Title: "a"})
	require.NoError(t, err)
	_, err = e.Dispatch(ctx, MoveNode{NodeID: "ghost"})
	require.Error(t, err)
	_, _ = e.Undo()
	_, _ = e.Undo()

	assert.Equal(t, 1, m.commands[CommandSetTitle])
	assert.Equal(t, 1, m.failures[CommandMoveNode])
	assert.Equal(t, 1, m.history["undo/true"])
	assert.Equal(t, 1, m.history["undo/false"])
	assert.Equal(t, 0, m.lastPast)
	assert.Equal(t, 1, m.lastFutur)

	rejected := logs.FilterMessage("command rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, CommandMoveNode, rejected[0].ContextMap()["command"])
	assert.Equal(t, 1, logs.FilterMessage("command applied").Len())
}

func TestConcurrentDispatch(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.PlaceNode(ctx, diagram.CategoryIntermediate, diagram.Position{})
			_ = e.Timeline()
		}()
	}
	wg.Wait()

	s := e.State()
	require.Len(t, s.Nodes, 20)
	labels := make(map[string]struct{})
	for _, n := range s.Nodes {
		labels[n.Label] = struct{}{}
	}
	assert.Len(t, labels, 20)
	assert.Contains(t, labels, "Process 20")

	past, _ := e.history.Depth()
	assert.Equal(t, 20, past)
}
