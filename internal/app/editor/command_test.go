package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
)

func threeNodeDiagram() diagram.Snapshot {
	return diagram.Snapshot{
		Title: "Pipeline",
		Nodes: []diagram.Node{
			{ID: "a", Label: "Intake", Category: diagram.CategorySource},
			{ID: "b", Label: "Clean", Category: diagram.CategoryIntermediate},
			{ID: "c", Label: "Warehouse", Category: diagram.CategorySink},
		},
		Edges: []diagram.Edge{
			{ID: "ab", Source: "a", Target: "b"},
			{ID: "bc", Source: "b", Target: "c"},
		},
	}
}

func ptr[T any](v T) *T { return &v }

func apply(t *testing.T, cmd Command) (diagram.Snapshot, error) {
	t.Helper()
	if err := cmd.Validate(); err != nil {
		return diagram.Snapshot{}, err
	}
	return cmd.Apply(threeNodeDiagram())
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr error
		check   func(t *testing.T, s diagram.Snapshot)
	}{
		{
			name: "add node",
			cmd:  AddNode{Node: diagram.Node{ID: "d", Label: "Audit", Category: diagram.CategorySink}},
			check: func(t *testing.T, s diagram.Snapshot) {
				require.Len(t, s.Nodes, 4)
				assert.Equal(t, "Audit", s.Nodes[3].Label)
			},
		},
		{
			name:    "add duplicate node",
			cmd:     AddNode{Node: diagram.Node{ID: "a", Label: "Again"}},
			wantErr: diagram.ErrDuplicateNode,
		},
		{
			name: "place node counts category",
			cmd:  PlaceNode{ID: "d", Category: diagram.CategorySource, Position: diagram.Position{X: 5}},
			check: func(t *testing.T, s diagram.Snapshot) {
				assert.Equal(t, diagram.Node{ID: "d", Label: "Source 2", Category: diagram.CategorySource, Position: diagram.Position{X: 5}}, s.Nodes[3])
			},
		},
		{
			name:    "place node without id",
			cmd:     PlaceNode{Category: diagram.CategorySink},
			wantErr: diagram.ErrInvalidNodeID,
		},
		{
			name: "move node",
			cmd:  MoveNode{NodeID: "b", Position: diagram.Position{X: 100, Y: -4}},
			check: func(t *testing.T, s diagram.Snapshot) {
				assert.Equal(t, diagram.Position{X: 100, Y: -4}, s.Nodes[1].Position)
			},
		},
		{
			name: "rename trims",
			cmd:  RenameNode{NodeID: "c", Label: "  Lake  "},
			check: func(t *testing.T, s diagram.Snapshot) {
				assert.Equal(t, "Lake", s.Nodes[2].Label)
			},
		},
		{
			name:    "rename to blank",
			cmd:     RenameNode{NodeID: "c", Label: "   "},
			wantErr: ErrEmptyLabel,
		},
		{
			name:    "rename too long",
			cmd:     RenameNode{NodeID: "c", Label: "abcdefghijklmnopqrstu"},
			wantErr: diagram.ErrLabelTooLong,
		},
		{
			name:    "rename missing node",
			cmd:     RenameNode{NodeID: "z", Label: "Z"},
			wantErr: diagram.ErrNodeNotFound,
		},
		{
			name: "update properties",
			cmd: UpdateNodeProperties{
				NodeID:   "b",
				FlowType: ptr(diagram.FlowTypeStream),
				Volume:   ptr(diagram.VolumeXLarge),
			},
			check: func(t *testing.T, s diagram.Snapshot) {
				n := s.Nodes[1]
				assert.Equal(t, "Clean", n.Label)
				assert.Equal(t, diagram.FlowTypeStream, n.FlowType)
				assert.Equal(t, diagram.VolumeXLarge, n.Volume)
			},
		},
		{
			name: "update trims label",
			cmd:  UpdateNodeProperties{NodeID: "b", Label: ptr("  Dedupe ")},
			check: func(t *testing.T, s diagram.Snapshot) {
				assert.Equal(t, "Dedupe", s.Nodes[1].Label)
			},
		},
		{
			name:    "update blank label",
			cmd:     UpdateNodeProperties{NodeID: "b", Label: ptr("   ")},
			wantErr: ErrEmptyLabel,
		},
		{
			name:    "update empty label",
			cmd:     UpdateNodeProperties{NodeID: "b", Label: ptr("")},
			wantErr: ErrEmptyLabel,
		},
		{
			name:    "update nothing",
			cmd:     UpdateNodeProperties{NodeID: "b"},
			wantErr: ErrNoChanges,
		},
		{
			name:    "update bad volume",
			cmd:     UpdateNodeProperties{NodeID: "b", Volume: ptr(diagram.Volume("huge"))},
			wantErr: diagram.ErrInvalidVolume,
		},
		{
			name:    "update bad flow type",
			cmd:     UpdateNodeProperties{NodeID: "b", FlowType: ptr(diagram.FlowType("trickle"))},
			wantErr: diagram.ErrInvalidFlowType,
		},
		{
			name: "delete node cascades",
			cmd:  DeleteNode{NodeID: "b"},
			check: func(t *testing.T, s diagram.Snapshot) {
				assert.Len(t, s.Nodes, 2)
				assert.Empty(t, s.Edges)
			},
		},
		{
			name: "delete leaf keeps other edges",
			cmd:  DeleteNode{NodeID: "c"},
			check: func(t *testing.T, s diagram.Snapshot) {
				require.Len(t, s.Edges, 1)
				assert.Equal(t, "ab", s.Edges[0].ID)
			},
		},
		{
			name: "connect",
			cmd:  Connect{Edge: diagram.Edge{ID: "ac", Source: "a", Target: "c"}},
			check: func(t *testing.T, s diagram.Snapshot) {
				require.Len(t, s.Edges, 3)
				assert.Equal(t, "ac", s.Edges[2].ID)
			},
		},
		{
			name:    "connect self",
			cmd:     Connect{Edge: diagram.Edge{ID: "aa", Source: "a", Target: "a"}},
			wantErr: diagram.ErrSelfLoop,
		},
		{
			name:    "connect reverse duplicate",
			cmd:     Connect{Edge: diagram.Edge{ID: "ba", Source: "b", Target: "a"}},
			wantErr: diagram.ErrDuplicateEdge,
		},
		{
			name:    "connect duplicate id",
			cmd:     Connect{Edge: diagram.Edge{ID: "ab", Source: "a", Target: "c"}},
			wantErr: diagram.ErrDuplicateEdge,
		},
		{
			name:    "connect sink to source",
			cmd:     Connect{Edge: diagram.Edge{ID: "ca", Source: "c", Target: "a"}},
			wantErr: diagram.ErrInvalidDirection,
		},
		{
			name:    "connect missing target",
			cmd:     Connect{Edge: diagram.Edge{ID: "az", Source: "a", Target: "z"}},
			wantErr: diagram.ErrNodeNotFound,
		},
		{
			name: "disconnect",
			cmd:  Disconnect{EdgeID: "ab"},
			check: func(t *testing.T, s diagram.Snapshot) {
				require.Len(t, s.Edges, 1)
				assert.Equal(t, "bc", s.Edges[0].ID)
			},
		},
		{
			name: "set title",
			cmd:  SetTitle{Title: "Clickstream"},
			check: func(t *testing.T, s diagram.Snapshot) {
				assert.Equal(t, "Clickstream", s.Title)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := apply(t, tt.cmd)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestConnect_CategoryDirection(t *testing.T) {
	base := diagram.Snapshot{Nodes: []diagram.Node{
		{ID: "src", Category: diagram.CategorySource},
		{ID: "src2", Category: diagram.CategorySource},
		{ID: "mid", Category: diagram.CategoryIntermediate},
		{ID: "mid2", Category: diagram.CategoryIntermediate},
		{ID: "sink", Category: diagram.CategorySink},
		{ID: "sink2", Category: diagram.CategorySink},
		{ID: "plain"},
	}}

	tests := []struct {
		source, target string
		wantErr        error
	}{
		{"src", "mid", nil},
		{"src", "sink", nil},
		{"mid", "mid2", nil},
		{"mid", "sink", nil},
		{"src", "src2", diagram.ErrInvalidDirection},
		{"mid", "src", diagram.ErrInvalidDirection},
		{"sink", "mid", diagram.ErrInvalidDirection},
		{"sink", "sink2", diagram.ErrInvalidDirection},
		{"sink", "plain", diagram.ErrInvalidDirection},
		{"plain", "src", diagram.ErrInvalidDirection},
		{"plain", "sink", nil},
		{"mid", "plain", nil},
	}

	for _, tt := range tests {
		t.Run(tt.source+"->"+tt.target, func(t *testing.T) {
			cmd := Connect{Edge: diagram.Edge{ID: "e", Source: tt.source, Target: tt.target}}
			s, err := cmd.Apply(base.Clone())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, s.Edges, 1)
		})
	}
}

func TestCommandNames(t *testing.T) {
	names := map[Command]string{
		AddNode{}:              CommandAddNode,
		PlaceNode{}:            CommandPlaceNode,
		MoveNode{}:             CommandMoveNode,
		RenameNode{}:           CommandRenameNode,
		UpdateNodeProperties{}: CommandUpdateNode,
		DeleteNode{}:           CommandDeleteNode,
		Connect{}:              CommandConnect,
		Disconnect{}:           CommandDisconnect,
		SetTitle{}:             CommandSetTitle,
	}
	for cmd, want := range names {
		assert.Equal(t, want, cmd.Name())
	}
}
