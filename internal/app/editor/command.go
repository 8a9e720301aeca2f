package editor

import (
	"fmt"
	"strings"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
)

// Command is one user edit. Apply receives a private copy of the current
// state and returns the next state; it must not retain the input.
type Command interface {
	// Name identifies the command in logs, metrics and the wire format
	Name() string

	// Validate checks the command on its own, without looking at state
	Validate() error

	// Apply computes the next state or reports why the edit is impossible
	Apply(s diagram.Snapshot) (diagram.Snapshot, error)
}

// Command names as used on the wire.
const (
	CommandAddNode    = "add_node"
	CommandPlaceNode  = "place_node"
	CommandMoveNode   = "move_node"
	CommandRenameNode = "rename_node"
	CommandUpdateNode = "update_node"
	CommandDeleteNode = "delete_node"
	CommandConnect    = "connect"
	CommandDisconnect = "disconnect"
	CommandSetTitle   = "set_title"
)

// AddNode places a new node. An empty ID is filled in by the editor.
type AddNode struct {
	Node diagram.Node
}

func (c AddNode) Name() string { return CommandAddNode }

func (c AddNode) Validate() error {
	return c.Node.Validate()
}

func (c AddNode) Apply(s diagram.Snapshot) (diagram.Snapshot, error) {
	if s.NodeIndex(c.Node.ID) >= 0 {
		return s, fmt.Errorf("%w: %s", diagram.ErrDuplicateNode, c.Node.ID)
	}
	s.Nodes = append(s.Nodes, c.Node)
	return s, nil
}

// PlaceNode adds a palette node named after its category, such as "Sink 3".
// An empty ID is filled in by the editor.
type PlaceNode struct {
	ID       string
	Category diagram.Category
	Position diagram.Position
}

func (c PlaceNode) Name() string { return CommandPlaceNode }

func (c PlaceNode) Validate() error {
	if c.ID == "" {
		return diagram.ErrInvalidNodeID
	}
	if !c.Category.Valid() {
		return diagram.ErrInvalidNodeCategory
	}
	return nil
}

func (c PlaceNode) Apply(s diagram.Snapshot) (diagram.Snapshot, error) {
	label := fmt.Sprintf("%s %d", c.Category.DisplayName(), s.CountCategory(c.Category)+1)
	return AddNode{Node: diagram.Node{
		ID:       c.ID,
		Label:    label,
		Category: c.Category,
		Position: c.Position,
	}}.Apply(s)
}

// MoveNode sets a node's canvas position.
type MoveNode struct {
	NodeID   string
	Position diagram.Position
}

func (c MoveNode) Name() string { return CommandMoveNode }

func (c MoveNode) Validate() error {
	if c.NodeID == "" {
		return diagram.ErrInvalidNodeID
	}
	return nil
}

func (c MoveNode) Apply(s diagram.Snapshot) (diagram.Snapshot, error) {
	i, err := requireNode(s, c.NodeID)
	if err != nil {
		return s, err
	}
	s.Nodes[i].Position = c.Position
	return s, nil
}

// RenameNode changes a node's label. Surrounding whitespace is trimmed.
type RenameNode struct {
	NodeID string
	Label  string
}

func (c RenameNode) Name() string { return CommandRenameNode }

func (c RenameNode) Validate() error {
	if c.NodeID == "" {
		return diagram.ErrInvalidNodeID
	}
	_, err := normalizeLabel(c.Label)
	return err
}

func (c RenameNode) Apply(s diagram.Snapshot) (diagram.Snapshot, error) {
	i, err := requireNode(s, c.NodeID)
	if err != nil {
		return s, err
	}
	label, err := normalizeLabel(c.Label)
	if err != nil {
		return s, err
	}
	s.Nodes[i].Label = label
	return s, nil
}

// UpdateNodeProperties changes the properties-panel fields of a node. Nil
// fields are left alone; a pointer to the empty value clears FlowType or Volume.
// Labels follow the same rules as RenameNode.
type UpdateNodeProperties struct {
	NodeID   string
	Label    *string
	Category *diagram.Category
	FlowType *diagram.FlowType
	Volume   *diagram.Volume
}

func (c UpdateNodeProperties) Name() string { return CommandUpdateNode }

func (c UpdateNodeProperties) Validate() error {
	if c.NodeID == "" {
		return diagram.ErrInvalidNodeID
	}
	if c.Label == nil && c.Category == nil && c.FlowType == nil && c.Volume == nil {
		return ErrNoChanges
	}
	if c.Label != nil {
		if _, err := normalizeLabel(*c.Label); err != nil {
			return err
		}
	}
	if c.Category != nil && !c.Category.Valid() {
		return diagram.ErrInvalidNodeCategory
	}
	if c.FlowType != nil && !c.FlowType.Valid() {
		return diagram.ErrInvalidFlowType
	}
	if c.Volume != nil && !c.Volume.Valid() {
		return diagram.ErrInvalidVolume
	}
	return nil
}

func (c UpdateNodeProperties) Apply(s diagram.Snapshot) (diagram.Snapshot, error) {
	i, err := requireNode(s, c.NodeID)
	if err != nil {
		return s, err
	}
	n := &s.Nodes[i]
	if c.Label != nil {
		label, err := normalizeLabel(*c.Label)
		if err != nil {
			return s, err
		}
		n.Label = label
	}
	if c.Category != nil {
		n.Category = *c.Category
	}
	if c.FlowType != nil {
		n.FlowType = *c.FlowType
	}
	if c.Volume != nil {
		n.Volume = *c.Volume
	}
	return s, nil
}

// DeleteNode removes a node and every connection touching it.
type DeleteNode struct {
	NodeID string
}

func (c DeleteNode) Name() string { return CommandDeleteNode }

func (c DeleteNode) Validate() error {
	if c.NodeID == "" {
		return diagram.ErrInvalidNodeID
	}
	return nil
}

func (c DeleteNode) Apply(s diagram.Snapshot) (diagram.Snapshot, error) {
	i, err := requireNode(s, c.NodeID)
	if err != nil {
		return s, err
	}
	s.Nodes = append(s.Nodes[:i], s.Nodes[i+1:]...)

	edges := s.Edges[:0]
	for _, e := range s.Edges {
		if !e.Touches(c.NodeID) {
			edges = append(edges, e)
		}
	}
	s.Edges = edges
	return s, nil
}

// Connect adds a directed connection between two existing nodes. Only one
// connection may join a pair of nodes, whichever its direction. Sources have
// no inputs and sinks have no outputs. An empty Edge.ID is filled in by the
// editor.
type Connect struct {
	Edge diagram.Edge
}

func (c Connect) Name() string { return CommandConnect }

func (c Connect) Validate() error {
	return c.Edge.Validate()
}

func (c Connect) Apply(s diagram.Snapshot) (diagram.Snapshot, error) {
	source, ok := s.NodeByID(c.Edge.Source)
	if !ok {
		return s, fmt.Errorf("%w: source %s", diagram.ErrNodeNotFound, c.Edge.Source)
	}
	target, ok := s.NodeByID(c.Edge.Target)
	if !ok {
		return s, fmt.Errorf("%w: target %s", diagram.ErrNodeNotFound, c.Edge.Target)
	}
	for _, e := range s.Edges {
		if e.ID == c.Edge.ID || e.Connects(c.Edge.Source, c.Edge.Target) {
			return s, fmt.Errorf("%w: %s -> %s", diagram.ErrDuplicateEdge, c.Edge.Source, c.Edge.Target)
		}
	}
	// uncategorised nodes come from documents and connect freely
	if source.Category != "" && !source.Category.EmitsOutput() {
		return s, fmt.Errorf("%w: %s node %s has no outputs", diagram.ErrInvalidDirection, source.Category, source.ID)
	}
	if target.Category != "" && !target.Category.AcceptsInput() {
		return s, fmt.Errorf("%w: %s node %s has no inputs", diagram.ErrInvalidDirection, target.Category, target.ID)
	}
	s.Edges = append(s.Edges, c.Edge)
	return s, nil
}

// Disconnect removes a connection by id.
type Disconnect struct {
	EdgeID string
}

func (c Disconnect) Name() string { return CommandDisconnect }

func (c Disconnect) Validate() error {
	if c.EdgeID == "" {
		return diagram.ErrInvalidEdgeID
	}
	return nil
}

func (c Disconnect) Apply(s diagram.Snapshot) (diagram.Snapshot, error) {
	i := s.EdgeIndex(c.EdgeID)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", diagram.ErrEdgeNotFound, c.EdgeID)
	}
	s.Edges = append(s.Edges[:i], s.Edges[i+1:]...)
	return s, nil
}

// SetTitle renames the diagram.
type SetTitle struct {
	Title string
}

func (c SetTitle) Name() string { return CommandSetTitle }

func (c SetTitle) Validate() error { return nil }

func (c SetTitle) Apply(s diagram.Snapshot) (diagram.Snapshot, error) {
	s.Title = c.Title
	return s, nil
}

func requireNode(s diagram.Snapshot, id string) (int, error) {
	i := s.NodeIndex(id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", diagram.ErrNodeNotFound, id)
	}
	return i, nil
}

// normalizeLabel trims a user-entered label and rejects it when nothing or
// too much is left.
func normalizeLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", ErrEmptyLabel
	}
	if err := diagram.ValidateLabel(label); err != nil {
		return "", err
	}
	return label, nil
}
