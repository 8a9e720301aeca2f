// Package diagram provides the core diagram domain entities: nodes, edges and
// immutable snapshots of the editable state. It has no external dependencies.
package diagram

// DefaultTitle is the title of a fresh diagram.
const DefaultTitle = "Untitled Diagram"

// Snapshot captures the full editable state at one point in time. Values handed
// out by the history and the editor are clones; mutating them never changes
// recorded state.
type Snapshot struct {
	Nodes []Node `json:"nodes" yaml:"nodes" msgpack:"nodes"`
	Edges []Edge `json:"connections" yaml:"connections" msgpack:"connections"`
	Title string `json:"title" yaml:"title" msgpack:"title"`
}

// New returns an empty diagram with the default title.
func New() Snapshot {
	return Snapshot{Nodes: []Node{}, Edges: []Edge{}, Title: DefaultTitle}
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Title: s.Title}
	if s.Nodes != nil {
		out.Nodes = make([]Node, len(s.Nodes))
		copy(out.Nodes, s.Nodes)
	}
	if s.Edges != nil {
		out.Edges = make([]Edge, len(s.Edges))
		copy(out.Edges, s.Edges)
	}
	return out
}

// NodeIndex returns the position of the node with id, or -1.
func (s Snapshot) NodeIndex(id string) int {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// NodeByID looks up a node by id.
func (s Snapshot) NodeByID(id string) (Node, bool) {
	if i := s.NodeIndex(id); i >= 0 {
		return s.Nodes[i], true
	}
	return Node{}, false
}

// EdgeIndex returns the position of the edge with id, or -1.
func (s Snapshot) EdgeIndex(id string) int {
	for i := range s.Edges {
		if s.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// NodesByID indexes nodes by id. Later duplicates win.
func (s Snapshot) NodesByID() map[string]Node {
	m := make(map[string]Node, len(s.Nodes))
	for _, n := range s.Nodes {
		m[n.ID] = n
	}
	return m
}

// LabelOf resolves a node id to its label; missing ids resolve to "".
func (s Snapshot) LabelOf(id string) string {
	n, _ := s.NodeByID(id)
	return n.Label
}

// CountCategory counts nodes of category c.
func (s Snapshot) CountCategory(c Category) int {
	count := 0
	for _, n := range s.Nodes {
		if n.Category == c {
			count++
		}
	}
	return count
}
