// Package diagram provides edge definitions
package diagram

// Edge is a directed connection between two nodes
type Edge struct {
	ID     string `json:"id" yaml:"id" msgpack:"id"`
	Source string `json:"source" yaml:"source" msgpack:"source"` // Source node ID
	Target string `json:"target" yaml:"target" msgpack:"target"` // Target node ID
}

// Validate ensures edge integrity. Endpoint existence is the caller's concern.
func (e *Edge) Validate() error {
	if e.ID == "" {
		return ErrInvalidEdgeID
	}
	if e.Source == "" {
		return ErrInvalidSource
	}
	if e.Target == "" {
		return ErrInvalidTarget
	}
	if e.Source == e.Target {
		return ErrSelfLoop
	}
	return nil
}

// Connects reports whether e joins a and b in either direction.
func (e *Edge) Connects(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// Touches reports whether nodeID is either endpoint of e.
func (e *Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}
