package validation

import (
	"fmt"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
)

// ValidateSnapshot performs field-level checks on a diagram loaded from an
// external source, where the editor's command checks were bypassed. It
// reports duplicate ids but does not check that connections reference
// existing nodes.
func ValidateSnapshot(s diagram.Snapshot) error {
	var errs ValidationErrors

	seenNodes := make(map[string]struct{}, len(s.Nodes))
	for i := range s.Nodes {
		n := &s.Nodes[i]
		field := fmt.Sprintf("nodes[%d]", i)
		if err := n.Validate(); err != nil {
			errs = append(errs, ValidationError{Field: field, Value: n.ID, Message: err.Error()})
		}
		if _, dup := seenNodes[n.ID]; dup {
			errs = append(errs, ValidationError{Field: field + ".id", Value: n.ID, Message: diagram.ErrDuplicateNode.Error()})
		}
		seenNodes[n.ID] = struct{}{}
	}

	seenEdges := make(map[string]struct{}, len(s.Edges))
	for i := range s.Edges {
		e := &s.Edges[i]
		field := fmt.Sprintf("connections[%d]", i)
		if err := e.Validate(); err != nil {
			errs = append(errs, ValidationError{Field: field, Value: e.ID, Message: err.Error()})
		}
		if _, dup := seenEdges[e.ID]; dup {
			errs = append(errs, ValidationError{Field: field + ".id", Value: e.ID, Message: diagram.ErrDuplicateEdge.Error()})
		}
		seenEdges[e.ID] = struct{}{}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
