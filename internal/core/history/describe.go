package history

import (
	"fmt"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
)

// InitialState describes a snapshot with no predecessor.
const InitialState = "Initial State"

// Describe labels the change from one snapshot to the next. Only the first
// matching rule fires: added nodes, removed nodes, added connections, removed
// connections, moved nodes, renamed nodes, otherwise "Modified diagram".
//
// Moves and renames are matched by node id, so reordering nodes without
// changing them is not reported as a move.
func Describe(from *diagram.Snapshot, to diagram.Snapshot) string {
	if from == nil {
		return InitialState
	}

	if d := len(to.Nodes) - len(from.Nodes); d > 0 {
		return "Added " + plural(d, "node")
	} else if d < 0 {
		return "Removed " + plural(-d, "node")
	}
	if d := len(to.Edges) - len(from.Edges); d > 0 {
		return "Added " + plural(d, "connection")
	} else if d < 0 {
		return "Removed " + plural(-d, "connection")
	}

	before := from.NodesByID()
	moved, renamed := 0, 0
	for _, n := range to.Nodes {
		prev, ok := before[n.ID]
		if !ok {
			continue
		}
		if prev.Position != n.Position {
			moved++
		}
		if prev.Label != n.Label {
			renamed++
		}
	}
	if moved > 0 {
		return "Moved " + plural(moved, "node")
	}
	if renamed > 0 {
		return "Renamed " + plural(renamed, "node")
	}
	return "Modified diagram"
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
