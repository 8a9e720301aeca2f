package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
)

func TestValidateSnapshot(t *testing.T) {
	t.Run("valid diagram", func(t *testing.T) {
		s := diagram.Snapshot{
			Nodes: []diagram.Node{
				{ID: "n1", Label: "Kafka", Category: diagram.CategorySource},
				{ID: "n2", Label: "Warehouse", Category: diagram.CategorySink},
			},
			Edges: []diagram.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
		}
		assert.NoError(t, ValidateSnapshot(s))
	})

	t.Run("dangling references are not checked", func(t *testing.T) {
		s := diagram.Snapshot{
			Edges: []diagram.Edge{{ID: "e1", Source: "ghost", Target: "n2"}},
		}
		assert.NoError(t, ValidateSnapshot(s))
	})

	t.Run("collects every problem", func(t *testing.T) {
		s := diagram.Snapshot{
			Nodes: []diagram.Node{
				{ID: "n1", Label: "this label is far too long"},
				{ID: "n1", Label: "Copy"},
				{ID: "n3", Category: "database"},
			},
			Edges: []diagram.Edge{
				{ID: "e1", Source: "n1", Target: "n1"},
				{ID: "e2", Source: "n1", Target: "n3"},
				{ID: "e2", Source: "n3", Target: "n1"},
			},
		}

		var errs ValidationErrors
		require.ErrorAs(t, ValidateSnapshot(s), &errs)

		fields := make([]string, len(errs))
		for i, e := range errs {
			fields[i] = e.Field
		}
		assert.Equal(t, []string{"nodes[0]", "nodes[1].id", "nodes[2]", "connections[0]", "connections[2].id"}, fields)
		assert.Equal(t, diagram.ErrSelfLoop.Error(), errs[3].Message)
	})
}
