package dto

import (
	"fmt"

	"github.com/ThatOrJohn/flowturi-designer/internal/app/editor"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
	"github.com/ThatOrJohn/flowturi-designer/pkg/validation"
)

// CommandRequest is the wire form of one editor command. Type selects the
// command; the remaining fields are read according to it.
type CommandRequest struct {
	Type     string            `json:"type" yaml:"type" validate:"required,oneof=add_node place_node move_node rename_node update_node delete_node connect disconnect set_title"`
	NodeID   string            `json:"node_id,omitempty" yaml:"node_id,omitempty" validate:"omitempty,node_id"`
	EdgeID   string            `json:"edge_id,omitempty" yaml:"edge_id,omitempty" validate:"omitempty,edge_id"`
	Source   string            `json:"source,omitempty" yaml:"source,omitempty" validate:"omitempty,node_id"`
	Target   string            `json:"target,omitempty" yaml:"target,omitempty" validate:"omitempty,node_id"`
	Label    *string           `json:"label,omitempty" yaml:"label,omitempty" validate:"omitempty,node_label"`
	Category *string           `json:"category,omitempty" yaml:"category,omitempty" validate:"omitempty,node_category"`
	FlowType *string           `json:"flow_type,omitempty" yaml:"flow_type,omitempty" validate:"omitempty,flow_type"`
	Volume   *string           `json:"volume,omitempty" yaml:"volume,omitempty" validate:"omitempty,volume"`
	Position *diagram.Position `json:"position,omitempty" yaml:"position,omitempty"`
	Title    *string           `json:"title,omitempty" yaml:"title,omitempty" validate:"omitempty,max=200"`
}

// Validate checks the fields each command type needs
func (r CommandRequest) Validate() error {
	var errs validation.ValidationErrors
	require := func(field string, ok bool) {
		if !ok {
			errs = append(errs, validation.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("is required for %s", r.Type),
			})
		}
	}

	switch r.Type {
	case editor.CommandAddNode:
		require("label", r.Label != nil)
	case editor.CommandPlaceNode:
		require("category", r.Category != nil && *r.Category != "")
	case editor.CommandMoveNode:
		require("node_id", r.NodeID != "")
		require("position", r.Position != nil)
	case editor.CommandRenameNode:
		require("node_id", r.NodeID != "")
		require("label", r.Label != nil)
	case editor.CommandUpdateNode:
		require("node_id", r.NodeID != "")
	case editor.CommandDeleteNode:
		require("node_id", r.NodeID != "")
	case editor.CommandConnect:
		require("source", r.Source != "")
		require("target", r.Target != "")
	case editor.CommandDisconnect:
		require("edge_id", r.EdgeID != "")
	case editor.CommandSetTitle:
		require("title", r.Title != nil)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToCommand converts the request into an editor command. Missing ids for new
// nodes and connections are left empty for the editor to fill in.
func (r CommandRequest) ToCommand() (editor.Command, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingField, err)
	}

	pos := diagram.Position{}
	if r.Position != nil {
		pos = *r.Position
	}

	switch r.Type {
	case editor.CommandAddNode:
		return editor.AddNode{Node: diagram.Node{
			ID:       r.NodeID,
			Label:    deref(r.Label),
			Category: diagram.Category(deref(r.Category)),
			Position: pos,
			FlowType: diagram.FlowType(deref(r.FlowType)),
			Volume:   diagram.Volume(deref(r.Volume)),
		}}, nil
	case editor.CommandPlaceNode:
		return editor.PlaceNode{ID: r.NodeID, Category: diagram.Category(*r.Category), Position: pos}, nil
	case editor.CommandMoveNode:
		return editor.MoveNode{NodeID: r.NodeID, Position: pos}, nil
	case editor.CommandRenameNode:
		return editor.RenameNode{NodeID: r.NodeID, Label: *r.Label}, nil
	case editor.CommandUpdateNode:
		cmd := editor.UpdateNodeProperties{NodeID: r.NodeID, Label: r.Label}
		if r.Category != nil {
			c := diagram.Category(*r.Category)
			cmd.Category = &c
		}
		if r.FlowType != nil {
			f := diagram.FlowType(*r.FlowType)
			cmd.FlowType = &f
		}
		if r.Volume != nil {
			v := diagram.Volume(*r.Volume)
			cmd.Volume = &v
		}
		return cmd, nil
	case editor.CommandDeleteNode:
		return editor.DeleteNode{NodeID: r.NodeID}, nil
	case editor.CommandConnect:
		return editor.Connect{Edge: diagram.Edge{ID: r.EdgeID, Source: r.Source, Target: r.Target}}, nil
	case editor.CommandDisconnect:
		return editor.Disconnect{EdgeID: r.EdgeID}, nil
	case editor.CommandSetTitle:
		return editor.SetTitle{Title: *r.Title}, nil
	default:
		return nil, fmt.Errorf("%w: %q", editor.ErrUnknownCommand, r.Type)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
