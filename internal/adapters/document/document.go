// Package document reads and writes diagram documents: a diagram, optional
// generator settings and an optional edit script, stored as YAML or JSON.
package document

import (
	"errors"
	"fmt"
	"os"

	"github.com/ThatOrJohn/flowturi-designer/internal/app/dto"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/editor"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
	"github.com/ThatOrJohn/flowturi-designer/pkg/serialization"
	"github.com/ThatOrJohn/flowturi-designer/pkg/validation"
)

// ErrInvalidDocument wraps every validation failure of a loaded document
var ErrInvalidDocument = errors.New("invalid diagram document")

// Document is the on-disk form of a diagram
type Document struct {
	Title       string               `json:"title" yaml:"title"`
	Nodes       []diagram.Node       `json:"nodes" yaml:"nodes"`
	Connections []diagram.Edge       `json:"connections" yaml:"connections"`
	Settings    *simulation.Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
	Script      []dto.CommandRequest `json:"script,omitempty" yaml:"script,omitempty"`
}

// FromSnapshot builds a document holding s and settings
func FromSnapshot(s diagram.Snapshot, settings *simulation.Settings) *Document {
	c := s.Clone()
	return &Document{
		Title:       c.Title,
		Nodes:       c.Nodes,
		Connections: c.Edges,
		Settings:    settings,
	}
}

// Snapshot returns the diagram part. A missing title becomes the default.
func (d *Document) Snapshot() diagram.Snapshot {
	s := diagram.Snapshot{Title: d.Title, Nodes: d.Nodes, Edges: d.Connections}
	if s.Title == "" {
		s.Title = diagram.DefaultTitle
	}
	if s.Nodes == nil {
		s.Nodes = []diagram.Node{}
	}
	if s.Edges == nil {
		s.Edges = []diagram.Edge{}
	}
	return s.Clone()
}

// SettingsOr returns the document's settings, or fallback when absent
func (d *Document) SettingsOr(fallback simulation.Settings) simulation.Settings {
	if d.Settings == nil {
		return fallback
	}
	return *d.Settings
}

// Commands converts the edit script in order
func (d *Document) Commands() ([]editor.Command, error) {
	cmds := make([]editor.Command, 0, len(d.Script))
	for i, req := range d.Script {
		cmd, err := req.ToCommand()
		if err != nil {
			return nil, fmt.Errorf("script[%d]: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Validate checks the diagram fields, the settings and every script entry.
// Connections to unknown nodes are allowed.
func (d *Document) Validate() error {
	var errs validation.ValidationErrors

	if err := validation.ValidateSnapshot(d.Snapshot()); err != nil {
		var ve validation.ValidationErrors
		if errors.As(err, &ve) {
			errs = append(errs, ve...)
		} else {
			return err
		}
	}

	if d.Settings != nil {
		if err := d.Settings.Validate(); err != nil {
			errs = append(errs, validation.ValidationError{Field: "settings", Value: *d.Settings, Message: err.Error()})
		}
	}

	for i := range d.Script {
		if err := validation.ValidateStruct(&d.Script[i]); err != nil {
			var ve validation.ValidationErrors
			if !errors.As(err, &ve) {
				return fmt.Errorf("script[%d]: %w", i, err)
			}
			for _, e := range ve {
				e.Field = fmt.Sprintf("script[%d].%s", i, e.Field)
				errs = append(errs, e)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, errs)
	}
	return nil
}

// Decode parses data with codec and validates the result
func Decode(codec serialization.Codec, data []byte) (*Document, error) {
	var d Document
	if err := codec.Decode(data, &d); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrInvalidDocument, codec.Name(), err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads the document at path, choosing the codec from its extension
func Load(path string) (*Document, error) {
	codec, err := serialization.CodecForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	d, err := Decode(codec, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Save writes d to path, choosing the codec from its extension
func Save(path string, d *Document) error {
	codec, err := serialization.CodecForPath(path)
	if err != nil {
		return err
	}
	data, err := codec.Encode(d)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
