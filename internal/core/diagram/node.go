// Package diagram provides node definitions
package diagram

import "unicode/utf8"

// MaxLabelLength is the longest label the editor accepts for a node.
const MaxLabelLength = 20

// Category is the palette kind of a node.
type Category string

const (
	// CategorySource represents an input node
	CategorySource Category = "source"
	// CategoryIntermediate represents a processing node
	CategoryIntermediate Category = "intermediate"
	// CategorySink represents a terminal node
	CategorySink Category = "sink"
)

// Categories lists every valid category in palette order.
var Categories = []Category{CategorySource, CategoryIntermediate, CategorySink}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategorySource, CategoryIntermediate, CategorySink:
		return true
	}
	return false
}

// DisplayName is the palette label used when naming new nodes.
func (c Category) DisplayName() string {
	switch c {
	case CategorySource:
		return "Source"
	case CategoryIntermediate:
		return "Process"
	case CategorySink:
		return "Sink"
	}
	return "Node"
}

// AcceptsInput reports whether edges may terminate at nodes of this category.
func (c Category) AcceptsInput() bool {
	return c == CategoryIntermediate || c == CategorySink
}

// EmitsOutput reports whether edges may start at nodes of this category.
func (c Category) EmitsOutput() bool {
	return c == CategorySource || c == CategoryIntermediate
}

// FlowType describes how data moves through a node. The zero value means unset.
type FlowType string

const (
	FlowTypeBatch  FlowType = "batch"
	FlowTypeStream FlowType = "stream"
)

// Valid reports whether f is unset or a known flow type.
func (f FlowType) Valid() bool {
	return f == "" || f == FlowTypeBatch || f == FlowTypeStream
}

// Volume is the relative data volume of a node. The zero value means unset.
type Volume string

const (
	VolumeTiny   Volume = "tiny"
	VolumeSmall  Volume = "small"
	VolumeMedium Volume = "medium"
	VolumeLarge  Volume = "large"
	VolumeXLarge Volume = "x-large"
)

// Valid reports whether v is unset or a known volume.
func (v Volume) Valid() bool {
	switch v {
	case "", VolumeTiny, VolumeSmall, VolumeMedium, VolumeLarge, VolumeXLarge:
		return true
	}
	return false
}

// Position is a canvas coordinate. Only the UI interprets it.
type Position struct {
	X float64 `json:"x" yaml:"x" msgpack:"x"`
	Y float64 `json:"y" yaml:"y" msgpack:"y"`
}

// Node represents a vertex in the diagram
type Node struct {
	ID       string   `json:"id" yaml:"id" msgpack:"id"`
	Label    string   `json:"label" yaml:"label" msgpack:"label"`
	Category Category `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	Position Position `json:"position" yaml:"position" msgpack:"position"`
	FlowType FlowType `json:"flowType,omitempty" yaml:"flowType,omitempty" msgpack:"flowType,omitempty"`
	Volume   Volume   `json:"volume,omitempty" yaml:"volume,omitempty" msgpack:"volume,omitempty"`
}

// Validate checks the fields the editor controls. An empty category is
// accepted for nodes created outside the palette.
func (n *Node) Validate() error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if n.Category != "" && !n.Category.Valid() {
		return ErrInvalidNodeCategory
	}
	if !n.FlowType.Valid() {
		return ErrInvalidFlowType
	}
	if !n.Volume.Valid() {
		return ErrInvalidVolume
	}
	return ValidateLabel(n.Label)
}

// ValidateLabel enforces the editor's label length limit.
func ValidateLabel(label string) error {
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return ErrLabelTooLong
	}
	return nil
}
