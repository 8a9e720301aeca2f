// Package diagram defines domain-specific errors
package diagram

import "errors"

// Domain errors - defined once, matched with errors.Is
var (
	// Node errors
	ErrInvalidNodeID       = errors.New("invalid node ID")
	ErrInvalidNodeCategory = errors.New("invalid node category")
	ErrInvalidFlowType     = errors.New("invalid flow type")
	ErrInvalidVolume       = errors.New("invalid volume")
	ErrLabelTooLong        = errors.New("node label too long")
	ErrNodeNotFound        = errors.New("node not found")
	ErrDuplicateNode       = errors.New("duplicate node ID")

	// Edge errors
	ErrInvalidEdgeID    = errors.New("invalid edge ID")
	ErrInvalidSource    = errors.New("invalid source node")
	ErrInvalidTarget    = errors.New("invalid target node")
	ErrSelfLoop         = errors.New("self-loops are not allowed")
	ErrEdgeNotFound     = errors.New("edge not found")
	ErrDuplicateEdge    = errors.New("duplicate edge")
	ErrInvalidDirection = errors.New("connection direction not allowed for node category")
)
