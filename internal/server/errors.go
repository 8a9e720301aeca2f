package server

import (
	"context"
	"errors"
	"net/http"

	sessionrepo "github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository/session"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/dto"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/editor"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
	"github.com/ThatOrJohn/flowturi-designer/pkg/validation"
)

// ErrorResponse is the body of every non-validation error
type ErrorResponse struct {
	Error string `json:"error"`
}

var badRequest = []error{
	dto.ErrMissingField,
	editor.ErrNilCommand,
	editor.ErrEmptyLabel,
	editor.ErrNoChanges,
	editor.ErrOffsetOutOfRange,
	editor.ErrUnknownCommand,
	diagram.ErrInvalidNodeID,
	diagram.ErrInvalidNodeCategory,
	diagram.ErrInvalidFlowType,
	diagram.ErrInvalidVolume,
	diagram.ErrLabelTooLong,
	diagram.ErrInvalidEdgeID,
	diagram.ErrInvalidSource,
	diagram.ErrInvalidTarget,
	diagram.ErrSelfLoop,
	diagram.ErrInvalidDirection,
	simulation.ErrInvalidConfiguration,
}

var notFound = []error{
	sessionrepo.ErrSessionNotFound,
	diagram.ErrNodeNotFound,
	diagram.ErrEdgeNotFound,
}

var conflict = []error{
	diagram.ErrDuplicateEdge,
	diagram.ErrDuplicateNode,
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var ve validation.ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	if isAny(err, notFound) {
		return http.StatusNotFound
	}
	if isAny(err, conflict) {
		return http.StatusConflict
	}
	if isAny(err, badRequest) {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, sessionrepo.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
