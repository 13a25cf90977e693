package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/domain/discovery"
	"github.com/rpggio/folio/internal/domain/reconcile"
	"github.com/rpggio/folio/internal/domain/retention"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, activity.ErrActivityNotFound):
		return &APIError{Code: "ACTIVITY_NOT_FOUND", Message: err.Error(), RecoveryHint: "Check the activity id"}
	case errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, reconcile.ErrInvalidActivity):
		return &APIError{Code: "INVALID_ACTIVITY", Message: err.Error(), RecoveryHint: "Fix the entry and resend the whole set"}
	case errors.Is(err, discovery.ErrInvalidPage):
		return &APIError{Code: "INVALID_PAGE", Message: err.Error(), RecoveryHint: "Page numbers start at 0"}
	case errors.Is(err, retention.ErrWorkerClosed):
		return &APIError{Code: "SHUTTING_DOWN", Message: err.Error()}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
