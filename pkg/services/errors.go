// Package services provides the administrative operations consumed by the
// HTTP surface, together with the domain error taxonomy.
package services

import (
	"errors"
	"fmt"

	"github.com/sentinelsec/responder/pkg/engine"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidCron      = errors.New("invalid cron expression")
	ErrNameRequired     = errors.New("name is required")
	ErrActionsRequired  = engine.ErrActionsRequired
	ErrInvalidTrigger   = engine.ErrInvalidTrigger
	ErrInvalidActions   = engine.ErrInvalidActions
	ErrInvalidCondition = engine.ErrInvalidCondition
	ErrWorkflowNil      = engine.ErrWorkflowNil

	// Conflict errors (409 Conflict).
	ErrAlreadyTerminal = engine.ErrAlreadyTerminal
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidCron) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, engine.ErrActionsRequired) ||
		errors.Is(err, engine.ErrInvalidTrigger) ||
		errors.Is(err, engine.ErrInvalidActions) ||
		errors.Is(err, engine.ErrInvalidCondition) ||
		errors.Is(err, engine.ErrWorkflowNil) ||
		errors.Is(err, engine.ErrNameRequired)
}

// IsAlreadyTerminal checks if an error is an already-terminal conflict that should return HTTP 409.
func IsAlreadyTerminal(err error) bool {
	return errors.Is(err, engine.ErrAlreadyTerminal)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
