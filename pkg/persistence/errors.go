// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrExecutionNotFound indicates an execution was not found by the given identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrScheduleNotFound indicates a schedule was not found by the given identifier.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrTemplateNotFound indicates a template was not found by the given identifier.
	ErrTemplateNotFound = errors.New("template not found")
)

// StoreError wraps storage errors with the operation and entity involved.
type StoreError struct {
	Op       string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	Entity   string // Entity type (e.g., "workflow", "execution")
	EntityID string // Entity identifier if applicable
	Err      error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Entity, e.EntityID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a new storage error with context.
func NewStoreError(op, entity, entityID string, err error) *StoreError {
	return &StoreError{
		Op:       op,
		Entity:   entity,
		EntityID: entityID,
		Err:      err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsExecutionNotFound checks if an error indicates an execution was not found.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsScheduleNotFound checks if an error indicates a schedule was not found.
func IsScheduleNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound)
}

// IsTemplateNotFound checks if an error indicates a template was not found.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}
