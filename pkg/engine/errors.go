package engine

import "errors"

// Domain errors surfaced by engine operations. Validation errors reject the
// request synchronously and never leave a partially saved workflow behind.
var (
	ErrWorkflowNil      = errors.New("workflow cannot be nil")
	ErrNameRequired     = errors.New("workflow name is required")
	ErrActionsRequired  = errors.New("workflow must have at least one action")
	ErrInvalidTrigger   = errors.New("invalid trigger type")
	ErrInvalidActions   = errors.New("invalid action configuration")
	ErrInvalidCondition = errors.New("invalid trigger condition")

	// ErrAlreadyTerminal is returned when cancelling an execution that has
	// already reached a terminal state.
	ErrAlreadyTerminal = errors.New("execution is already in a terminal state")
)
