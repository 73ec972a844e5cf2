package models

import "time"

// ExecutionStatus is the lifecycle state of a workflow execution.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// ActionResultStatus is the outcome of a single action invocation.
type ActionResultStatus string

const (
	ActionResultSuccess ActionResultStatus = "success"
	ActionResultFailure ActionResultStatus = "failure"
	ActionResultSkipped ActionResultStatus = "skipped"
)

// ActionResult records the outcome of one action within an execution.
type ActionResult struct {
	ActionType  string             `json:"action_type"`
	Status      ActionResultStatus `json:"status"`
	Output      map[string]any     `json:"output,omitempty"`
	Error       string             `json:"error,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at"`
}

// Execution is one run of one workflow against one trigger event.
// WorkflowName and Trigger are denormalized snapshots taken at run time so
// the record survives workflow deletion intact.
type Execution struct {
	ID                string          `json:"id"`
	WorkflowID        string          `json:"workflow_id"`
	WorkflowName      string          `json:"workflow_name"`
	Trigger           TriggerType     `json:"trigger"`
	TriggerContext    map[string]any  `json:"trigger_context,omitempty"`
	ActionResults     []ActionResult  `json:"action_results"`
	Status            ExecutionStatus `json:"status"`
	NotificationError string          `json:"notification_error,omitempty"`
	StartedAt         time.Time       `json:"started_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}

// Duration returns the wall-clock run time, or zero while still in flight.
func (e *Execution) Duration() time.Duration {
	if e.CompletedAt == nil {
		return 0
	}

	return e.CompletedAt.Sub(e.StartedAt)
}
