// Package models defines the core domain models for automated response workflows.
package models

import "time"

// TriggerType identifies the class of event a workflow listens for.
type TriggerType string

const (
	TriggerIncidentCreated     TriggerType = "incident-created"
	TriggerSimulationCompleted TriggerType = "simulation-completed"
	TriggerFindingDetected     TriggerType = "finding-detected"
	TriggerManual              TriggerType = "manual"
	TriggerScheduled           TriggerType = "scheduled"
)

// TriggerTypes lists every trigger type a workflow may declare.
var TriggerTypes = []TriggerType{
	TriggerIncidentCreated,
	TriggerSimulationCompleted,
	TriggerFindingDetected,
	TriggerManual,
	TriggerScheduled,
}

// Valid reports whether t is one of the declared trigger types.
func (t TriggerType) Valid() bool {
	for _, known := range TriggerTypes {
		if t == known {
			return true
		}
	}

	return false
}

// ConditionOperator is the comparison applied by a trigger condition.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not-equals"
	OperatorContains    ConditionOperator = "contains"
	OperatorGreaterThan ConditionOperator = "greater-than"
	OperatorLessThan    ConditionOperator = "less-than"
	OperatorInSet       ConditionOperator = "in-set"
)

// TriggerCondition is a single predicate over the trigger context.
// Field uses dotted notation to address nested context values.
type TriggerCondition struct {
	Field    string            `json:"field"    validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required,oneof=equals not-equals contains greater-than less-than in-set"`
	Value    any               `json:"value"`
}

// ActionInvocation is one configured step inside a workflow. Parameter
// values of the form "{{path.to.field}}" are resolved against the trigger
// context at execution time; everything else is a literal.
type ActionInvocation struct {
	ActionType        string         `json:"action_type" validate:"required"`
	Parameters        map[string]any `json:"parameters"`
	ContinueOnFailure bool           `json:"continue_on_failure"`
}

// Workflow is a named, user-authored automation rule. All conditions in
// TriggerConditions are AND-ed; an empty list matches every event of the
// workflow's trigger type.
type Workflow struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"        validate:"required,min=3"`
	Description          string             `json:"description"`
	Enabled              bool               `json:"enabled"`
	Trigger              TriggerType        `json:"trigger"     validate:"required"`
	TriggerConditions    []TriggerCondition `json:"trigger_conditions"`
	Actions              []ActionInvocation `json:"actions"     validate:"required,min=1,dive"`
	NotifyOnSuccess      bool               `json:"notify_on_success"`
	NotifyOnFailure      bool               `json:"notify_on_failure"`
	NotificationChannels []string           `json:"notification_channels,omitempty"`
	CreatedBy            string             `json:"created_by"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}
