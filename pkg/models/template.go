package models

import "time"

// Template is a reusable workflow blueprint. Instantiating a template
// produces a concrete workflow; the template itself is never executed.
type Template struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"     validate:"required,min=3"`
	Description       string             `json:"description"`
	Category          string             `json:"category"`
	Trigger           TriggerType        `json:"trigger"  validate:"required"`
	DefaultConditions []TriggerCondition `json:"default_conditions"`
	DefaultActions    []ActionInvocation `json:"default_actions" validate:"required,min=1"`
	Public            bool               `json:"public"`
	UsageCount        int                `json:"usage_count"`
	CreatedBy         string             `json:"created_by"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// TemplateCustomization overrides template defaults at instantiation time.
// Nil slices fall back to the template's defaults; supplied slices replace
// them wholesale.
type TemplateCustomization struct {
	Description          *string            `json:"description,omitempty"`
	TriggerConditions    []TriggerCondition `json:"trigger_conditions,omitempty"`
	Actions              []ActionInvocation `json:"actions,omitempty"`
	NotifyOnSuccess      *bool              `json:"notify_on_success,omitempty"`
	NotifyOnFailure      *bool              `json:"notify_on_failure,omitempty"`
	NotificationChannels []string           `json:"notification_channels,omitempty"`
}

// Instantiate builds a workflow from the template merged with the given
// customization. The caller assigns identity and timestamps.
func (t *Template) Instantiate(name string, custom TemplateCustomization) *Workflow {
	workflow := &Workflow{
		Name:              name,
		Description:       t.Description,
		Enabled:           true,
		Trigger:           t.Trigger,
		TriggerConditions: append([]TriggerCondition(nil), t.DefaultConditions...),
		Actions:           append([]ActionInvocation(nil), t.DefaultActions...),
	}

	if custom.Description != nil {
		workflow.Description = *custom.Description
	}

	if custom.TriggerConditions != nil {
		workflow.TriggerConditions = custom.TriggerConditions
	}

	if custom.Actions != nil {
		workflow.Actions = custom.Actions
	}

	if custom.NotifyOnSuccess != nil {
		workflow.NotifyOnSuccess = *custom.NotifyOnSuccess
	}

	if custom.NotifyOnFailure != nil {
		workflow.NotifyOnFailure = *custom.NotifyOnFailure
	}

	if custom.NotificationChannels != nil {
		workflow.NotificationChannels = custom.NotificationChannels
	}

	return workflow
}
