// Package web provides HTTP request and response types for the workflow API.
package web

import "github.com/sentinelsec/responder/pkg/models"

// CreateWorkflowRequest represents the request body for creating a workflow.
type CreateWorkflowRequest struct {
	Name                 string                    `json:"name"        validate:"required,min=3"`
	Description          string                    `json:"description"`
	Enabled              *bool                     `json:"enabled,omitempty"`
	Trigger              models.TriggerType        `json:"trigger"     validate:"required"`
	TriggerConditions    []models.TriggerCondition `json:"trigger_conditions"`
	Actions              []models.ActionInvocation `json:"actions"     validate:"required,min=1"`
	NotifyOnSuccess      bool                      `json:"notify_on_success"`
	NotifyOnFailure      bool                      `json:"notify_on_failure"`
	NotificationChannels []string                  `json:"notification_channels,omitempty"`
	CreatedBy            string                    `json:"created_by"`
}

// ToModel converts the request into a workflow. Enabled defaults to true
// when omitted.
func (r *CreateWorkflowRequest) ToModel() *models.Workflow {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}

	return &models.Workflow{
		Name:                 r.Name,
		Description:          r.Description,
		Enabled:              enabled,
		Trigger:              r.Trigger,
		TriggerConditions:    r.TriggerConditions,
		Actions:              r.Actions,
		NotifyOnSuccess:      r.NotifyOnSuccess,
		NotifyOnFailure:      r.NotifyOnFailure,
		NotificationChannels: r.NotificationChannels,
		CreatedBy:            r.CreatedBy,
	}
}

// TriggerRequest carries the trigger context for manual triggering and
// external event ingestion.
type TriggerRequest struct {
	Context map[string]any `json:"context"`
}

// CreateTemplateRequest represents the request body for creating a template.
type CreateTemplateRequest struct {
	Name              string                    `json:"name"     validate:"required,min=3"`
	Description       string                    `json:"description"`
	Category          string                    `json:"category"`
	Trigger           models.TriggerType        `json:"trigger"  validate:"required"`
	DefaultConditions []models.TriggerCondition `json:"default_conditions"`
	DefaultActions    []models.ActionInvocation `json:"default_actions" validate:"required,min=1"`
	Public            bool                      `json:"public"`
	CreatedBy         string                    `json:"created_by"`
}

// InstantiateTemplateRequest represents the request body for instantiating a
// template into a concrete workflow.
type InstantiateTemplateRequest struct {
	Name   string                       `json:"name" validate:"required,min=3"`
	Custom models.TemplateCustomization `json:"custom"`
}

// CreateScheduleRequest represents the request body for creating a schedule.
type CreateScheduleRequest struct {
	WorkflowID     string         `json:"workflow_id"     validate:"required"`
	CronExpression string         `json:"cron_expression" validate:"required"`
	Timezone       string         `json:"timezone"`
	DefaultContext map[string]any `json:"default_context,omitempty"`
}
