package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTemplate() *Template {
	return &Template{
		ID:          "tpl-1",
		Name:        "Critical incident response",
		Description: "Escalate and contain critical incidents",
		Trigger:     TriggerIncidentCreated,
		DefaultConditions: []TriggerCondition{
			{Field: "severity", Operator: OperatorEquals, Value: "critical"},
		},
		DefaultActions: []ActionInvocation{
			{ActionType: "create-ticket", Parameters: map[string]any{"title": "{{incident.title}}"}},
		},
	}
}

func TestTemplate_Instantiate_Defaults(t *testing.T) {
	template := sampleTemplate()

	workflow := template.Instantiate("Prod escalation", TemplateCustomization{})

	assert.Equal(t, "Prod escalation", workflow.Name)
	assert.Equal(t, template.Description, workflow.Description)
	assert.Equal(t, template.Trigger, workflow.Trigger)
	assert.Equal(t, template.DefaultConditions, workflow.TriggerConditions)
	assert.Equal(t, template.DefaultActions, workflow.Actions)
	assert.True(t, workflow.Enabled)
	assert.Empty(t, workflow.ID, "identity is assigned by the caller")
}

func TestTemplate_Instantiate_CustomizationOverrides(t *testing.T) {
	template := sampleTemplate()

	description := "Custom description"
	notify := true
	custom := TemplateCustomization{
		Description: &description,
		TriggerConditions: []TriggerCondition{
			{Field: "severity", Operator: OperatorInSet, Value: []any{"high", "critical"}},
		},
		NotifyOnFailure:      &notify,
		NotificationChannels: []string{"soc-alerts"},
	}

	workflow := template.Instantiate("Custom", custom)

	assert.Equal(t, "Custom description", workflow.Description)
	assert.Len(t, workflow.TriggerConditions, 1)
	assert.Equal(t, OperatorInSet, workflow.TriggerConditions[0].Operator)
	assert.Equal(t, template.DefaultActions, workflow.Actions, "actions untouched when not customized")
	assert.True(t, workflow.NotifyOnFailure)
	assert.Equal(t, []string{"soc-alerts"}, workflow.NotificationChannels)
}

func TestTemplate_Instantiate_IndependentCopies(t *testing.T) {
	template := sampleTemplate()

	first := template.Instantiate("First", TemplateCustomization{})
	second := template.Instantiate("Second", TemplateCustomization{})

	first.TriggerConditions[0].Value = "low"

	assert.Equal(t, "critical", second.TriggerConditions[0].Value,
		"instantiations do not share condition storage")
	assert.Equal(t, "critical", template.DefaultConditions[0].Value,
		"the template itself is untouched")
}

func TestTriggerType_Valid(t *testing.T) {
	for _, trigger := range TriggerTypes {
		assert.True(t, trigger.Valid())
	}

	assert.False(t, TriggerType("webhook").Valid())
	assert.False(t, TriggerType("").Valid())
}

func TestExecutionStatus_Terminal(t *testing.T) {
	assert.False(t, ExecutionStatusPending.Terminal())
	assert.False(t, ExecutionStatusRunning.Terminal())
	assert.True(t, ExecutionStatusCompleted.Terminal())
	assert.True(t, ExecutionStatusFailed.Terminal())
	assert.True(t, ExecutionStatusCancelled.Terminal())
}
