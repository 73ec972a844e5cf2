package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsec/responder/pkg/executor"
	"github.com/sentinelsec/responder/pkg/integrations"
	"github.com/sentinelsec/responder/pkg/models"
	"github.com/sentinelsec/responder/pkg/persistence"
	"github.com/sentinelsec/responder/pkg/persistence/file"
	"github.com/sentinelsec/responder/pkg/registry"
)

type testHarness struct {
	engine    *Engine
	store     persistence.Persistence
	siem      *integrations.FakeSIEM
	ticketing *integrations.FakeTicketing
	notifier  *integrations.FakeNotifier
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := file.NewPersistence(t.TempDir())
	reg := registry.NewRegistry(logger)
	set, siem, ticketing, notifier := integrations.NewFakeSet()
	exec := executor.NewExecutor(reg, set, logger)

	return &testHarness{
		engine:    New(store, reg, exec, set.Notifier, nil, logger),
		store:     store,
		siem:      siem,
		ticketing: ticketing,
		notifier:  notifier,
	}
}

func validWorkflow() *models.Workflow {
	return &models.Workflow{
		Name:    "Tag compromised assets",
		Enabled: true,
		Trigger: models.TriggerIncidentCreated,
		Actions: []models.ActionInvocation{
			{
				ActionType: registry.ActionTagAsset,
				Parameters: map[string]any{"asset": "{{incident.host}}", "tag": "compromised"},
			},
		},
	}
}

func TestCreateWorkflow(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	created, err := h.engine.CreateWorkflow(ctx, validWorkflow())

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := h.engine.GetWorkflow(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)
}

func TestCreateWorkflow_ValidationErrors(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*models.Workflow)
		wantErr error
	}{
		{
			name:    "missing name",
			mutate:  func(w *models.Workflow) { w.Name = "" },
			wantErr: ErrNameRequired,
		},
		{
			name:    "unknown trigger",
			mutate:  func(w *models.Workflow) { w.Trigger = "webhook" },
			wantErr: ErrInvalidTrigger,
		},
		{
			name:    "no actions",
			mutate:  func(w *models.Workflow) { w.Actions = nil },
			wantErr: ErrActionsRequired,
		},
		{
			name: "unknown action type",
			mutate: func(w *models.Workflow) {
				w.Actions = []models.ActionInvocation{{ActionType: "no-such-action"}}
			},
			wantErr: ErrInvalidActions,
		},
		{
			name: "condition without field",
			mutate: func(w *models.Workflow) {
				w.TriggerConditions = []models.TriggerCondition{{Operator: models.OperatorEquals, Value: "x"}}
			},
			wantErr: ErrInvalidCondition,
		},
		{
			name: "condition with unknown operator",
			mutate: func(w *models.Workflow) {
				w.TriggerConditions = []models.TriggerCondition{{Field: "severity", Operator: "regex", Value: "x"}}
			},
			wantErr: ErrInvalidCondition,
		},
		{
			name: "action missing required parameter",
			mutate: func(w *models.Workflow) {
				w.Actions = []models.ActionInvocation{{ActionType: registry.ActionTagAsset, Parameters: map[string]any{"asset": "a"}}}
			},
			wantErr: ErrInvalidActions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workflow := validWorkflow()
			tt.mutate(workflow)

			_, err := h.engine.CreateWorkflow(ctx, workflow)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	workflows, err := h.engine.ListWorkflows(ctx, persistence.WorkflowFilter{})
	require.NoError(t, err)
	assert.Empty(t, workflows, "validation failures never persist a workflow")
}

func TestUpdateWorkflow_PartialPatch(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	created, err := h.engine.CreateWorkflow(ctx, validWorkflow())
	require.NoError(t, err)

	disabled := false
	description := "paused while tuning conditions"

	updated, err := h.engine.UpdateWorkflow(ctx, created.ID, UpdateWorkflowPatch{
		Enabled:     &disabled,
		Description: &description,
	})

	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, description, updated.Description)
	assert.Equal(t, created.Name, updated.Name, "unpatched fields are untouched")
}

func TestUpdateWorkflow_RevalidatesResult(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	created, err := h.engine.CreateWorkflow(ctx, validWorkflow())
	require.NoError(t, err)

	empty := []models.ActionInvocation{}

	_, err = h.engine.UpdateWorkflow(ctx, created.ID, UpdateWorkflowPatch{Actions: &empty})

	assert.ErrorIs(t, err, ErrActionsRequired)

	stored, err := h.engine.GetWorkflow(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Actions, 1, "rejected update leaves the stored workflow intact")
}

func TestUpdateWorkflow_NotFound(t *testing.T) {
	h := newTestHarness(t)

	name := "renamed"
	_, err := h.engine.UpdateWorkflow(context.Background(), "missing", UpdateWorkflowPatch{Name: &name})

	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestDeleteWorkflow_PreservesExecutions(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	created, err := h.engine.CreateWorkflow(ctx, validWorkflow())
	require.NoError(t, err)

	executions, err := h.engine.TriggerWorkflow(ctx, created.ID, map[string]any{
		"incident": map[string]any{"host": "srv-01"},
	})
	require.NoError(t, err)
	require.Len(t, executions, 1)

	require.NoError(t, h.engine.DeleteWorkflow(ctx, created.ID))

	_, err = h.engine.GetWorkflow(ctx, created.ID)
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	record, err := h.engine.GetExecution(ctx, executions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, record.WorkflowName, "execution keeps its workflow snapshot")
}

func TestListWorkflows_Filters(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	first := validWorkflow()
	_, err := h.engine.CreateWorkflow(ctx, first)
	require.NoError(t, err)

	second := validWorkflow()
	second.Name = "Finding triage"
	second.Trigger = models.TriggerFindingDetected
	second.Enabled = false
	_, err = h.engine.CreateWorkflow(ctx, second)
	require.NoError(t, err)

	enabled := true
	byEnabled, err := h.engine.ListWorkflows(ctx, persistence.WorkflowFilter{Enabled: &enabled})
	require.NoError(t, err)
	require.Len(t, byEnabled, 1)
	assert.Equal(t, first.Name, byEnabled[0].Name)

	trigger := models.TriggerFindingDetected
	byTrigger, err := h.engine.ListWorkflows(ctx, persistence.WorkflowFilter{Trigger: &trigger})
	require.NoError(t, err)
	require.Len(t, byTrigger, 1)
	assert.Equal(t, second.Name, byTrigger[0].Name)
}
