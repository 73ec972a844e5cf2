// Package engine implements the workflow orchestrator: it owns workflow
// definitions, matches trigger events against enabled workflows, sequences
// actions through the executor and maintains execution records.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelsec/responder/pkg/eventbus"
	"github.com/sentinelsec/responder/pkg/executor"
	"github.com/sentinelsec/responder/pkg/integrations"
	"github.com/sentinelsec/responder/pkg/models"
	"github.com/sentinelsec/responder/pkg/persistence"
	"github.com/sentinelsec/responder/pkg/registry"
)

type Engine struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	executor    *executor.Executor
	notifier    integrations.Notifier
	eventBus    eventbus.EventBus
	logger      *slog.Logger

	// updateLocks serializes updates per workflow identifier so concurrent
	// partial updates cannot interleave field merges.
	updateLocks sync.Map
}

func New(
	p persistence.Persistence,
	reg *registry.Registry,
	exec *executor.Executor,
	notifier integrations.Notifier,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		persistence: p,
		registry:    reg,
		executor:    exec,
		notifier:    notifier,
		eventBus:    eventBus,
		logger:      logger.With("module", "workflow_engine"),
	}
}

// UpdateWorkflowPatch carries a partial workflow update. Nil fields are left
// untouched; supplied fields replace the stored value wholesale.
type UpdateWorkflowPatch struct {
	Name                 *string                    `json:"name,omitempty" validate:"omitempty,min=3"`
	Description          *string                    `json:"description,omitempty"`
	Enabled              *bool                      `json:"enabled,omitempty"`
	Trigger              *models.TriggerType        `json:"trigger,omitempty"`
	TriggerConditions    *[]models.TriggerCondition `json:"trigger_conditions,omitempty"`
	Actions              *[]models.ActionInvocation `json:"actions,omitempty"`
	NotifyOnSuccess      *bool                      `json:"notify_on_success,omitempty"`
	NotifyOnFailure      *bool                      `json:"notify_on_failure,omitempty"`
	NotificationChannels *[]string                  `json:"notification_channels,omitempty"`
}

// CreateWorkflow validates the definition against the action library, assigns
// identity and timestamps, and persists it. Validation failures never leave
// a partially saved workflow.
func (e *Engine) CreateWorkflow(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if err := e.validateWorkflow(workflow); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workflow.ID = uuid.New().String()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if err := e.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	e.logger.Info("Created workflow", "workflow_id", workflow.ID, "trigger", workflow.Trigger)

	return workflow, nil
}

// UpdateWorkflow merges the supplied fields into the stored workflow under
// per-workflow serialization. Disabling a workflow takes effect for new
// trigger events immediately; in-flight executions run to completion.
func (e *Engine) UpdateWorkflow(ctx context.Context, id string, patch UpdateWorkflowPatch) (*models.Workflow, error) {
	lock := e.workflowLock(id)
	lock.Lock()
	defer lock.Unlock()

	repo := e.persistence.WorkflowRepository()

	workflow, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, persistence.ErrWorkflowNotFound
	}

	applyPatch(workflow, patch)

	if err := e.validateWorkflow(workflow); err != nil {
		return nil, err
	}

	workflow.UpdatedAt = time.Now().UTC()

	if err := repo.Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return workflow, nil
}

// DeleteWorkflow removes a workflow definition. Past execution records are
// untouched; they carry their own snapshot of the workflow metadata.
func (e *Engine) DeleteWorkflow(ctx context.Context, id string) error {
	repo := e.persistence.WorkflowRepository()

	workflow, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if workflow == nil {
		return persistence.ErrWorkflowNotFound
	}

	return repo.Delete(ctx, id)
}

// GetWorkflow fetches a workflow by identifier.
func (e *Engine) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, persistence.ErrWorkflowNotFound
	}

	return workflow, nil
}

// ListWorkflows returns workflows matching the filter.
func (e *Engine) ListWorkflows(ctx context.Context, filter persistence.WorkflowFilter) ([]*models.Workflow, error) {
	return e.persistence.WorkflowRepository().List(ctx, filter)
}

func (e *Engine) validateWorkflow(workflow *models.Workflow) error {
	if workflow == nil {
		return ErrWorkflowNil
	}

	if workflow.Name == "" {
		return ErrNameRequired
	}

	if !workflow.Trigger.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTrigger, workflow.Trigger)
	}

	if len(workflow.Actions) == 0 {
		return ErrActionsRequired
	}

	for _, cond := range workflow.TriggerConditions {
		if cond.Field == "" {
			return fmt.Errorf("%w: field is required", ErrInvalidCondition)
		}

		switch cond.Operator {
		case models.OperatorEquals, models.OperatorNotEquals, models.OperatorContains,
			models.OperatorGreaterThan, models.OperatorLessThan, models.OperatorInSet:
		default:
			return fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, cond.Operator)
		}
	}

	for _, action := range workflow.Actions {
		if err := e.registry.ValidateInvocation(action); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidActions, err)
		}
	}

	return nil
}

func (e *Engine) workflowLock(id string) *sync.Mutex {
	lock, _ := e.updateLocks.LoadOrStore(id, &sync.Mutex{})

	return lock.(*sync.Mutex)
}

func applyPatch(workflow *models.Workflow, patch UpdateWorkflowPatch) {
	if patch.Name != nil {
		workflow.Name = *patch.Name
	}

	if patch.Description != nil {
		workflow.Description = *patch.Description
	}

	if patch.Enabled != nil {
		workflow.Enabled = *patch.Enabled
	}

	if patch.Trigger != nil {
		workflow.Trigger = *patch.Trigger
	}

	if patch.TriggerConditions != nil {
		workflow.TriggerConditions = *patch.TriggerConditions
	}

	if patch.Actions != nil {
		workflow.Actions = *patch.Actions
	}

	if patch.NotifyOnSuccess != nil {
		workflow.NotifyOnSuccess = *patch.NotifyOnSuccess
	}

	if patch.NotifyOnFailure != nil {
		workflow.NotifyOnFailure = *patch.NotifyOnFailure
	}

	if patch.NotificationChannels != nil {
		workflow.NotificationChannels = *patch.NotificationChannels
	}
}
