package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelsec/responder/pkg/conditions"
	"github.com/sentinelsec/responder/pkg/eventbus"
	"github.com/sentinelsec/responder/pkg/events"
	"github.com/sentinelsec/responder/pkg/models"
	"github.com/sentinelsec/responder/pkg/persistence"
)

// TriggerWorkflows matches the event against every enabled workflow of the
// given trigger type and runs each match. Matched workflows execute
// concurrently with respect to one another; actions within one execution
// run strictly in declared order. An empty result is not an error.
func (e *Engine) TriggerWorkflows(ctx context.Context, trigger models.TriggerType, triggerContext map[string]any) ([]*models.Execution, error) {
	enabled := true
	filter := persistence.WorkflowFilter{Enabled: &enabled, Trigger: &trigger}

	workflows, err := e.persistence.WorkflowRepository().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	logger := e.logger.With("trigger", trigger)
	logger.Debug("Matching trigger event", "workflows_count", len(workflows))

	var matched []*models.Workflow

	for _, workflow := range workflows {
		ok, fired := conditions.Evaluate(workflow.TriggerConditions, triggerContext)
		if !ok {
			continue
		}

		logger.Debug("Workflow matched",
			"workflow_id", workflow.ID,
			"workflow_name", workflow.Name,
			"conditions_fired", len(fired))

		matched = append(matched, workflow)
	}

	executions := make([]*models.Execution, 0, len(matched))

	var wg sync.WaitGroup

	for _, workflow := range matched {
		execution, err := e.createExecution(ctx, workflow, triggerContext)
		if err != nil {
			logger.Error("Failed to create execution", "workflow_id", workflow.ID, "error", err)

			continue
		}

		executions = append(executions, execution)

		wg.Add(1)

		go func(wf *models.Workflow, exec *models.Execution) {
			defer wg.Done()
			e.runExecution(ctx, wf, exec)
		}(workflow, execution)
	}

	wg.Wait()

	logger.Info("Completed trigger dispatch", "matches", len(executions))

	return executions, nil
}

// TriggerWorkflow triggers a single workflow by identifier, evaluating its
// conditions against the supplied context. A disabled workflow or a
// condition miss yields an empty result, not an error.
func (e *Engine) TriggerWorkflow(ctx context.Context, workflowID string, triggerContext map[string]any) ([]*models.Execution, error) {
	workflow, err := e.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if !workflow.Enabled {
		return []*models.Execution{}, nil
	}

	if ok, _ := conditions.Evaluate(workflow.TriggerConditions, triggerContext); !ok {
		return []*models.Execution{}, nil
	}

	execution, err := e.createExecution(ctx, workflow, triggerContext)
	if err != nil {
		return nil, err
	}

	e.runExecution(ctx, workflow, execution)

	return []*models.Execution{execution}, nil
}

func (e *Engine) createExecution(ctx context.Context, workflow *models.Workflow, triggerContext map[string]any) (*models.Execution, error) {
	execution := &models.Execution{
		ID:             uuid.New().String(),
		WorkflowID:     workflow.ID,
		WorkflowName:   workflow.Name,
		Trigger:        workflow.Trigger,
		TriggerContext: triggerContext,
		ActionResults:  make([]models.ActionResult, 0, len(workflow.Actions)),
		Status:         models.ExecutionStatusPending,
		StartedAt:      time.Now().UTC(),
	}

	if err := e.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to create execution: %w", err)
	}

	return execution, nil
}

// runExecution drives one execution through its action sequence. Cancellation
// is cooperative: the stored status is consulted before each dispatch, so an
// in-flight action always finishes and has its result recorded before the
// cancellation takes effect.
func (e *Engine) runExecution(ctx context.Context, workflow *models.Workflow, execution *models.Execution) {
	logger := e.logger.With(
		"workflow_id", workflow.ID,
		"execution_id", execution.ID,
	)

	repo := e.persistence.ExecutionRepository()

	execution.Status = models.ExecutionStatusRunning
	if err := repo.Save(ctx, execution); err != nil {
		logger.Error("Failed to persist running status", "error", err)
	}

	e.publishEvent(ctx, execution, events.ExecutionStartedEvent)
	logger.Info("Started execution", "actions", len(workflow.Actions))

	for i, action := range workflow.Actions {
		if e.cancelRequested(ctx, execution.ID) {
			logger.Info("Execution cancelled, stopping dispatch", "completed_actions", i)
			e.finalize(ctx, workflow, execution, models.ExecutionStatusCancelled)

			return
		}

		result := e.executor.Execute(ctx, action, execution.TriggerContext)
		execution.ActionResults = append(execution.ActionResults, result)

		// Re-check before persisting: a cancellation that landed while the
		// action was in flight must not be clobbered by this save.
		if e.cancelRequested(ctx, execution.ID) {
			logger.Info("Execution cancelled during action", "completed_actions", i+1)
			e.finalize(ctx, workflow, execution, models.ExecutionStatusCancelled)

			return
		}

		if err := repo.Save(ctx, execution); err != nil {
			logger.Error("Failed to persist action result", "error", err)
		}

		if result.Status == models.ActionResultFailure && !action.ContinueOnFailure {
			logger.Warn("Action failed, skipping remaining actions",
				"action_type", action.ActionType,
				"error", result.Error)

			e.skipRemaining(execution, workflow.Actions[i+1:])
			e.finalize(ctx, workflow, execution, models.ExecutionStatusFailed)

			return
		}
	}

	status := models.ExecutionStatusCompleted

	for _, result := range execution.ActionResults {
		if result.Status == models.ActionResultFailure {
			// Failures tolerated via continue-on-failure still fail the run.
			status = models.ExecutionStatusFailed

			break
		}
	}

	e.finalize(ctx, workflow, execution, status)
}

func (e *Engine) skipRemaining(execution *models.Execution, remaining []models.ActionInvocation) {
	now := time.Now().UTC()

	for _, action := range remaining {
		execution.ActionResults = append(execution.ActionResults, models.ActionResult{
			ActionType:  action.ActionType,
			Status:      models.ActionResultSkipped,
			StartedAt:   now,
			CompletedAt: now,
		})
	}
}

// cancelRequested checks the stored execution for an operator cancellation.
func (e *Engine) cancelRequested(ctx context.Context, executionID string) bool {
	stored, err := e.persistence.ExecutionRepository().GetByID(ctx, executionID)
	if err != nil || stored == nil {
		return false
	}

	return stored.Status == models.ExecutionStatusCancelled
}

func (e *Engine) finalize(ctx context.Context, workflow *models.Workflow, execution *models.Execution, status models.ExecutionStatus) {
	now := time.Now().UTC()
	execution.Status = status
	execution.CompletedAt = &now

	e.dispatchNotifications(ctx, workflow, execution)

	if err := e.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		e.logger.Error("Failed to persist final status",
			"execution_id", execution.ID, "error", err)
	}

	switch status {
	case models.ExecutionStatusCompleted:
		e.publishEvent(ctx, execution, events.ExecutionCompletedEvent)
	case models.ExecutionStatusFailed:
		e.publishEvent(ctx, execution, events.ExecutionFailedEvent)
	case models.ExecutionStatusCancelled:
		e.publishEvent(ctx, execution, events.ExecutionCancelledEvent)
	}

	e.logger.Info("Finished execution",
		"execution_id", execution.ID,
		"status", status,
		"duration", execution.Duration())
}

// dispatchNotifications is best-effort: a channel failure is recorded on the
// execution but never flips its final status.
func (e *Engine) dispatchNotifications(ctx context.Context, workflow *models.Workflow, execution *models.Execution) {
	notify := (execution.Status == models.ExecutionStatusCompleted && workflow.NotifyOnSuccess) ||
		(execution.Status == models.ExecutionStatusFailed && workflow.NotifyOnFailure)

	if !notify || e.notifier == nil {
		return
	}

	message := map[string]any{
		"workflow_id":   workflow.ID,
		"workflow_name": workflow.Name,
		"execution_id":  execution.ID,
		"status":        string(execution.Status),
	}

	for _, channel := range workflow.NotificationChannels {
		if err := e.notifier.Send(ctx, channel, message); err != nil {
			e.logger.Warn("Notification dispatch failed",
				"execution_id", execution.ID,
				"channel", channel,
				"error", err)

			execution.NotificationError = fmt.Sprintf("channel %s: %v", channel, err)
		}
	}
}

// CancelExecution marks an execution cancelled. Permitted only while the
// execution is pending or running; the runner consults the stored status
// before dispatching the next action.
func (e *Engine) CancelExecution(ctx context.Context, id string) (*models.Execution, error) {
	repo := e.persistence.ExecutionRepository()

	execution, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if execution == nil {
		return nil, persistence.ErrExecutionNotFound
	}

	if execution.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyTerminal, execution.Status)
	}

	execution.Status = models.ExecutionStatusCancelled

	if err := repo.Save(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to persist cancellation: %w", err)
	}

	e.logger.Info("Cancellation requested", "execution_id", id)

	return execution, nil
}

// GetExecution fetches an execution by identifier.
func (e *Engine) GetExecution(ctx context.Context, id string) (*models.Execution, error) {
	execution, err := e.persistence.ExecutionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if execution == nil {
		return nil, persistence.ErrExecutionNotFound
	}

	return execution, nil
}

// WorkflowExecutions returns the most recent executions for a workflow,
// newest first.
func (e *Engine) WorkflowExecutions(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	return e.persistence.ExecutionRepository().ListByWorkflow(ctx, workflowID, limit)
}

func (e *Engine) publishEvent(ctx context.Context, execution *models.Execution, eventType events.EventType) {
	if e.eventBus == nil {
		return
	}

	base := events.BaseEvent{
		ID:          e.eventBus.GenerateID(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		WorkflowID:  execution.WorkflowID,
		ExecutionID: execution.ID,
	}

	var event eventbus.Event

	switch eventType {
	case events.ExecutionStartedEvent:
		event = events.ExecutionStarted{BaseEvent: base, Trigger: execution.Trigger}
	case events.ExecutionCompletedEvent:
		event = events.ExecutionCompleted{BaseEvent: base, Duration: execution.Duration()}
	case events.ExecutionFailedEvent:
		event = events.ExecutionFailed{BaseEvent: base, Duration: execution.Duration(), Error: lastError(execution)}
	case events.ExecutionCancelledEvent:
		event = events.ExecutionCancelled{BaseEvent: base, Duration: execution.Duration()}
	default:
		return
	}

	if err := e.eventBus.Publish(ctx, execution.WorkflowID, event); err != nil {
		e.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}

func lastError(execution *models.Execution) string {
	for i := len(execution.ActionResults) - 1; i >= 0; i-- {
		if execution.ActionResults[i].Status == models.ActionResultFailure {
			return execution.ActionResults[i].Error
		}
	}

	return ""
}
