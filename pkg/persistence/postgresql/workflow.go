package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/sentinelsec/responder/pkg/models"
	"github.com/sentinelsec/responder/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
	id
  , name
  , description
  , enabled
  , trigger
  , trigger_conditions
  , actions
  , notify_on_success
  , notify_on_failure
  , notification_channels
  , created_by
  , created_at
  , updated_at
`

// List returns workflows matching the filter, newest first.
func (r *WorkflowRepository) List(ctx context.Context, filter persistence.WorkflowFilter) ([]*models.Workflow, error) {
	query := "SELECT " + workflowColumns + " FROM workflows WHERE 1=1"
	args := make([]any, 0, 2)

	if filter.Enabled != nil {
		args = append(args, *filter.Enabled)
		query += fmt.Sprintf(" AND enabled = $%d", len(args))
	}

	if filter.Trigger != nil {
		args = append(args, string(*filter.Trigger))
		query += fmt.Sprintf(" AND trigger = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// GetByID returns a workflow by identifier, or (nil, nil) when missing.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := "SELECT " + workflowColumns + " FROM workflows WHERE id = $1"

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// Save upserts a workflow.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	conditionsJSON, err := json.Marshal(workflow.TriggerConditions)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger conditions: %w", err)
	}

	actionsJSON, err := json.Marshal(workflow.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	channelsJSON, err := json.Marshal(workflow.NotificationChannels)
	if err != nil {
		return fmt.Errorf("failed to marshal notification channels: %w", err)
	}

	query := `
		INSERT INTO workflows (id, name, description, enabled, trigger,
			trigger_conditions, actions, notify_on_success, notify_on_failure,
			notification_channels, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			enabled = EXCLUDED.enabled,
			trigger = EXCLUDED.trigger,
			trigger_conditions = EXCLUDED.trigger_conditions,
			actions = EXCLUDED.actions,
			notify_on_success = EXCLUDED.notify_on_success,
			notify_on_failure = EXCLUDED.notify_on_failure,
			notification_channels = EXCLUDED.notification_channels,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		workflow.Enabled,
		string(workflow.Trigger),
		conditionsJSON,
		actionsJSON,
		workflow.NotifyOnSuccess,
		workflow.NotifyOnFailure,
		channelsJSON,
		workflow.CreatedBy,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// Delete removes a workflow by identifier.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("failed to delete workflow %s (%s): %w", id, pqErr.Code.Name(), err)
		}

		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow       models.Workflow
		trigger        string
		conditionsJSON []byte
		actionsJSON    []byte
		channelsJSON   []byte
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&workflow.Enabled,
		&trigger,
		&conditionsJSON,
		&actionsJSON,
		&workflow.NotifyOnSuccess,
		&workflow.NotifyOnFailure,
		&channelsJSON,
		&workflow.CreatedBy,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.Trigger = models.TriggerType(trigger)

	if len(conditionsJSON) > 0 {
		if err := json.Unmarshal(conditionsJSON, &workflow.TriggerConditions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger conditions: %w", err)
		}
	}

	if len(actionsJSON) > 0 {
		if err := json.Unmarshal(actionsJSON, &workflow.Actions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
		}
	}

	if len(channelsJSON) > 0 {
		if err := json.Unmarshal(channelsJSON, &workflow.NotificationChannels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification channels: %w", err)
		}
	}

	return &workflow, nil
}
