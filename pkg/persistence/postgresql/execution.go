package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sentinelsec/responder/pkg/models"
)

// ExecutionRepository handles execution-related database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

const executionColumns = `
	id
  , workflow_id
  , workflow_name
  , trigger
  , trigger_context
  , action_results
  , status
  , notification_error
  , started_at
  , completed_at
`

// Save upserts an execution record.
func (r *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	contextJSON, err := json.Marshal(execution.TriggerContext)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger context: %w", err)
	}

	resultsJSON, err := json.Marshal(execution.ActionResults)
	if err != nil {
		return fmt.Errorf("failed to marshal action results: %w", err)
	}

	query := `
		INSERT INTO executions (id, workflow_id, workflow_name, trigger,
			trigger_context, action_results, status, notification_error,
			started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			action_results = EXCLUDED.action_results,
			status = EXCLUDED.status,
			notification_error = EXCLUDED.notification_error,
			completed_at = EXCLUDED.completed_at
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.WorkflowName,
		string(execution.Trigger),
		contextJSON,
		resultsJSON,
		string(execution.Status),
		execution.NotificationError,
		execution.StartedAt,
		execution.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution %s: %w", execution.ID, err)
	}

	return nil
}

// GetByID returns an execution by identifier, or (nil, nil) when missing.
func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	query := "SELECT " + executionColumns + " FROM executions WHERE id = $1"

	execution, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	return execution, nil
}

// ListByWorkflow returns executions for a workflow, newest first. A limit of
// zero returns everything.
func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	query := "SELECT " + executionColumns + " FROM executions WHERE workflow_id = $1 ORDER BY started_at DESC"
	args := []any{workflowID}

	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.queryExecutions(ctx, query, args...)
}

// List returns all executions, newest first. A limit of zero returns
// everything.
func (r *ExecutionRepository) List(ctx context.Context, limit int) ([]*models.Execution, error) {
	query := "SELECT " + executionColumns + " FROM executions ORDER BY started_at DESC"
	args := make([]any, 0, 1)

	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.queryExecutions(ctx, query, args...)
}

func (r *ExecutionRepository) queryExecutions(ctx context.Context, query string, args ...any) ([]*models.Execution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

func scanExecution(row rowScanner) (*models.Execution, error) {
	var (
		execution   models.Execution
		trigger     string
		status      string
		contextJSON []byte
		resultsJSON []byte
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.WorkflowName,
		&trigger,
		&contextJSON,
		&resultsJSON,
		&status,
		&execution.NotificationError,
		&execution.StartedAt,
		&execution.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	execution.Trigger = models.TriggerType(trigger)
	execution.Status = models.ExecutionStatus(status)

	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &execution.TriggerContext); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger context: %w", err)
		}
	}

	if len(resultsJSON) > 0 {
		if err := json.Unmarshal(resultsJSON, &execution.ActionResults); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action results: %w", err)
		}
	}

	return &execution, nil
}
