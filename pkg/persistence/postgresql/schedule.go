package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sentinelsec/responder/pkg/models"
)

// ScheduleRepository handles schedule-related database operations.
type ScheduleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sql.DB, logger *slog.Logger) *ScheduleRepository {
	return &ScheduleRepository{db: db, logger: logger}
}

const scheduleColumns = `
	id
  , workflow_id
  , cron_expression
  , timezone
  , default_context
  , enabled
  , next_run_at
  , created_at
  , updated_at
`

// List returns all schedules ordered by next run time.
func (r *ScheduleRepository) List(ctx context.Context) ([]*models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules ORDER BY next_run_at ASC"

	return r.querySchedules(ctx, query)
}

// Due returns enabled schedules whose next run time is at or before now.
func (r *ScheduleRepository) Due(ctx context.Context, now time.Time) ([]*models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules WHERE enabled = true AND next_run_at <= $1 ORDER BY next_run_at ASC"

	return r.querySchedules(ctx, query, now)
}

// GetByID returns a schedule by identifier, or (nil, nil) when missing.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules WHERE id = $1"

	schedule, err := scanSchedule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan schedule: %w", err)
	}

	return schedule, nil
}

// Save upserts a schedule.
func (r *ScheduleRepository) Save(ctx context.Context, schedule *models.Schedule) error {
	contextJSON, err := json.Marshal(schedule.DefaultContext)
	if err != nil {
		return fmt.Errorf("failed to marshal default context: %w", err)
	}

	query := `
		INSERT INTO schedules (id, workflow_id, cron_expression, timezone,
			default_context, enabled, next_run_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			cron_expression = EXCLUDED.cron_expression,
			timezone = EXCLUDED.timezone,
			default_context = EXCLUDED.default_context,
			enabled = EXCLUDED.enabled,
			next_run_at = EXCLUDED.next_run_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		schedule.ID,
		schedule.WorkflowID,
		schedule.CronExpression,
		schedule.Timezone,
		contextJSON,
		schedule.Enabled,
		schedule.NextRunAt,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save schedule %s: %w", schedule.ID, err)
	}

	return nil
}

// Delete removes a schedule by identifier.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", id, err)
	}

	return nil
}

func (r *ScheduleRepository) querySchedules(ctx context.Context, query string, args ...any) ([]*models.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	schedules := make([]*models.Schedule, 0)

	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}

		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return schedules, nil
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var (
		schedule    models.Schedule
		contextJSON []byte
	)

	err := row.Scan(
		&schedule.ID,
		&schedule.WorkflowID,
		&schedule.CronExpression,
		&schedule.Timezone,
		&contextJSON,
		&schedule.Enabled,
		&schedule.NextRunAt,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &schedule.DefaultContext); err != nil {
			return nil, fmt.Errorf("failed to unmarshal default context: %w", err)
		}
	}

	return &schedule, nil
}
