package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sentinelsec/responder/pkg/models"
	"github.com/sentinelsec/responder/pkg/persistence"
)

// Schedule manages workflow schedules. The scheduler daemon owns NextRunAt
// once a schedule exists; this service only creates, lists and deletes.
type Schedule struct {
	persistence persistence.Persistence
}

func NewSchedule(p persistence.Persistence) *Schedule {
	return &Schedule{persistence: p}
}

// Create validates the cron expression and workflow reference, computes the
// first run time and persists the schedule.
func (s *Schedule) Create(ctx context.Context, workflowID, cronExpression, timezone string, defaultContext map[string]any) (*models.Schedule, error) {
	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, persistence.ErrWorkflowNotFound
	}

	schedule, err := models.NewSchedule(uuid.New().String(), workflowID, cronExpression, timezone, defaultContext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCron, err)
	}

	if err := schedule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCron, err)
	}

	if err := s.persistence.ScheduleRepository().Save(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	return schedule, nil
}

// List returns all schedules.
func (s *Schedule) List(ctx context.Context) ([]*models.Schedule, error) {
	return s.persistence.ScheduleRepository().List(ctx)
}

// GetByID fetches a schedule by identifier.
func (s *Schedule) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.persistence.ScheduleRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if schedule == nil {
		return nil, persistence.ErrScheduleNotFound
	}

	return schedule, nil
}

// Delete removes a schedule from tick processing. Executions already in
// flight are not cancelled.
func (s *Schedule) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	return s.persistence.ScheduleRepository().Delete(ctx, id)
}
