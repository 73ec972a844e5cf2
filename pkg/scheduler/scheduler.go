// Package scheduler fires time-based trigger events for workflow schedules.
// It polls for due schedules on a fixed interval instead of keeping a timer
// per schedule, and advances each schedule's next run time from the current
// clock so downtime yields a single catch-up fire rather than a replay.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/sentinelsec/responder/pkg/models"
	"github.com/sentinelsec/responder/pkg/persistence"
)

const defaultPollInterval = 30 * time.Second

// Trigger is the slice of the engine the scheduler needs.
type Trigger interface {
	TriggerWorkflows(ctx context.Context, trigger models.TriggerType, triggerContext map[string]any) ([]*models.Execution, error)
}

type Scheduler struct {
	schedules persistence.ScheduleRepository
	engine    Trigger
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Scheduler)

// WithInterval overrides the polling cadence.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		s.interval = interval
	}
}

// WithClock injects the time source, used by tests to control due checks.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func New(schedules persistence.ScheduleRepository, engine Trigger, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		schedules: schedules,
		engine:    engine,
		interval:  defaultPollInterval,
		logger:    logger.With("module", "scheduler"),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start runs the polling loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting scheduler", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")

			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick processes every due schedule once. Failures are logged and retried on
// the next tick; the schedule's bookkeeping survives transient store
// outages because the advance is only persisted when it succeeds.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now().UTC()

	due, err := s.schedules.Due(ctx, now)
	if err != nil {
		s.logger.Error("Failed to load due schedules", "error", err)

		return
	}

	if len(due) > 0 {
		s.logger.Info("Processing due schedules", "count", len(due))
	}

	for _, schedule := range due {
		s.fire(ctx, schedule, now)
	}
}

// fire advances the schedule before dispatching so a concurrent tick cannot
// double-fire the same occurrence, then synthesizes the trigger event.
func (s *Scheduler) fire(ctx context.Context, schedule *models.Schedule, now time.Time) {
	logger := s.logger.With(
		"schedule_id", schedule.ID,
		"workflow_id", schedule.WorkflowID,
		"cron", schedule.CronExpression,
	)

	if err := schedule.Advance(now); err != nil {
		logger.Error("Failed to compute next run", "error", err)

		return
	}

	if err := s.schedules.Save(ctx, schedule); err != nil {
		logger.Error("Failed to persist schedule advance", "error", err)

		return
	}

	triggerContext := make(map[string]any, len(schedule.DefaultContext)+3)

	for key, value := range schedule.DefaultContext {
		triggerContext[key] = value
	}

	triggerContext["schedule_id"] = schedule.ID
	triggerContext["workflow_id"] = schedule.WorkflowID
	triggerContext["fired_at"] = now.Format(time.RFC3339)

	executions, err := s.engine.TriggerWorkflows(ctx, models.TriggerScheduled, triggerContext)
	if err != nil {
		logger.Error("Failed to trigger workflows", "error", err)

		return
	}

	logger.Info("Fired schedule",
		"executions", len(executions),
		"next_run_at", schedule.NextRunAt)
}
