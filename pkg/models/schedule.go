package models

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned when schedule validation fails.
var ErrInvalidSchedule = errors.New("invalid schedule configuration")

// Schedule binds a workflow to a cron expression and a default trigger
// context. NextRunAt is precomputed so the scheduler can poll for due
// schedules without keeping per-schedule timers.
type Schedule struct {
	ID             string         `json:"id"              validate:"required"`
	WorkflowID     string         `json:"workflow_id"     validate:"required"`
	CronExpression string         `json:"cron_expression" validate:"required"`
	Timezone       string         `json:"timezone"`
	DefaultContext map[string]any `json:"default_context,omitempty"`
	Enabled        bool           `json:"enabled"`
	NextRunAt      time.Time      `json:"next_run_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewSchedule creates a schedule with its first NextRunAt computed from now.
func NewSchedule(id, workflowID, cronExpression, timezone string, defaultContext map[string]any) (*Schedule, error) {
	now := time.Now().UTC()
	schedule := &Schedule{
		ID:             id,
		WorkflowID:     workflowID,
		CronExpression: cronExpression,
		Timezone:       timezone,
		DefaultContext: defaultContext,
		Enabled:        true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := schedule.Advance(now); err != nil {
		return nil, err
	}

	return schedule, nil
}

// Advance recomputes NextRunAt to the next occurrence strictly after the
// reference time. Advancing from the current time after downtime yields a
// single catch-up fire rather than a replay of every missed occurrence.
func (s *Schedule) Advance(reference time.Time) error {
	spec, err := s.parse()
	if err != nil {
		return err
	}

	s.NextRunAt = spec.Next(reference.In(s.location()))
	s.UpdatedAt = time.Now().UTC()

	return nil
}

// IsDue reports whether this schedule should fire at the given time.
func (s *Schedule) IsDue(now time.Time) bool {
	return s.Enabled && !s.NextRunAt.After(now)
}

// Validate checks identifiers, the cron expression and the timezone.
func (s *Schedule) Validate() error {
	if s.ID == "" || s.WorkflowID == "" || s.CronExpression == "" {
		return ErrInvalidSchedule
	}

	if _, err := time.LoadLocation(s.Timezone); s.Timezone != "" && err != nil {
		return err
	}

	_, err := s.parse()

	return err
}

func (s *Schedule) parse() (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	return parser.Parse(s.CronExpression)
}

func (s *Schedule) location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}
