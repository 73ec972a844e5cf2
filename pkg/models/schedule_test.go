package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedule_ComputesFirstRun(t *testing.T) {
	schedule, err := NewSchedule("sched-1", "wf-1", "*/5 * * * *", "", nil)

	require.NoError(t, err)
	assert.True(t, schedule.Enabled)
	assert.False(t, schedule.NextRunAt.IsZero())
	assert.True(t, schedule.NextRunAt.After(time.Now().Add(-time.Minute)))
}

func TestNewSchedule_InvalidCron(t *testing.T) {
	_, err := NewSchedule("sched-1", "wf-1", "not a cron", "", nil)

	require.Error(t, err)
}

func TestSchedule_AdvanceSkipsMissedOccurrences(t *testing.T) {
	schedule, err := NewSchedule("sched-1", "wf-1", "0 * * * *", "", nil)
	require.NoError(t, err)

	// Simulate a long outage: the schedule was due hours ago.
	reference := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	require.NoError(t, schedule.Advance(reference))

	assert.Equal(t, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), schedule.NextRunAt,
		"advance lands on the single next occurrence, not a replay of missed ones")
}

func TestSchedule_AdvanceHonorsTimezone(t *testing.T) {
	schedule, err := NewSchedule("sched-1", "wf-1", "0 9 * * *", "America/New_York", nil)
	require.NoError(t, err)

	// 13:00 UTC in March (EDT) is 09:00 in New York; the next 09:00 local
	// fire is the following day.
	reference := time.Date(2026, 3, 12, 13, 30, 0, 0, time.UTC)

	require.NoError(t, schedule.Advance(reference))

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 13, 9, 0, 0, 0, loc).Unix(), schedule.NextRunAt.Unix())
}

func TestSchedule_IsDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	schedule := &Schedule{Enabled: true, NextRunAt: now.Add(-time.Minute)}
	assert.True(t, schedule.IsDue(now))

	schedule.NextRunAt = now
	assert.True(t, schedule.IsDue(now))

	schedule.NextRunAt = now.Add(time.Minute)
	assert.False(t, schedule.IsDue(now))

	schedule.Enabled = false
	schedule.NextRunAt = now.Add(-time.Hour)
	assert.False(t, schedule.IsDue(now), "disabled schedules are never due")
}

func TestSchedule_Validate(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		wantErr  bool
	}{
		{
			name:     "valid",
			schedule: Schedule{ID: "s", WorkflowID: "w", CronExpression: "*/10 * * * *"},
			wantErr:  false,
		},
		{
			name:     "missing workflow id",
			schedule: Schedule{ID: "s", CronExpression: "* * * * *"},
			wantErr:  true,
		},
		{
			name:     "bad cron",
			schedule: Schedule{ID: "s", WorkflowID: "w", CronExpression: "61 * * * *"},
			wantErr:  true,
		},
		{
			name:     "bad timezone",
			schedule: Schedule{ID: "s", WorkflowID: "w", CronExpression: "* * * * *", Timezone: "Mars/Olympus"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
