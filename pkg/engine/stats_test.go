package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsec/responder/pkg/models"
)

func seedExecution(t *testing.T, h *testHarness, workflowID string, status models.ExecutionStatus, startedAt time.Time, duration time.Duration) {
	t.Helper()

	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		Trigger:    models.TriggerIncidentCreated,
		Status:     status,
		StartedAt:  startedAt,
	}

	if status.Terminal() {
		completedAt := startedAt.Add(duration)
		execution.CompletedAt = &completedAt
	}

	require.NoError(t, h.store.ExecutionRepository().Save(context.Background(), execution))
}

func TestStats(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	workflowID := uuid.New().String()
	monday := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tuesday := monday.Add(24 * time.Hour)

	seedExecution(t, h, workflowID, models.ExecutionStatusCompleted, monday, 200*time.Millisecond)
	seedExecution(t, h, workflowID, models.ExecutionStatusCompleted, monday.Add(time.Hour), 400*time.Millisecond)
	seedExecution(t, h, workflowID, models.ExecutionStatusFailed, tuesday, 300*time.Millisecond)
	seedExecution(t, h, workflowID, models.ExecutionStatusCancelled, tuesday.Add(time.Hour), 100*time.Millisecond)
	seedExecution(t, h, workflowID, models.ExecutionStatusRunning, tuesday.Add(2*time.Hour), 0)

	// Another workflow's history must not leak into the aggregate.
	seedExecution(t, h, uuid.New().String(), models.ExecutionStatusFailed, monday, time.Second)

	stats, err := h.engine.Stats(ctx, workflowID)
	require.NoError(t, err)

	assert.Equal(t, workflowID, stats.WorkflowID)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Cancelled)
	assert.InDelta(t, 2.0/3.0, stats.SuccessRate, 1e-9, "cancelled and running runs are excluded from the rate")
	assert.InDelta(t, 250.0, stats.AverageDurationMS, 1e-9)

	require.Len(t, stats.Daily, 2)
	assert.Equal(t, "2026-03-02", stats.Daily[0].Date)
	assert.Equal(t, 2, stats.Daily[0].Total)
	assert.Equal(t, 2, stats.Daily[0].Completed)
	assert.Equal(t, "2026-03-03", stats.Daily[1].Date)
	assert.Equal(t, 3, stats.Daily[1].Total)
	assert.Equal(t, 1, stats.Daily[1].Failed)
	assert.Equal(t, 1, stats.Daily[1].Cancelled)
}

func TestStats_EmptyHistory(t *testing.T) {
	h := newTestHarness(t)

	stats, err := h.engine.Stats(context.Background(), uuid.New().String())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Total)
	assert.Zero(t, stats.SuccessRate)
	assert.Zero(t, stats.AverageDurationMS)
	assert.Empty(t, stats.Daily)
}
