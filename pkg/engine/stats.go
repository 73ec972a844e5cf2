package engine

import (
	"context"
	"sort"
	"time"

	"github.com/sentinelsec/responder/pkg/models"
)

// PeriodStats aggregates execution outcomes for one day.
type PeriodStats struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Cancelled int    `json:"cancelled"`
}

// ExecutionStats summarizes the execution history of one workflow. Derived
// entirely from the execution store; the engine keeps no counters of its own.
type ExecutionStats struct {
	WorkflowID        string        `json:"workflow_id"`
	Total             int           `json:"total"`
	Completed         int           `json:"completed"`
	Failed            int           `json:"failed"`
	Cancelled         int           `json:"cancelled"`
	SuccessRate       float64       `json:"success_rate"`
	AverageDurationMS float64       `json:"average_duration_ms"`
	Daily             []PeriodStats `json:"daily"`
}

// Stats aggregates per-period execution counts for a workflow.
func (e *Engine) Stats(ctx context.Context, workflowID string) (*ExecutionStats, error) {
	executions, err := e.persistence.ExecutionRepository().ListByWorkflow(ctx, workflowID, 0)
	if err != nil {
		return nil, err
	}

	stats := &ExecutionStats{WorkflowID: workflowID}
	daily := make(map[string]*PeriodStats)

	var totalDuration time.Duration

	var durationSamples int

	for _, execution := range executions {
		stats.Total++

		day := execution.StartedAt.UTC().Format("2006-01-02")

		bucket, ok := daily[day]
		if !ok {
			bucket = &PeriodStats{Date: day}
			daily[day] = bucket
		}

		bucket.Total++

		switch execution.Status {
		case models.ExecutionStatusCompleted:
			stats.Completed++
			bucket.Completed++
		case models.ExecutionStatusFailed:
			stats.Failed++
			bucket.Failed++
		case models.ExecutionStatusCancelled:
			stats.Cancelled++
			bucket.Cancelled++
		}

		if execution.CompletedAt != nil {
			totalDuration += execution.Duration()
			durationSamples++
		}
	}

	finished := stats.Completed + stats.Failed
	if finished > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(finished)
	}

	if durationSamples > 0 {
		stats.AverageDurationMS = float64(totalDuration.Milliseconds()) / float64(durationSamples)
	}

	stats.Daily = make([]PeriodStats, 0, len(daily))

	for _, bucket := range daily {
		stats.Daily = append(stats.Daily, *bucket)
	}

	sort.Slice(stats.Daily, func(i, j int) bool {
		return stats.Daily[i].Date < stats.Daily[j].Date
	})

	return stats, nil
}
