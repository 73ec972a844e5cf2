package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sentinelsec/responder/pkg/models"
)

// ScheduleRepository handles schedule-related file operations.
type ScheduleRepository struct {
	root string
	mu   sync.RWMutex
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(root string) *ScheduleRepository {
	return &ScheduleRepository{root: root}
}

// List returns all schedules sorted by next run time.
func (sr *ScheduleRepository) List(ctx context.Context) ([]*models.Schedule, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	return sr.list(ctx)
}

func (sr *ScheduleRepository) list(ctx context.Context) ([]*models.Schedule, error) {
	root := os.DirFS(sr.root + "/schedules")

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule files: %w", err)
	}

	schedules := make([]*models.Schedule, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		scheduleID := file[:len(file)-5]

		schedule, err := sr.getByID(ctx, scheduleID)
		if err != nil {
			return nil, fmt.Errorf("failed to load schedule %s: %w", scheduleID, err)
		}

		if schedule != nil {
			schedules = append(schedules, schedule)
		}
	}

	sort.Slice(schedules, func(i, j int) bool {
		return schedules[i].NextRunAt.Before(schedules[j].NextRunAt)
	})

	return schedules, nil
}

// Due returns enabled schedules whose next run time is at or before now.
func (sr *ScheduleRepository) Due(ctx context.Context, now time.Time) ([]*models.Schedule, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	all, err := sr.list(ctx)
	if err != nil {
		return nil, err
	}

	due := make([]*models.Schedule, 0)

	for _, schedule := range all {
		if schedule.IsDue(now) {
			due = append(due, schedule)
		}
	}

	return due, nil
}

// GetByID retrieves a schedule by its ID.
func (sr *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	return sr.getByID(ctx, id)
}

func (sr *ScheduleRepository) getByID(_ context.Context, id string) (*models.Schedule, error) {
	filePath := filepath.Clean(path.Join(sr.root, "schedules", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch schedule %s: %w", id, err)
	}

	var schedule models.Schedule

	err = json.Unmarshal(body, &schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule %s: %w", id, err)
	}

	return &schedule, nil
}

// Save writes a schedule to the file system.
func (sr *ScheduleRepository) Save(_ context.Context, schedule *models.Schedule) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	err := os.MkdirAll(sr.root+"/schedules", 0750)
	if err != nil {
		return fmt.Errorf("failed to create schedules directory: %w", err)
	}

	data, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schedule %s: %w", schedule.ID, err)
	}

	filePath := path.Join(sr.root+"/schedules", schedule.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// Delete removes a schedule by its ID.
func (sr *ScheduleRepository) Delete(_ context.Context, id string) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	filePath := path.Join(sr.root+"/schedules", id+".json")

	err := os.Remove(filePath)

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", id, err)
	}

	return nil
}
