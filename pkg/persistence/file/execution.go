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

	"github.com/sentinelsec/responder/pkg/models"
)

// ExecutionRepository handles execution-related file operations. Writes to
// distinct execution identifiers may happen concurrently; the lock keeps
// listing consistent with in-flight saves.
type ExecutionRepository struct {
	root string
	mu   sync.RWMutex
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

// Save writes an execution record to the file system.
func (er *ExecutionRepository) Save(_ context.Context, execution *models.Execution) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	err := os.MkdirAll(er.root+"/executions", 0750)
	if err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution %s: %w", execution.ID, err)
	}

	filePath := path.Join(er.root+"/executions", execution.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// GetByID retrieves an execution by its ID.
func (er *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	er.mu.RLock()
	defer er.mu.RUnlock()

	return er.getByID(ctx, id)
}

func (er *ExecutionRepository) getByID(_ context.Context, id string) (*models.Execution, error) {
	filePath := filepath.Clean(path.Join(er.root, "executions", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch execution %s: %w", id, err)
	}

	var execution models.Execution

	err = json.Unmarshal(body, &execution)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution %s: %w", id, err)
	}

	return &execution, nil
}

// ListByWorkflow returns executions for a workflow, newest first. A limit of
// zero returns everything.
func (er *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	all, err := er.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	executions := make([]*models.Execution, 0)

	for _, execution := range all {
		if execution.WorkflowID != workflowID {
			continue
		}

		executions = append(executions, execution)

		if limit > 0 && len(executions) >= limit {
			break
		}
	}

	return executions, nil
}

// List returns all executions, newest first. A limit of zero returns
// everything.
func (er *ExecutionRepository) List(ctx context.Context, limit int) ([]*models.Execution, error) {
	er.mu.RLock()
	defer er.mu.RUnlock()

	root := os.DirFS(er.root + "/executions")

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list execution files: %w", err)
	}

	executions := make([]*models.Execution, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		executionID := file[:len(file)-5]

		execution, err := er.getByID(ctx, executionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load execution %s: %w", executionID, err)
		}

		if execution != nil {
			executions = append(executions, execution)
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	if limit > 0 && len(executions) > limit {
		executions = executions[:limit]
	}

	return executions, nil
}
