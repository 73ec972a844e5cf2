// Package persistence provides the data storage abstraction for workflows,
// executions, schedules and templates.
package persistence

import (
	"context"
	"time"

	"github.com/sentinelsec/responder/pkg/models"
)

// WorkflowFilter narrows workflow listings. Nil fields match everything.
type WorkflowFilter struct {
	Enabled *bool
	Trigger *models.TriggerType
}

// TemplateFilter narrows template listings. Nil fields match everything.
type TemplateFilter struct {
	Category string
	Public   *bool
}

// WorkflowRepository persists workflow definitions. GetByID returns
// (nil, nil) when no workflow exists for the identifier; callers map that to
// a domain not-found error.
type WorkflowRepository interface {
	List(ctx context.Context, filter WorkflowFilter) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository persists execution records. Distinct execution
// identifiers must be writable concurrently without interference.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.Execution) error
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error)
	List(ctx context.Context, limit int) ([]*models.Execution, error)
}

// ScheduleRepository persists workflow schedules.
type ScheduleRepository interface {
	List(ctx context.Context) ([]*models.Schedule, error)
	Due(ctx context.Context, now time.Time) ([]*models.Schedule, error)
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	Save(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

// TemplateRepository persists workflow templates.
type TemplateRepository interface {
	List(ctx context.Context, filter TemplateFilter) ([]*models.Template, error)
	GetByID(ctx context.Context, id string) (*models.Template, error)
	Save(ctx context.Context, template *models.Template) error
	Delete(ctx context.Context, id string) error
}

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	ScheduleRepository() ScheduleRepository
	TemplateRepository() TemplateRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
