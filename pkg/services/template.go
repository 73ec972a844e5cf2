package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelsec/responder/pkg/engine"
	"github.com/sentinelsec/responder/pkg/models"
	"github.com/sentinelsec/responder/pkg/persistence"
)

// Template manages workflow templates and their instantiation into concrete
// workflows.
type Template struct {
	persistence persistence.Persistence
	engine      *engine.Engine
}

func NewTemplate(p persistence.Persistence, eng *engine.Engine) *Template {
	return &Template{
		persistence: p,
		engine:      eng,
	}
}

// Create validates and stores a new template.
func (t *Template) Create(ctx context.Context, template *models.Template) (*models.Template, error) {
	if template == nil {
		return nil, ErrInvalidRequest
	}

	if template.Name == "" {
		return nil, ErrNameRequired
	}

	if !template.Trigger.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTrigger, template.Trigger)
	}

	if len(template.DefaultActions) == 0 {
		return nil, ErrActionsRequired
	}

	now := time.Now().UTC()
	template.ID = uuid.New().String()
	template.CreatedAt = now
	template.UpdatedAt = now
	template.UsageCount = 0

	if err := t.persistence.TemplateRepository().Save(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	return template, nil
}

// List returns templates matching the filter.
func (t *Template) List(ctx context.Context, filter persistence.TemplateFilter) ([]*models.Template, error) {
	return t.persistence.TemplateRepository().List(ctx, filter)
}

// GetByID fetches a template by identifier.
func (t *Template) GetByID(ctx context.Context, id string) (*models.Template, error) {
	template, err := t.persistence.TemplateRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if template == nil {
		return nil, persistence.ErrTemplateNotFound
	}

	return template, nil
}

// Delete removes a template. Workflows instantiated from it are untouched.
func (t *Template) Delete(ctx context.Context, id string) error {
	if _, err := t.GetByID(ctx, id); err != nil {
		return err
	}

	return t.persistence.TemplateRepository().Delete(ctx, id)
}

// Instantiate produces a new concrete workflow from the template merged with
// the customization, and bumps the template's usage counter. Each call
// yields an independent workflow with its own identity.
func (t *Template) Instantiate(ctx context.Context, templateID, name string, custom models.TemplateCustomization) (*models.Workflow, error) {
	template, err := t.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if name == "" {
		return nil, ErrNameRequired
	}

	workflow := template.Instantiate(name, custom)
	workflow.CreatedBy = template.CreatedBy

	created, err := t.engine.CreateWorkflow(ctx, workflow)
	if err != nil {
		return nil, err
	}

	template.UsageCount++
	template.UpdatedAt = time.Now().UTC()

	if err := t.persistence.TemplateRepository().Save(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to update template usage: %w", err)
	}

	return created, nil
}
