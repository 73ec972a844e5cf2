package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sentinelsec/responder/pkg/models"
	"github.com/sentinelsec/responder/pkg/persistence"
)

// TemplateRepository handles template-related database operations.
type TemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sql.DB, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

const templateColumns = `
	id
  , name
  , description
  , category
  , trigger
  , default_conditions
  , default_actions
  , public
  , usage_count
  , created_by
  , created_at
  , updated_at
`

// List returns templates matching the filter, sorted by name.
func (r *TemplateRepository) List(ctx context.Context, filter persistence.TemplateFilter) ([]*models.Template, error) {
	query := "SELECT " + templateColumns + " FROM templates WHERE 1=1"
	args := make([]any, 0, 2)

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}

	if filter.Public != nil {
		args = append(args, *filter.Public)
		query += fmt.Sprintf(" AND public = $%d", len(args))
	}

	query += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	templates := make([]*models.Template, 0)

	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}

		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

// GetByID returns a template by identifier, or (nil, nil) when missing.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	query := "SELECT " + templateColumns + " FROM templates WHERE id = $1"

	template, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	return template, nil
}

// Save upserts a template.
func (r *TemplateRepository) Save(ctx context.Context, template *models.Template) error {
	now := time.Now().UTC()

	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}

	template.UpdatedAt = now

	conditionsJSON, err := json.Marshal(template.DefaultConditions)
	if err != nil {
		return fmt.Errorf("failed to marshal default conditions: %w", err)
	}

	actionsJSON, err := json.Marshal(template.DefaultActions)
	if err != nil {
		return fmt.Errorf("failed to marshal default actions: %w", err)
	}

	query := `
		INSERT INTO templates (id, name, description, category, trigger,
			default_conditions, default_actions, public, usage_count,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			trigger = EXCLUDED.trigger,
			default_conditions = EXCLUDED.default_conditions,
			default_actions = EXCLUDED.default_actions,
			public = EXCLUDED.public,
			usage_count = EXCLUDED.usage_count,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.Description,
		template.Category,
		string(template.Trigger),
		conditionsJSON,
		actionsJSON,
		template.Public,
		template.UsageCount,
		template.CreatedBy,
		template.CreatedAt,
		template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save template %s: %w", template.ID, err)
	}

	return nil
}

// Delete removes a template by identifier.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}

	return nil
}

func scanTemplate(row rowScanner) (*models.Template, error) {
	var (
		template       models.Template
		trigger        string
		conditionsJSON []byte
		actionsJSON    []byte
	)

	err := row.Scan(
		&template.ID,
		&template.Name,
		&template.Description,
		&template.Category,
		&trigger,
		&conditionsJSON,
		&actionsJSON,
		&template.Public,
		&template.UsageCount,
		&template.CreatedBy,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	template.Trigger = models.TriggerType(trigger)

	if len(conditionsJSON) > 0 {
		if err := json.Unmarshal(conditionsJSON, &template.DefaultConditions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal default conditions: %w", err)
		}
	}

	if len(actionsJSON) > 0 {
		if err := json.Unmarshal(actionsJSON, &template.DefaultActions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal default actions: %w", err)
		}
	}

	return &template, nil
}
