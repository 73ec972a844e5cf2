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
	"github.com/sentinelsec/responder/pkg/persistence"
)

// TemplateRepository handles template-related file operations.
type TemplateRepository struct {
	root string
	mu   sync.RWMutex
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(root string) *TemplateRepository {
	return &TemplateRepository{root: root}
}

// List returns templates matching the filter, sorted by name.
func (tr *TemplateRepository) List(ctx context.Context, filter persistence.TemplateFilter) ([]*models.Template, error) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	root := os.DirFS(tr.root + "/templates")

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list template files: %w", err)
	}

	templates := make([]*models.Template, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		templateID := file[:len(file)-5]

		template, err := tr.getByID(ctx, templateID)
		if err != nil {
			return nil, fmt.Errorf("failed to load template %s: %w", templateID, err)
		}

		if template == nil {
			continue
		}

		if filter.Category != "" && template.Category != filter.Category {
			continue
		}

		if filter.Public != nil && template.Public != *filter.Public {
			continue
		}

		templates = append(templates, template)
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})

	return templates, nil
}

// GetByID retrieves a template by its ID.
func (tr *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	return tr.getByID(ctx, id)
}

func (tr *TemplateRepository) getByID(_ context.Context, id string) (*models.Template, error) {
	filePath := filepath.Clean(path.Join(tr.root, "templates", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch template %s: %w", id, err)
	}

	var template models.Template

	err = json.Unmarshal(body, &template)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal template %s: %w", id, err)
	}

	return &template, nil
}

// Save writes a template to the file system.
func (tr *TemplateRepository) Save(_ context.Context, template *models.Template) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	err := os.MkdirAll(tr.root+"/templates", 0750)
	if err != nil {
		return fmt.Errorf("failed to create templates directory: %w", err)
	}

	data, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal template %s: %w", template.ID, err)
	}

	filePath := path.Join(tr.root+"/templates", template.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// Delete removes a template by its ID.
func (tr *TemplateRepository) Delete(_ context.Context, id string) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	filePath := path.Join(tr.root+"/templates", id+".json")

	err := os.Remove(filePath)

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}

	return nil
}
