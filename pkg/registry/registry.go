// Package registry holds the action library: the catalog of executable
// action kinds and their parameter schemas. The catalog is immutable at
// engine runtime; definitions are registered during startup.
package registry

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sentinelsec/responder/pkg/bindings"
	"github.com/sentinelsec/responder/pkg/models"
)

type Registry struct {
	logger      *slog.Logger
	definitions map[string]*models.ActionDefinition
}

func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		logger:      logger.With("module", "registry"),
		definitions: make(map[string]*models.ActionDefinition),
	}

	for _, def := range builtinDefinitions() {
		r.Register(def)
	}

	return r
}

func (r *Registry) Register(def *models.ActionDefinition) {
	r.definitions[def.Type] = def
}

func (r *Registry) Get(actionType string) (*models.ActionDefinition, bool) {
	def, ok := r.definitions[actionType]

	return def, ok
}

// List returns definitions filtered by action type and category. Empty
// filters match everything. Results are sorted by type for stable output.
func (r *Registry) List(actionType, category string) []*models.ActionDefinition {
	defs := make([]*models.ActionDefinition, 0, len(r.definitions))

	for _, def := range r.definitions {
		if actionType != "" && def.Type != actionType {
			continue
		}

		if category != "" && def.Category != category {
			continue
		}

		defs = append(defs, def)
	}

	slices.SortFunc(defs, func(a, b *models.ActionDefinition) int {
		switch {
		case a.Type < b.Type:
			return -1
		case a.Type > b.Type:
			return 1
		default:
			return 0
		}
	})

	return defs
}

func (r *Registry) HealthCheck() (string, bool) {
	if len(r.definitions) == 0 {
		return "Action library is empty", false
	}

	return fmt.Sprintf("Action library holds %d definitions", len(r.definitions)), true
}

// ValidateInvocation checks an action invocation against the library at
// workflow save time: the action kind must be registered, every required
// parameter must be bound (literal or context reference), and literal values
// must satisfy the declared parameter schema. Context references are checked
// for presence only; their runtime type is unknown until execution.
func (r *Registry) ValidateInvocation(inv models.ActionInvocation) error {
	def, ok := r.definitions[inv.ActionType]
	if !ok {
		return fmt.Errorf("unknown action type %q", inv.ActionType)
	}

	defaults := def.ParamDefaults()

	for _, name := range def.RequiredParams() {
		if _, bound := inv.Parameters[name]; bound {
			continue
		}

		if _, hasDefault := defaults[name]; hasDefault {
			continue
		}

		return fmt.Errorf("action %q: required parameter %q is not bound", inv.ActionType, name)
	}

	return r.validateLiterals(def, inv)
}

// validateLiterals runs the parameter schema over the literal subset of the
// invocation's parameters. The required clause is dropped because presence
// was already checked above, including context references the schema cannot
// see as values.
func (r *Registry) validateLiterals(def *models.ActionDefinition, inv models.ActionInvocation) error {
	if len(def.ParamSchema) == 0 || len(inv.Parameters) == 0 {
		return nil
	}

	literals := make(map[string]any, len(inv.Parameters))

	for name, value := range inv.Parameters {
		if _, isBinding := bindings.IsBinding(value); isBinding {
			continue
		}

		literals[name] = value
	}

	schema := make(map[string]any, len(def.ParamSchema))

	for key, value := range def.ParamSchema {
		if key == "required" {
			continue
		}

		schema[key] = value
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(literals),
	)
	if err != nil {
		return fmt.Errorf("action %q: schema validation: %w", inv.ActionType, err)
	}

	if !result.Valid() {
		first := result.Errors()[0]

		return fmt.Errorf("action %q: parameter %s", inv.ActionType, first.String())
	}

	return nil
}
