package models

// ActionDefinition is one entry in the action library: an executable action
// kind together with its declared parameter schema. Pure data, immutable at
// engine runtime.
type ActionDefinition struct {
	Type        string         `json:"type"     validate:"required"`
	Name        string         `json:"name"     validate:"required"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	ParamSchema map[string]any `json:"param_schema"`
}

// RequiredParams returns the parameter names the schema declares required.
func (d *ActionDefinition) RequiredParams() []string {
	raw, ok := d.ParamSchema["required"]
	if !ok {
		return nil
	}

	list, ok := raw.([]any)
	if !ok {
		if typed, ok := raw.([]string); ok {
			return typed
		}

		return nil
	}

	names := make([]string, 0, len(list))

	for _, item := range list {
		if name, ok := item.(string); ok {
			names = append(names, name)
		}
	}

	return names
}

// ParamDefaults returns declared default values per parameter, keyed by name.
func (d *ActionDefinition) ParamDefaults() map[string]any {
	defaults := make(map[string]any)

	props, ok := d.ParamSchema["properties"].(map[string]any)
	if !ok {
		return defaults
	}

	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		if def, ok := prop["default"]; ok {
			defaults[name] = def
		}
	}

	return defaults
}
