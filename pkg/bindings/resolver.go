// Package bindings resolves action parameter bindings against trigger
// contexts. A parameter value of the form "{{path.to.field}}" references a
// context field; anything else is passed through as a literal.
package bindings

import (
	"strings"

	"github.com/sentinelsec/responder/pkg/conditions"
)

// Resolution is the outcome of resolving a parameter set. Unresolved lists
// the names whose context references did not resolve; the caller decides
// whether a declared default or a failure applies.
type Resolution struct {
	Values     map[string]any
	Unresolved []string
}

// IsBinding reports whether the value is a context reference expression.
func IsBinding(value any) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}

	if strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") {
		return strings.TrimSpace(s[2 : len(s)-2]), true
	}

	return "", false
}

// Resolve evaluates every parameter binding against the context. Literal
// values are copied through untouched. Resolution never fails: missing
// context fields are reported in Unresolved rather than as errors.
func Resolve(params map[string]any, context map[string]any) Resolution {
	resolution := Resolution{Values: make(map[string]any, len(params))}

	for name, value := range params {
		path, ok := IsBinding(value)
		if !ok {
			resolution.Values[name] = value

			continue
		}

		resolved, found := conditions.LookupPath(context, path)
		if !found {
			resolution.Unresolved = append(resolution.Unresolved, name)

			continue
		}

		resolution.Values[name] = resolved
	}

	return resolution
}
