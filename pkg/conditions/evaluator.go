// Package conditions implements the stateless predicate engine that matches
// trigger contexts against workflow trigger conditions.
package conditions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sentinelsec/responder/pkg/models"
)

// Evaluate tests every condition against the trigger context and reports
// whether all of them hold, along with the conditions that fired. Conditions
// are AND-ed; an empty list matches unconditionally. A field path that does
// not resolve makes that condition a non-match, never an error. Safe for
// concurrent use.
func Evaluate(conds []models.TriggerCondition, context map[string]any) (bool, []models.TriggerCondition) {
	matched := make([]models.TriggerCondition, 0, len(conds))

	for _, cond := range conds {
		if !evaluateOne(cond, context) {
			return false, matched
		}

		matched = append(matched, cond)
	}

	return true, matched
}

func evaluateOne(cond models.TriggerCondition, context map[string]any) bool {
	actual, found := LookupPath(context, cond.Field)
	if !found {
		return false
	}

	switch cond.Operator {
	case models.OperatorEquals:
		return stringify(actual) == stringify(cond.Value)
	case models.OperatorNotEquals:
		return stringify(actual) != stringify(cond.Value)
	case models.OperatorContains:
		return strings.Contains(stringify(actual), stringify(cond.Value))
	case models.OperatorGreaterThan:
		return compare(actual, cond.Value) > 0
	case models.OperatorLessThan:
		return compare(actual, cond.Value) < 0
	case models.OperatorInSet:
		return inSet(actual, cond.Value)
	default:
		return false
	}
}

// LookupPath resolves a dotted field path against a nested key-value
// structure. The second return value is false when any segment is missing or
// an intermediate value is not a map.
func LookupPath(context map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = context

	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// compare orders two operands numerically when both parse as numbers and
// falls back to lexicographic string comparison otherwise. The fallback is
// deliberate: "10" < "9" lexicographically, so mixed-type comparisons are a
// known sharp edge for condition authors.
func compare(a, b any) int {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)

	if okA && okB {
		switch {
		case fa > fb:
			return 1
		case fa < fb:
			return -1
		default:
			return 0
		}
	}

	return strings.Compare(stringify(a), stringify(b))
}

func inSet(actual, value any) bool {
	list, ok := value.([]any)
	if !ok {
		if typed, ok := value.([]string); ok {
			for _, item := range typed {
				if stringify(actual) == item {
					return true
				}
			}
		}

		return false
	}

	for _, item := range list {
		if stringify(actual) == stringify(item) {
			return true
		}
	}

	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)

		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}

	return fmt.Sprintf("%v", v)
}
