package conditions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentinelsec/responder/pkg/models"
)

func TestEvaluate_EmptyConditionsMatchEverything(t *testing.T) {
	ok, fired := Evaluate(nil, map[string]any{"severity": "low"})

	assert.True(t, ok)
	assert.Empty(t, fired)

	ok, fired = Evaluate([]models.TriggerCondition{}, map[string]any{})

	assert.True(t, ok)
	assert.Empty(t, fired)
}

func TestEvaluate_Operators(t *testing.T) {
	context := map[string]any{
		"severity": "critical",
		"score":    float64(8),
		"incident": map[string]any{
			"title": "Suspicious login from new location",
			"tags":  []any{"auth", "geo"},
		},
	}

	tests := []struct {
		name string
		cond models.TriggerCondition
		want bool
	}{
		{
			name: "equals match",
			cond: models.TriggerCondition{Field: "severity", Operator: models.OperatorEquals, Value: "critical"},
			want: true,
		},
		{
			name: "equals mismatch",
			cond: models.TriggerCondition{Field: "severity", Operator: models.OperatorEquals, Value: "low"},
			want: false,
		},
		{
			name: "not-equals",
			cond: models.TriggerCondition{Field: "severity", Operator: models.OperatorNotEquals, Value: "low"},
			want: true,
		},
		{
			name: "contains on nested field",
			cond: models.TriggerCondition{Field: "incident.title", Operator: models.OperatorContains, Value: "login"},
			want: true,
		},
		{
			name: "greater-than numeric",
			cond: models.TriggerCondition{Field: "score", Operator: models.OperatorGreaterThan, Value: float64(7)},
			want: true,
		},
		{
			name: "greater-than numeric string operand",
			cond: models.TriggerCondition{Field: "score", Operator: models.OperatorGreaterThan, Value: "7"},
			want: true,
		},
		{
			name: "less-than numeric",
			cond: models.TriggerCondition{Field: "score", Operator: models.OperatorLessThan, Value: float64(9)},
			want: true,
		},
		{
			name: "in-set match",
			cond: models.TriggerCondition{Field: "severity", Operator: models.OperatorInSet, Value: []any{"high", "critical"}},
			want: true,
		},
		{
			name: "in-set string slice",
			cond: models.TriggerCondition{Field: "severity", Operator: models.OperatorInSet, Value: []string{"high", "critical"}},
			want: true,
		},
		{
			name: "in-set miss",
			cond: models.TriggerCondition{Field: "severity", Operator: models.OperatorInSet, Value: []any{"low", "medium"}},
			want: false,
		},
		{
			name: "in-set non-list value",
			cond: models.TriggerCondition{Field: "severity", Operator: models.OperatorInSet, Value: "critical"},
			want: false,
		},
		{
			name: "missing field is a non-match",
			cond: models.TriggerCondition{Field: "does.not.exist", Operator: models.OperatorEquals, Value: "x"},
			want: false,
		},
		{
			name: "unknown operator is a non-match",
			cond: models.TriggerCondition{Field: "severity", Operator: "regex", Value: ".*"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := Evaluate([]models.TriggerCondition{tt.cond}, context)

			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestEvaluate_AndSemantics(t *testing.T) {
	context := map[string]any{"severity": "critical", "source": "edr"}

	conds := []models.TriggerCondition{
		{Field: "severity", Operator: models.OperatorEquals, Value: "critical"},
		{Field: "source", Operator: models.OperatorEquals, Value: "edr"},
	}

	ok, fired := Evaluate(conds, context)

	assert.True(t, ok)
	assert.Len(t, fired, 2)

	conds[1].Value = "siem"

	ok, fired = Evaluate(conds, context)

	assert.False(t, ok)
	assert.Len(t, fired, 1, "conditions before the miss are reported as fired")
}

func TestEvaluate_NumericEqualsAcrossTypes(t *testing.T) {
	// JSON decoding turns numbers into float64; stored condition values may
	// be ints. Equality is applied on the stringified form.
	context := map[string]any{"count": float64(5)}

	ok, _ := Evaluate([]models.TriggerCondition{
		{Field: "count", Operator: models.OperatorEquals, Value: 5},
	}, context)

	assert.True(t, ok)
}

func TestLookupPath(t *testing.T) {
	context := map[string]any{
		"incident": map[string]any{
			"host": map[string]any{"name": "srv-01"},
		},
	}

	value, found := LookupPath(context, "incident.host.name")
	assert.True(t, found)
	assert.Equal(t, "srv-01", value)

	_, found = LookupPath(context, "incident.host.name.deeper")
	assert.False(t, found, "descending through a leaf fails")

	_, found = LookupPath(context, "")
	assert.False(t, found)

	_, found = LookupPath(context, "incident.missing")
	assert.False(t, found)
}
