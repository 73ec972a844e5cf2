package registry

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsec/responder/pkg/models"
)

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewRegistry_SeedsBuiltins(t *testing.T) {
	reg := newTestRegistry()

	for _, actionType := range []string{
		ActionCreateTicket,
		ActionUpdateTicket,
		ActionSendNotification,
		ActionSIEMAlert,
		ActionSIEMEnrich,
		ActionIsolateHost,
		ActionTagAsset,
		ActionRunSimulation,
	} {
		_, ok := reg.Get(actionType)
		assert.True(t, ok, "builtin %q should be registered", actionType)
	}

	message, healthy := reg.HealthCheck()
	assert.True(t, healthy)
	assert.NotEmpty(t, message)
}

func TestRegistry_ListFilters(t *testing.T) {
	reg := newTestRegistry()

	all := reg.List("", "")
	assert.Len(t, all, 8)

	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Type, all[i].Type, "list is sorted by type")
	}

	ticketing := reg.List("", CategoryTicketing)
	assert.Len(t, ticketing, 2)

	single := reg.List(ActionSIEMAlert, "")
	require.Len(t, single, 1)
	assert.Equal(t, ActionSIEMAlert, single[0].Type)

	none := reg.List(ActionSIEMAlert, CategoryTicketing)
	assert.Empty(t, none)
}

func TestValidateInvocation(t *testing.T) {
	reg := newTestRegistry()

	tests := []struct {
		name    string
		inv     models.ActionInvocation
		wantErr string
	}{
		{
			name: "valid literal parameters",
			inv: models.ActionInvocation{
				ActionType: ActionCreateTicket,
				Parameters: map[string]any{"title": "Phishing report", "priority": "high"},
			},
		},
		{
			name: "required satisfied by schema default",
			inv: models.ActionInvocation{
				ActionType: ActionSIEMEnrich,
				Parameters: map[string]any{"indicator": "10.0.0.8"},
			},
		},
		{
			name: "required satisfied by context reference",
			inv: models.ActionInvocation{
				ActionType: ActionCreateTicket,
				Parameters: map[string]any{"title": "{{incident.title}}"},
			},
		},
		{
			name:    "unknown action type",
			inv:     models.ActionInvocation{ActionType: "delete-everything"},
			wantErr: "unknown action type",
		},
		{
			name: "missing required parameter",
			inv: models.ActionInvocation{
				ActionType: ActionTagAsset,
				Parameters: map[string]any{"asset": "srv-01"},
			},
			wantErr: `required parameter "tag"`,
		},
		{
			name: "literal violating enum",
			inv: models.ActionInvocation{
				ActionType: ActionCreateTicket,
				Parameters: map[string]any{"title": "x", "priority": "urgent"},
			},
			wantErr: "parameter",
		},
		{
			name: "literal of wrong type",
			inv: models.ActionInvocation{
				ActionType: ActionSendNotification,
				Parameters: map[string]any{"channel": "soc", "message": 42},
			},
			wantErr: "parameter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.ValidateInvocation(tt.inv)

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestActionDefinition_ParamHelpers(t *testing.T) {
	reg := newTestRegistry()

	def, ok := reg.Get(ActionCreateTicket)
	require.True(t, ok)

	assert.Equal(t, []string{"title"}, def.RequiredParams())

	defaults := def.ParamDefaults()
	assert.Equal(t, "medium", defaults["priority"])
	assert.NotContains(t, defaults, "title")
}
