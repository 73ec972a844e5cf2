package registry

import "github.com/sentinelsec/responder/pkg/models"

// Action categories used by the built-in library.
const (
	CategoryTicketing    = "ticketing"
	CategorySIEM         = "siem"
	CategoryNotification = "notification"
	CategoryContainment  = "containment"
	CategoryInternal     = "internal"
)

// Built-in action types dispatched by the executor.
const (
	ActionCreateTicket     = "create-ticket"
	ActionUpdateTicket     = "update-ticket"
	ActionSendNotification = "send-notification"
	ActionSIEMAlert        = "siem-alert"
	ActionSIEMEnrich       = "siem-enrich"
	ActionIsolateHost      = "isolate-host"
	ActionTagAsset         = "tag-asset"
	ActionRunSimulation    = "run-simulation"
)

func builtinDefinitions() []*models.ActionDefinition {
	return []*models.ActionDefinition{
		{
			Type:        ActionCreateTicket,
			Name:        "Create Ticket",
			Description: "Opens a ticket in the configured ticketing system.",
			Category:    CategoryTicketing,
			ParamSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":       map[string]any{"type": "string"},
					"description": map[string]any{"type": "string", "default": ""},
					"priority": map[string]any{
						"type":    "string",
						"enum":    []any{"low", "medium", "high", "critical"},
						"default": "medium",
					},
				},
				"required": []any{"title"},
			},
		},
		{
			Type:        ActionUpdateTicket,
			Name:        "Update Ticket",
			Description: "Updates fields on an existing ticket.",
			Category:    CategoryTicketing,
			ParamSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"ticket_ref": map[string]any{"type": "string"},
					"fields":     map[string]any{"type": "object"},
				},
				"required": []any{"ticket_ref", "fields"},
			},
		},
		{
			Type:        ActionSendNotification,
			Name:        "Send Notification",
			Description: "Dispatches a message to a notification channel.",
			Category:    CategoryNotification,
			ParamSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"channel": map[string]any{"type": "string"},
					"message": map[string]any{"type": "string"},
				},
				"required": []any{"channel", "message"},
			},
		},
		{
			Type:        ActionSIEMAlert,
			Name:        "SIEM Alert",
			Description: "Forwards a normalized alert to the SIEM.",
			Category:    CategorySIEM,
			ParamSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
					"severity": map[string]any{
						"type":    "string",
						"enum":    []any{"low", "medium", "high", "critical"},
						"default": "medium",
					},
					"details": map[string]any{"type": "object"},
				},
				"required": []any{"title"},
			},
		},
		{
			Type:        ActionSIEMEnrich,
			Name:        "SIEM Enrichment",
			Description: "Requests enrichment for an indicator from the SIEM.",
			Category:    CategorySIEM,
			ParamSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"indicator": map[string]any{"type": "string"},
					"kind":      map[string]any{"type": "string", "default": "ip"},
				},
				"required": []any{"indicator"},
			},
		},
		{
			Type:        ActionIsolateHost,
			Name:        "Isolate Host",
			Description: "Marks a host for network isolation.",
			Category:    CategoryContainment,
			ParamSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"host":   map[string]any{"type": "string"},
					"reason": map[string]any{"type": "string", "default": "automated response"},
				},
				"required": []any{"host"},
			},
		},
		{
			Type:        ActionTagAsset,
			Name:        "Tag Asset",
			Description: "Attaches a tag to an asset record.",
			Category:    CategoryInternal,
			ParamSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"asset": map[string]any{"type": "string"},
					"tag":   map[string]any{"type": "string"},
				},
				"required": []any{"asset", "tag"},
			},
		},
		{
			Type:        ActionRunSimulation,
			Name:        "Run Simulation",
			Description: "Queues an attack simulation run.",
			Category:    CategoryInternal,
			ParamSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"scenario": map[string]any{"type": "string"},
					"scope":    map[string]any{"type": "string", "default": "all"},
				},
				"required": []any{"scenario"},
			},
		},
	}
}
