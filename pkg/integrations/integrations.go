// Package integrations defines the narrow contract the action executor uses
// to reach external systems. The engine never embeds SIEM or ticketing
// business logic; it only speaks these interfaces.
package integrations

import "context"

// Alert is a normalized alert forwarded to the SIEM.
type Alert struct {
	Title    string         `json:"title"`
	Severity string         `json:"severity"`
	Details  map[string]any `json:"details,omitempty"`
}

// EnrichmentRequest asks the SIEM to enrich an indicator.
type EnrichmentRequest struct {
	Indicator string `json:"indicator"`
	Kind      string `json:"kind"`
}

// Ticket is a normalized ticket-creation request.
type Ticket struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// SIEM accepts alerts and enrichment requests and returns an opaque
// reference identifier on success.
type SIEM interface {
	SendAlert(ctx context.Context, alert Alert) (string, error)
	Enrich(ctx context.Context, req EnrichmentRequest) (string, error)
}

// Ticketing creates and updates tickets, returning an opaque ticket
// reference on creation.
type Ticketing interface {
	CreateTicket(ctx context.Context, ticket Ticket) (string, error)
	UpdateTicket(ctx context.Context, ref string, fields map[string]any) error
}

// Notifier dispatches a message payload to a notification channel.
type Notifier interface {
	Send(ctx context.Context, channel string, message map[string]any) error
}

// Set bundles the integrations the executor dispatches to.
type Set struct {
	SIEM      SIEM
	Ticketing Ticketing
	Notifier  Notifier
}
