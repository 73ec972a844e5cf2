// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/sentinelsec/responder/pkg/integrations"
)

// NewIntegrations builds the integration set from endpoint URLs. Endpoints
// left empty fall back to log-only implementations so workflows remain
// runnable in partial deployments.
func NewIntegrations(logger *slog.Logger, siemURL, ticketingURL, notificationURL string) integrations.Set {
	set := integrations.Set{
		SIEM:      integrations.NewLogSIEM(logger),
		Ticketing: integrations.NewLogTicketing(logger),
		Notifier:  integrations.NewLogNotifier(logger),
	}

	if siemURL != "" {
		set.SIEM = integrations.NewHTTPSIEM(siemURL)
	}

	if ticketingURL != "" {
		set.Ticketing = integrations.NewHTTPTicketing(ticketingURL)
	}

	if notificationURL != "" {
		set.Notifier = integrations.NewHTTPNotifier(notificationURL)
	}

	return set
}
