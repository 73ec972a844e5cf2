package integrations

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSIEM records alerts and enrichment requests to the structured log
// instead of a real SIEM. Used when no SIEM endpoint is configured.
type LogSIEM struct {
	logger *slog.Logger
}

func NewLogSIEM(logger *slog.Logger) *LogSIEM {
	return &LogSIEM{logger: logger}
}

func (s *LogSIEM) SendAlert(ctx context.Context, alert Alert) (string, error) {
	ref := uuid.New().String()
	s.logger.InfoContext(ctx, "SIEM alert (dry run)", "title", alert.Title, "severity", alert.Severity, "reference", ref)

	return ref, nil
}

func (s *LogSIEM) Enrich(ctx context.Context, req EnrichmentRequest) (string, error) {
	ref := uuid.New().String()
	s.logger.InfoContext(ctx, "SIEM enrichment (dry run)", "indicator", req.Indicator, "kind", req.Kind, "reference", ref)

	return ref, nil
}

// LogTicketing records ticket operations to the structured log.
type LogTicketing struct {
	logger *slog.Logger
}

func NewLogTicketing(logger *slog.Logger) *LogTicketing {
	return &LogTicketing{logger: logger}
}

func (t *LogTicketing) CreateTicket(ctx context.Context, ticket Ticket) (string, error) {
	ref := uuid.New().String()
	t.logger.InfoContext(ctx, "Ticket created (dry run)", "title", ticket.Title, "priority", ticket.Priority, "reference", ref)

	return ref, nil
}

func (t *LogTicketing) UpdateTicket(ctx context.Context, ref string, fields map[string]any) error {
	t.logger.InfoContext(ctx, "Ticket updated (dry run)", "reference", ref, "fields", len(fields))

	return nil
}

// LogNotifier records channel messages to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, channel string, message map[string]any) error {
	n.logger.InfoContext(ctx, "Notification sent (dry run)", "channel", channel)

	return nil
}
