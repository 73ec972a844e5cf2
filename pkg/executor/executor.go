// Package executor invokes single actions against their target integrations.
// It owns parameter resolution, timeout enforcement and result
// normalization; it holds no business logic for the systems it calls and
// never mutates workflow or execution state.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sentinelsec/responder/pkg/bindings"
	"github.com/sentinelsec/responder/pkg/integrations"
	"github.com/sentinelsec/responder/pkg/models"
	"github.com/sentinelsec/responder/pkg/registry"
)

const defaultActionTimeout = 30 * time.Second

type Executor struct {
	registry     *registry.Registry
	integrations integrations.Set
	timeout      time.Duration
	logger       *slog.Logger
}

type Option func(*Executor)

// WithTimeout overrides the per-action execution window.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		e.timeout = timeout
	}
}

func NewExecutor(reg *registry.Registry, set integrations.Set, logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		registry:     reg,
		integrations: set,
		timeout:      defaultActionTimeout,
		logger:       logger.With("module", "action_executor"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute runs one action invocation against the trigger context. Failures
// of any kind, including unresolved required parameters, integration errors
// and timeouts, are returned as a failure result rather than an error so
// they never cross the workflow boundary as exceptions.
func (e *Executor) Execute(ctx context.Context, inv models.ActionInvocation, triggerContext map[string]any) models.ActionResult {
	result := models.ActionResult{
		ActionType: inv.ActionType,
		StartedAt:  time.Now().UTC(),
	}

	logger := e.logger.With("action_type", inv.ActionType)

	params, err := e.resolveParameters(inv, triggerContext)
	if err != nil {
		logger.Warn("Parameter resolution failed", "error", err)

		return e.failure(result, err)
	}

	actionCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	output, err := e.dispatch(actionCtx, inv.ActionType, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("action timed out after %s", e.timeout)
		}

		logger.Warn("Action failed", "error", err)

		return e.failure(result, err)
	}

	result.Status = models.ActionResultSuccess
	result.Output = output
	result.CompletedAt = time.Now().UTC()

	logger.Debug("Action completed", "output", output)

	return result
}

func (e *Executor) failure(result models.ActionResult, err error) models.ActionResult {
	result.Status = models.ActionResultFailure
	result.Error = err.Error()
	result.CompletedAt = time.Now().UTC()

	return result
}

// resolveParameters applies the binding resolution and fills declared
// defaults for anything the context could not supply. A required parameter
// left unresolved with no default is an error.
func (e *Executor) resolveParameters(inv models.ActionInvocation, triggerContext map[string]any) (map[string]any, error) {
	resolution := bindings.Resolve(inv.Parameters, triggerContext)

	defaults := map[string]any{}
	required := map[string]bool{}

	if def, ok := e.registry.Get(inv.ActionType); ok {
		defaults = def.ParamDefaults()

		for _, name := range def.RequiredParams() {
			required[name] = true
		}
	}

	for name, value := range defaults {
		if _, bound := resolution.Values[name]; !bound {
			resolution.Values[name] = value
		}
	}

	var missing []string

	for _, name := range resolution.Unresolved {
		if _, filled := resolution.Values[name]; filled {
			continue
		}

		if required[name] {
			missing = append(missing, name)
		}
	}

	for name := range required {
		if _, bound := resolution.Values[name]; !bound {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)

		return nil, fmt.Errorf("unresolved required parameter(s): %s", strings.Join(missing, ", "))
	}

	return resolution.Values, nil
}

func (e *Executor) dispatch(ctx context.Context, actionType string, params map[string]any) (map[string]any, error) {
	switch actionType {
	case registry.ActionCreateTicket:
		ref, err := e.integrations.Ticketing.CreateTicket(ctx, integrations.Ticket{
			Title:       stringParam(params, "title"),
			Description: stringParam(params, "description"),
			Priority:    stringParam(params, "priority"),
		})
		if err != nil {
			return nil, err
		}

		return map[string]any{"ticket_ref": ref}, nil

	case registry.ActionUpdateTicket:
		fields, _ := params["fields"].(map[string]any)

		err := e.integrations.Ticketing.UpdateTicket(ctx, stringParam(params, "ticket_ref"), fields)
		if err != nil {
			return nil, err
		}

		return map[string]any{"ticket_ref": stringParam(params, "ticket_ref")}, nil

	case registry.ActionSendNotification:
		channel := stringParam(params, "channel")

		err := e.integrations.Notifier.Send(ctx, channel, map[string]any{
			"message": params["message"],
		})
		if err != nil {
			return nil, err
		}

		return map[string]any{"channel": channel}, nil

	case registry.ActionSIEMAlert:
		details, _ := params["details"].(map[string]any)

		ref, err := e.integrations.SIEM.SendAlert(ctx, integrations.Alert{
			Title:    stringParam(params, "title"),
			Severity: stringParam(params, "severity"),
			Details:  details,
		})
		if err != nil {
			return nil, err
		}

		return map[string]any{"siem_ref": ref}, nil

	case registry.ActionSIEMEnrich:
		ref, err := e.integrations.SIEM.Enrich(ctx, integrations.EnrichmentRequest{
			Indicator: stringParam(params, "indicator"),
			Kind:      stringParam(params, "kind"),
		})
		if err != nil {
			return nil, err
		}

		return map[string]any{"enrichment_ref": ref}, nil

	case registry.ActionIsolateHost:
		return map[string]any{
			"host":     stringParam(params, "host"),
			"isolated": true,
			"reason":   stringParam(params, "reason"),
		}, nil

	case registry.ActionTagAsset:
		return map[string]any{
			"asset":  stringParam(params, "asset"),
			"tag":    stringParam(params, "tag"),
			"tagged": true,
		}, nil

	case registry.ActionRunSimulation:
		return map[string]any{
			"scenario": stringParam(params, "scenario"),
			"scope":    stringParam(params, "scope"),
			"queued":   true,
		}, nil

	default:
		return nil, fmt.Errorf("action type %q has no dispatcher", actionType)
	}
}

func stringParam(params map[string]any, name string) string {
	value, ok := params[name]
	if !ok || value == nil {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", value)
}
