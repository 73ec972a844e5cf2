package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsec/responder/pkg/engine"
	"github.com/sentinelsec/responder/pkg/executor"
	"github.com/sentinelsec/responder/pkg/integrations"
	"github.com/sentinelsec/responder/pkg/persistence/file"
	"github.com/sentinelsec/responder/pkg/registry"
	"github.com/sentinelsec/responder/pkg/services"
)

type apiHarness struct {
	app    *fiber.App
	engine *engine.Engine
}

func newTestAPI(t *testing.T) *apiHarness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := file.NewPersistence(t.TempDir())
	reg := registry.NewRegistry(logger)
	set, _, _, _ := integrations.NewFakeSet()
	exec := executor.NewExecutor(reg, set, logger)
	eng := engine.New(store, reg, exec, set.Notifier, nil, logger)

	templateService := services.NewTemplate(store, eng)
	scheduleService := services.NewSchedule(store)

	handlers := NewAPIHandlers(eng, templateService, scheduleService,
		validator.New(validator.WithRequiredStructEnabled()), reg, store)

	app := fiber.New()

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/trigger", handlers.TriggerWorkflow)
	w.Get("/:id/executions", handlers.GetWorkflowExecutions)
	w.Get("/:id/stats", handlers.GetWorkflowStats)

	app.Post("/triggers/:type", handlers.IngestEvent)

	e := app.Group("/executions")
	e.Get("/", handlers.GetExecutions)
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/cancel", handlers.CancelExecution)

	tg := app.Group("/templates")
	tg.Get("/", handlers.GetTemplates)
	tg.Post("/", handlers.CreateTemplate)
	tg.Post("/:id/instantiate", handlers.InstantiateTemplate)
	tg.Delete("/:id", handlers.DeleteTemplate)

	s := app.Group("/schedules")
	s.Get("/", handlers.GetSchedules)
	s.Post("/", handlers.CreateSchedule)
	s.Delete("/:id", handlers.DeleteSchedule)

	app.Get("/actions", handlers.GetActions)
	app.Get("/health", handlers.HealthCheck)

	return &apiHarness{app: app, engine: eng}
}

func (h *apiHarness) request(t *testing.T, method, target string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return body
}

func workflowPayload() map[string]any {
	return map[string]any{
		"name":    "Escalate critical incidents",
		"trigger": "incident-created",
		"trigger_conditions": []map[string]any{
			{"field": "severity", "operator": "equals", "value": "critical"},
		},
		"actions": []map[string]any{
			{
				"action_type": registry.ActionCreateTicket,
				"parameters":  map[string]any{"title": "{{incident.title}}"},
			},
		},
	}
}

func TestCreateWorkflowEndpoint(t *testing.T) {
	h := newTestAPI(t)

	resp := h.request(t, http.MethodPost, "/workflows/", workflowPayload())

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, true, body["enabled"], "enabled defaults to true when omitted")
}

func TestCreateWorkflowEndpoint_ValidationProblem(t *testing.T) {
	h := newTestAPI(t)

	payload := workflowPayload()
	payload["name"] = "ab"

	resp := h.request(t, http.MethodPost, "/workflows/", payload)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
	assert.NotEmpty(t, body["detail"])
}

func TestCreateWorkflowEndpoint_DomainValidation(t *testing.T) {
	h := newTestAPI(t)

	payload := workflowPayload()
	payload["actions"] = []map[string]any{{"action_type": "no-such-action"}}

	resp := h.request(t, http.MethodPost, "/workflows/", payload)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetWorkflowEndpoint_NotFound(t *testing.T) {
	h := newTestAPI(t)

	resp := h.request(t, http.MethodGet, "/workflows/missing", nil)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "not-found", body["type"])
}

func TestGetWorkflowsEndpoint_Filters(t *testing.T) {
	h := newTestAPI(t)

	h.request(t, http.MethodPost, "/workflows/", workflowPayload())

	resp := h.request(t, http.MethodGet, "/workflows/?enabled=true&trigger=incident-created", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["total_count"])

	resp = h.request(t, http.MethodGet, "/workflows/?trigger=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateWorkflowEndpoint(t *testing.T) {
	h := newTestAPI(t)

	created := decodeBody(t, h.request(t, http.MethodPost, "/workflows/", workflowPayload()))
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	resp := h.request(t, http.MethodPatch, "/workflows/"+id, map[string]any{"enabled": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["enabled"])
	assert.Equal(t, created["name"], body["name"])
}

func TestDeleteWorkflowEndpoint(t *testing.T) {
	h := newTestAPI(t)

	created := decodeBody(t, h.request(t, http.MethodPost, "/workflows/", workflowPayload()))
	id, _ := created["id"].(string)

	resp := h.request(t, http.MethodDelete, "/workflows/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = h.request(t, http.MethodGet, "/workflows/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTriggerWorkflowEndpoint(t *testing.T) {
	h := newTestAPI(t)

	created := decodeBody(t, h.request(t, http.MethodPost, "/workflows/", workflowPayload()))
	id, _ := created["id"].(string)

	resp := h.request(t, http.MethodPost, "/workflows/"+id+"/trigger", map[string]any{
		"context": map[string]any{
			"severity": "critical",
			"incident": map[string]any{"title": "Beacon detected"},
		},
	})

	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["matched"])
}

func TestIngestEventEndpoint(t *testing.T) {
	h := newTestAPI(t)

	h.request(t, http.MethodPost, "/workflows/", workflowPayload())

	resp := h.request(t, http.MethodPost, "/triggers/incident-created", map[string]any{
		"context": map[string]any{
			"severity": "critical",
			"incident": map[string]any{"title": "Beacon detected"},
		},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, float64(1), decodeBody(t, resp)["matched"])

	resp = h.request(t, http.MethodPost, "/triggers/bogus", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecutionEndpoints(t *testing.T) {
	h := newTestAPI(t)

	created := decodeBody(t, h.request(t, http.MethodPost, "/workflows/", workflowPayload()))
	id, _ := created["id"].(string)

	triggered := decodeBody(t, h.request(t, http.MethodPost, "/workflows/"+id+"/trigger", map[string]any{
		"context": map[string]any{
			"severity": "critical",
			"incident": map[string]any{"title": "x"},
		},
	}))

	executions, _ := triggered["executions"].([]any)
	require.Len(t, executions, 1)
	executionID, _ := executions[0].(map[string]any)["id"].(string)
	require.NotEmpty(t, executionID)

	resp := h.request(t, http.MethodGet, "/executions/"+executionID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", decodeBody(t, resp)["status"])

	resp = h.request(t, http.MethodGet, "/workflows/"+id+"/executions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decodeBody(t, resp)["total_count"])

	resp = h.request(t, http.MethodGet, "/workflows/"+id+"/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stats := decodeBody(t, resp)
	assert.Equal(t, float64(1), stats["total"])
	assert.Equal(t, float64(1), stats["completed"])

	// The run already finished, so cancellation conflicts.
	resp = h.request(t, http.MethodPost, "/executions/"+executionID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCancelExecutionEndpoint_NotFound(t *testing.T) {
	h := newTestAPI(t)

	resp := h.request(t, http.MethodPost, "/executions/missing/cancel", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTemplateEndpoints(t *testing.T) {
	h := newTestAPI(t)

	created := decodeBody(t, h.request(t, http.MethodPost, "/templates/", map[string]any{
		"name":     "Containment baseline",
		"category": "containment",
		"trigger":  "incident-created",
		"public":   true,
		"default_actions": []map[string]any{
			{"action_type": registry.ActionIsolateHost, "parameters": map[string]any{"host": "{{incident.host}}"}},
		},
	}))
	templateID, _ := created["id"].(string)
	require.NotEmpty(t, templateID)

	resp := h.request(t, http.MethodGet, "/templates/?category=containment&public=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decodeBody(t, resp)["total_count"])

	resp = h.request(t, http.MethodPost, "/templates/"+templateID+"/instantiate", map[string]any{
		"name": "Contain prod incidents",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	workflow := decodeBody(t, resp)
	assert.Equal(t, "Contain prod incidents", workflow["name"])

	resp = h.request(t, http.MethodDelete, "/templates/"+templateID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestScheduleEndpoints(t *testing.T) {
	h := newTestAPI(t)

	created := decodeBody(t, h.request(t, http.MethodPost, "/workflows/", workflowPayload()))
	workflowID, _ := created["id"].(string)

	resp := h.request(t, http.MethodPost, "/schedules/", map[string]any{
		"workflow_id":     workflowID,
		"cron_expression": "0 2 * * *",
		"timezone":        "UTC",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	schedule := decodeBody(t, resp)
	scheduleID, _ := schedule["id"].(string)
	require.NotEmpty(t, scheduleID)

	resp = h.request(t, http.MethodGet, "/schedules/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decodeBody(t, resp)["total_count"])

	resp = h.request(t, http.MethodPost, "/schedules/", map[string]any{
		"workflow_id":     workflowID,
		"cron_expression": "61 * * * *",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.request(t, http.MethodDelete, "/schedules/"+scheduleID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestActionsEndpoint(t *testing.T) {
	h := newTestAPI(t)

	resp := h.request(t, http.MethodGet, "/actions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(8), decodeBody(t, resp)["total_count"])

	resp = h.request(t, http.MethodGet, "/actions?category=ticketing", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decodeBody(t, resp)["total_count"])
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestAPI(t)

	resp := h.request(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
}

func TestCreateWorkflowEndpoint_MalformedJSON(t *testing.T) {
	h := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/workflows/", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
