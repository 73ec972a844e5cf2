package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/sentinelsec/responder/pkg/engine"
	"github.com/sentinelsec/responder/pkg/models"
	"github.com/sentinelsec/responder/pkg/persistence"
	"github.com/sentinelsec/responder/pkg/registry"
	"github.com/sentinelsec/responder/pkg/services"
)

type APIHandlers struct {
	engine          *engine.Engine
	templateService *services.Template
	scheduleService *services.Schedule
	validator       *validator.Validate
	registry        *registry.Registry
	persistence     persistence.Persistence
}

func NewAPIHandlers(
	eng *engine.Engine,
	templateService *services.Template,
	scheduleService *services.Schedule,
	validator *validator.Validate,
	registry *registry.Registry,
	persistence persistence.Persistence,
) *APIHandlers {
	return &APIHandlers{
		engine:          eng,
		templateService: templateService,
		scheduleService: scheduleService,
		validator:       validator,
		registry:        registry,
		persistence:     persistence,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repOk := h.persistence.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk == nil {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	repository := "ok"
	if repOk != nil {
		repository = repOk.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repository,
		},
		"timestamp": time.Now().UTC(),
	})
}

// Workflows

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	filter := persistence.WorkflowFilter{}

	if enabledStr := c.Query("enabled"); enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return badRequest(c, "Invalid enabled filter: "+err.Error())
		}

		filter.Enabled = &enabled
	}

	if triggerStr := c.Query("trigger"); triggerStr != "" {
		trigger := models.TriggerType(triggerStr)
		if !trigger.Valid() {
			return badRequest(c, "Unknown trigger type: "+triggerStr)
		}

		filter.Trigger = &trigger
	}

	workflows, err := h.engine.ListWorkflows(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.engine.GetWorkflow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.engine.CreateWorkflow(c.Context(), req.ToModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var patch engine.UpdateWorkflowPatch
	if err := c.Bind().JSON(&patch); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	updated, err := h.engine.UpdateWorkflow(c.Context(), id, patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.engine.DeleteWorkflow(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Triggering

func (h *APIHandlers) TriggerWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req TriggerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if req.Context == nil {
		req.Context = map[string]any{}
	}

	executions, err := h.engine.TriggerWorkflow(c.Context(), id, req.Context)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"executions": executions,
		"matched":    len(executions),
	})
}

func (h *APIHandlers) IngestEvent(c fiber.Ctx) error {
	trigger := models.TriggerType(c.Params("type"))
	if !trigger.Valid() {
		return badRequest(c, "Unknown trigger type: "+c.Params("type"))
	}

	var req TriggerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if req.Context == nil {
		req.Context = map[string]any{}
	}

	executions, err := h.engine.TriggerWorkflows(c.Context(), trigger, req.Context)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"executions": executions,
		"matched":    len(executions),
	})
}

// Executions

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	limit := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit: "+err.Error())
		}

		limit = parsed
	}

	executions, err := h.persistence.ExecutionRepository().List(c.Context(), limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions":  executions,
		"total_count": len(executions),
	})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.engine.GetExecution(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	limit := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit: "+err.Error())
		}

		limit = parsed
	}

	executions, err := h.engine.WorkflowExecutions(c.Context(), id, limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions":  executions,
		"total_count": len(executions),
	})
}

func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.engine.CancelExecution(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetWorkflowStats(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	stats, err := h.engine.Stats(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stats)
}

// Templates

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	filter := persistence.TemplateFilter{
		Category: c.Query("category"),
	}

	if publicStr := c.Query("public"); publicStr != "" {
		public, err := strconv.ParseBool(publicStr)
		if err != nil {
			return badRequest(c, "Invalid public filter: "+err.Error())
		}

		filter.Public = &public
	}

	templates, err := h.templateService.List(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"templates":   templates,
		"total_count": len(templates),
	})
}

func (h *APIHandlers) CreateTemplate(c fiber.Ctx) error {
	var req CreateTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	template := &models.Template{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Trigger:           req.Trigger,
		DefaultConditions: req.DefaultConditions,
		DefaultActions:    req.DefaultActions,
		Public:            req.Public,
		CreatedBy:         req.CreatedBy,
	}

	created, err := h.templateService.Create(c.Context(), template)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) InstantiateTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	var req InstantiateTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow, err := h.templateService.Instantiate(c.Context(), id, req.Name, req.Custom)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) DeleteTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	if err := h.templateService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Action library

func (h *APIHandlers) GetActions(c fiber.Ctx) error {
	actions := h.registry.List(c.Query("type"), c.Query("category"))

	return c.JSON(fiber.Map{
		"actions":     actions,
		"total_count": len(actions),
	})
}

// Schedules

func (h *APIHandlers) GetSchedules(c fiber.Ctx) error {
	schedules, err := h.scheduleService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"schedules":   schedules,
		"total_count": len(schedules),
	})
}

func (h *APIHandlers) CreateSchedule(c fiber.Ctx) error {
	var req CreateScheduleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	schedule, err := h.scheduleService.Create(c.Context(), req.WorkflowID, req.CronExpression, req.Timezone, req.DefaultContext)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(schedule)
}

func (h *APIHandlers) DeleteSchedule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Schedule ID is required")
	}

	if err := h.scheduleService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
