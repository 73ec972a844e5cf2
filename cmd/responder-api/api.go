// Package main provides the Responder API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/sentinelsec/responder/pkg/engine"
	"github.com/sentinelsec/responder/pkg/eventbus"
	"github.com/sentinelsec/responder/pkg/executor"
	"github.com/sentinelsec/responder/pkg/integrations"
	"github.com/sentinelsec/responder/pkg/persistence"
	"github.com/sentinelsec/responder/pkg/registry"
	"github.com/sentinelsec/responder/pkg/services"
	"github.com/sentinelsec/responder/pkg/web"
)

type API struct {
	logger       *slog.Logger
	persistence  persistence.Persistence
	eventBus     eventbus.EventBus
	integrations integrations.Set
	validate     *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	integrationSet integrations.Set,
) *API {
	return &API{
		logger:       logger,
		persistence:  persistence,
		eventBus:     eventBus,
		integrations: integrationSet,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	reg := registry.NewRegistry(a.logger)
	exec := executor.NewExecutor(reg, a.integrations, a.logger)
	eng := engine.New(a.persistence, reg, exec, a.integrations.Notifier, a.eventBus, a.logger)

	templateService := services.NewTemplate(a.persistence, eng)
	scheduleService := services.NewSchedule(a.persistence)

	handlers := web.NewAPIHandlers(eng, templateService, scheduleService, a.validate, reg, a.persistence)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Responder API")
	})

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

	t := app.Group("/templates")
	t.Get("/", handlers.GetTemplates)
	t.Post("/", handlers.CreateTemplate)
	t.Post("/:id/instantiate", handlers.InstantiateTemplate)
	t.Delete("/:id", handlers.DeleteTemplate)

	s := app.Group("/schedules")
	s.Get("/", handlers.GetSchedules)
	s.Post("/", handlers.CreateSchedule)
	s.Delete("/:id", handlers.DeleteSchedule)

	app.Get("/actions", handlers.GetActions)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
