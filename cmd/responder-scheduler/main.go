// Package main provides the schedule daemon that fires time-based triggers.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/sentinelsec/responder/pkg/cmd"
	"github.com/sentinelsec/responder/pkg/engine"
	"github.com/sentinelsec/responder/pkg/executor"
	"github.com/sentinelsec/responder/pkg/log"
	"github.com/sentinelsec/responder/pkg/registry"
	"github.com/sentinelsec/responder/pkg/scheduler"
)

func main() {
	command := &cli.Command{
		Name:                  "responder-scheduler",
		Usage:                 "Fire scheduled workflow triggers",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.DurationFlag{
				Name:    "interval",
				Usage:   "Polling interval for due schedules",
				Value:   30 * time.Second,
				Sources: cli.EnvVars("SCHEDULER_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "siem-url",
				Usage:   "Base URL of the SIEM integration endpoint",
				Sources: cli.EnvVars("SIEM_URL"),
			},
			&cli.StringFlag{
				Name:    "ticketing-url",
				Usage:   "Base URL of the ticketing integration endpoint",
				Sources: cli.EnvVars("TICKETING_URL"),
			},
			&cli.StringFlag{
				Name:    "notification-url",
				Usage:   "Base URL of the notification gateway",
				Sources: cli.EnvVars("NOTIFICATION_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("scheduler")

			logger.InfoContext(ctx, "Initializing Responder Scheduler")

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			integrationSet := cmd.NewIntegrations(
				logger,
				command.String("siem-url"),
				command.String("ticketing-url"),
				command.String("notification-url"),
			)

			reg := registry.NewRegistry(logger)
			exec := executor.NewExecutor(reg, integrationSet, logger)
			eng := engine.New(persistence, reg, exec, integrationSet.Notifier, eventBus, logger)

			sched := scheduler.New(
				persistence.ScheduleRepository(),
				eng,
				logger,
				scheduler.WithInterval(command.Duration("interval")),
			)

			runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err := sched.Start(runCtx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorContext(ctx, "Scheduler stopped with error", "error", err)

				return err
			}

			logger.InfoContext(ctx, "Scheduler shut down")

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
