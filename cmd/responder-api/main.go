package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/sentinelsec/responder/pkg/cmd"
	"github.com/sentinelsec/responder/pkg/log"
)

const defaultPort = 9094

func main() {
	command := &cli.Command{
		Name:                  "responder-api",
		Usage:                 "Create and manage automated response workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
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

			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing Responder API")

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

			api := NewAPI(logger, persistence, eventBus, integrationSet)

			if err := api.Start(int(command.Int("port"))); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
