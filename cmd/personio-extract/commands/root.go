package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/syncwell/personio-extract/internal/app"
	"github.com/syncwell/personio-extract/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "personio-extract",
		Usage: "Personio data extraction client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			authCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run an extraction against the Personio API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json|otlp|otlp-stdout)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.BoolFlag{
				Name:  "server--enabled",
				Usage: "serve /healthz and /status during the run",
			},
			&cli.StringFlag{
				Name:  "server--host",
				Usage: "status server host",
				Value: app.DefaultConfigServerHost,
			},
			&cli.IntFlag{
				Name:  "server--port",
				Usage: "status server port",
				Value: int(app.DefaultConfigServerPort),
			},
			&cli.StringFlag{
				Name:  "api--base-url",
				Usage: "Personio API base URL",
				Value: app.DefaultConfigAPIBaseURL,
			},
			&cli.StringSliceFlag{
				Name:  "extract--streams",
				Usage: "streams to extract (employees|time_offs|attendances)",
			},
			&cli.StringFlag{
				Name:  "extract--output",
				Usage: "output path for JSON lines, - for stdout",
				Value: app.DefaultConfigOutput,
			},
			&cli.IntFlag{
				Name:  "extract--page-size",
				Usage: "records per API page",
				Value: app.DefaultConfigPageSize,
			},
			&cli.StringFlag{
				Name:  "extract--start-date",
				Usage: "window start for time-bound streams (2006-01-02)",
			},
			&cli.StringFlag{
				Name:  "extract--end-date",
				Usage: "window end for time-bound streams (2006-01-02)",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set up observability before creating app
	shutdownLogs, err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat))
	if err != nil {
		return fmt.Errorf("failed to set up observability layer: %w", err)
	}
	defer func() { _ = shutdownLogs(context.Background()) }()

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	slog.InfoContext(ctx, "starting")

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	slog.InfoContext(ctx, "finished")
	return nil
}
