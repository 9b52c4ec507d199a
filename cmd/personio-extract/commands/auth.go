package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/syncwell/personio-extract/internal/auth"
	"github.com/syncwell/personio-extract/internal/observability"
)

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "manage Personio API credentials",
		Commands: []*cli.Command{
			{
				Name:   "configure",
				Usage:  "store the client secret in the configured secret store",
				Action: authConfigureAction,
			},
			{
				Name:   "check",
				Usage:  "perform a token exchange to verify the credentials",
				Action: authCheckAction,
			},
		},
	}
}

func authConfigureAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := cfg.Auth.Secret.NewStore()
	if err != nil {
		return fmt.Errorf("failed to create secret store: %w", err)
	}

	secret, err := promptSecret("Client secret: ")
	if err != nil {
		return err
	}
	if secret == "" {
		return errors.New("client secret cannot be empty")
	}

	if err := store.Write(ctx, secret); err != nil {
		return fmt.Errorf("failed to store client secret: %w", err)
	}

	fmt.Fprintln(os.Stderr, "client secret stored")
	return nil
}

func authCheckAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	shutdownLogs, err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat))
	if err != nil {
		return fmt.Errorf("failed to set up observability layer: %w", err)
	}
	defer func() { _ = shutdownLogs(context.Background()) }()

	secret, err := cfg.Auth.ResolveClientSecret(ctx)
	if err != nil {
		return err
	}

	provider, err := auth.NewProvider(
		auth.Credentials{ClientID: cfg.Auth.ClientID, ClientSecret: secret},
		auth.WithEndpoint(cfg.API.AuthURL()),
		auth.WithDefaultExpiration(cfg.Auth.DefaultExpiration),
	)
	if err != nil {
		return err
	}

	if err := provider.Refresh(ctx); err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}

	slog.InfoContext(ctx, "credential check succeeded", "client_id", cfg.Auth.ClientID)
	fmt.Fprintln(os.Stderr, "credentials ok")
	return nil
}

// promptSecret reads a line from the terminal without echo. Falls back to a
// plain read when stdin is not a terminal (piped input in CI).
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
