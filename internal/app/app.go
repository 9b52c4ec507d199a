package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"golang.org/x/sync/errgroup"

	"github.com/syncwell/personio-extract/internal/auth"
	"github.com/syncwell/personio-extract/internal/extract"
	"github.com/syncwell/personio-extract/internal/personio"
	"github.com/syncwell/personio-extract/internal/status"
)

// App orchestrates one extraction run and the optional status server.
type App struct {
	cfg      *Config
	registry *auth.Registry
}

// New creates a new App instance. No I/O is performed until Start.
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &App{
		cfg:      cfg,
		registry: auth.NewRegistry(),
	}, nil
}

// Start runs the extraction and blocks until it finishes or ctx is
// canceled. When the status server is enabled it serves for the duration
// of the run and is shut down afterwards.
func (a *App) Start(ctx context.Context) error {
	secret, err := a.cfg.Auth.ResolveClientSecret(ctx)
	if err != nil {
		return err
	}

	// One provider per credential set; streams sharing it share one token.
	provider, err := a.registry.Provider(auth.ProviderConfig{
		Endpoint: a.cfg.API.AuthURL(),
		Credentials: auth.Credentials{
			ClientID:     a.cfg.Auth.ClientID,
			ClientSecret: secret,
		},
		DefaultExpiration: a.cfg.Auth.DefaultExpiration,
	})
	if err != nil {
		return fmt.Errorf("failed to create token provider: %w", err)
	}

	client, err := personio.NewClient(a.cfg.API.BaseURL, provider)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	out, closeOut, err := openOutput(a.cfg.Extract.Output)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	defer closeOut()

	window, err := extractionWindow(a.cfg.Extract)
	if err != nil {
		return err
	}

	runner := extract.New(client, out, extract.Config{
		Streams:     streams(a.cfg.Extract.Streams),
		PageSize:    a.cfg.Extract.PageSize,
		Concurrency: a.cfg.Extract.Concurrency,
		Window:      window,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)
	var shutdownFuncs []func(context.Context) error

	// Startup phase: Start services
	if a.cfg.Server.Enabled {
		address := a.cfg.Server.Host + ":" + strconv.FormatUint(uint64(a.cfg.Server.Port), 10)
		slog.InfoContext(gCtx, "starting status server", "address", address)

		statusServer := status.New(runner)
		statusErrCh, err := statusServer.Start(gCtx, address)
		if err != nil {
			return fmt.Errorf("status server startup failed: %w", err)
		}
		shutdownFuncs = append(shutdownFuncs, statusServer.Shutdown)

		// Monitor runtime errors - errgroup cancels context on first error
		g.Go(func() error {
			select {
			case err := <-statusErrCh:
				if err != nil {
					slog.ErrorContext(gCtx, "status server runtime error", "error", err)
					return fmt.Errorf("status server: %w", err)
				}
				return nil
			case <-gCtx.Done():
				return nil
			}
		})
	}

	g.Go(func() error {
		// Run completion unblocks the status server monitor.
		defer cancel()
		return runner.Run(gCtx)
	})

	runtimeErr := g.Wait()

	// Shutdown phase: Stop all services
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancelShutdown()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, runtimeErr)
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("extraction complete")
	return nil
}

// streams converts configured stream names to extract.Stream values.
func streams(names []string) []extract.Stream {
	out := make([]extract.Stream, 0, len(names))
	for _, name := range names {
		out = append(out, extract.Stream(name))
	}
	return out
}

// extractionWindow parses the configured date bounds.
func extractionWindow(cfg ExtractConfig) (personio.Window, error) {
	var window personio.Window
	if cfg.StartDate != "" {
		start, err := time.Parse(time.DateOnly, cfg.StartDate)
		if err != nil {
			return window, fmt.Errorf("invalid extract.start_date: %w", err)
		}
		window.Start = &openapi_types.Date{Time: start}
	}
	if cfg.EndDate != "" {
		end, err := time.Parse(time.DateOnly, cfg.EndDate)
		if err != nil {
			return window, fmt.Errorf("invalid extract.end_date: %w", err)
		}
		window.End = &openapi_types.Date{Time: end}
	}
	return window, nil
}

// openOutput opens the record sink; "-" means stdout.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
