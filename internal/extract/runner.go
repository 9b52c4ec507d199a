// Package extract runs extraction jobs against the Personio API and emits
// records as JSON lines, one stream per configured resource.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/syncwell/personio-extract/internal/personio"
)

// Stream names one extractable Personio resource.
type Stream string

const (
	StreamEmployees   Stream = "employees"
	StreamTimeOffs    Stream = "time_offs"
	StreamAttendances Stream = "attendances"
)

// Streams lists every known stream in emission order.
var Streams = []Stream{StreamEmployees, StreamTimeOffs, StreamAttendances}

// Config controls one extraction run.
type Config struct {
	// Streams to extract. Empty means all known streams.
	Streams []Stream

	// PageSize per request, capped by the API at 200.
	PageSize int

	// Concurrency limits how many streams run at once.
	Concurrency int

	// Window bounds time-based streams (time_offs, attendances).
	Window personio.Window
}

// State describes where a run currently is.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Snapshot is a point-in-time view of a run, served by the status endpoint.
type Snapshot struct {
	RunID      string           `json:"run_id,omitempty"`
	State      State            `json:"state"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Records    map[Stream]int64 `json:"records"`
	Error      string           `json:"error,omitempty"`
}

// record is one emitted JSON line.
type record struct {
	Stream    Stream    `json:"stream"`
	EmittedAt time.Time `json:"emitted_at"`
	Record    any       `json:"record"`
}

// Runner pages through the configured streams and writes records to out.
// Streams run concurrently; the shared token provider behind the client
// collapses their token refreshes into one exchange.
type Runner struct {
	client *personio.Client
	cfg    Config

	// outMu serializes record lines from concurrent streams.
	outMu sync.Mutex
	enc   *json.Encoder

	mu       sync.Mutex
	snapshot Snapshot
}

// New creates a Runner writing JSON lines to out.
func New(client *personio.Client, out io.Writer, cfg Config) *Runner {
	if len(cfg.Streams) == 0 {
		cfg.Streams = Streams
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 200 {
		cfg.PageSize = 200
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = len(cfg.Streams)
	}

	return &Runner{
		client: client,
		cfg:    cfg,
		enc:    json.NewEncoder(out),
		snapshot: Snapshot{
			State:   StatePending,
			Records: map[Stream]int64{},
		},
	}
}

// Snapshot returns a copy of the current run state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.snapshot
	snap.Records = make(map[Stream]int64, len(r.snapshot.Records))
	for stream, count := range r.snapshot.Records {
		snap.Records[stream] = count
	}
	return snap
}

// Run extracts every configured stream to exhaustion. It returns the first
// stream error; remaining streams are canceled.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()
	started := time.Now().UTC()

	r.mu.Lock()
	r.snapshot.RunID = runID
	r.snapshot.State = StateRunning
	r.snapshot.StartedAt = &started
	r.mu.Unlock()

	slog.InfoContext(ctx, "extraction run started", "run_id", runID, "streams", r.cfg.Streams)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, stream := range r.cfg.Streams {
		g.Go(func() error {
			if err := r.extractStream(gCtx, stream); err != nil {
				return fmt.Errorf("stream %s: %w", stream, err)
			}
			return nil
		})
	}
	err := g.Wait()

	finished := time.Now().UTC()
	r.mu.Lock()
	r.snapshot.FinishedAt = &finished
	if err != nil {
		r.snapshot.State = StateFailed
		r.snapshot.Error = err.Error()
	} else {
		r.snapshot.State = StateSucceeded
	}
	r.mu.Unlock()

	if err != nil {
		slog.ErrorContext(ctx, "extraction run failed", "run_id", runID, "error", err)
		return err
	}
	slog.InfoContext(ctx, "extraction run finished", "run_id", runID, "duration", finished.Sub(started))
	return nil
}

func (r *Runner) extractStream(ctx context.Context, stream Stream) error {
	offset := 0
	for {
		page := personio.Page{Limit: r.cfg.PageSize, Offset: offset}

		var (
			count int
			err   error
		)
		switch stream {
		case StreamEmployees:
			count, err = emitPage(ctx, r, stream, func() ([]personio.Employee, *personio.Metadata, error) {
				return r.client.Employees(ctx, page)
			})
		case StreamTimeOffs:
			count, err = emitPage(ctx, r, stream, func() ([]personio.TimeOff, *personio.Metadata, error) {
				return r.client.TimeOffs(ctx, page, r.cfg.Window)
			})
		case StreamAttendances:
			count, err = emitPage(ctx, r, stream, func() ([]personio.Attendance, *personio.Metadata, error) {
				return r.client.Attendances(ctx, page, r.cfg.Window)
			})
		default:
			return fmt.Errorf("unknown stream %q", stream)
		}
		if err != nil {
			return err
		}

		// A short page means the listing is exhausted.
		if count < r.cfg.PageSize {
			return nil
		}
		offset += count
	}
}

// emitPage fetches one page and writes its records, returning the page size.
func emitPage[T any](ctx context.Context, r *Runner, stream Stream, fetch func() ([]T, *personio.Metadata, error)) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	items, _, err := fetch()
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		if err := r.emit(stream, item); err != nil {
			return 0, err
		}
	}

	r.mu.Lock()
	r.snapshot.Records[stream] += int64(len(items))
	r.mu.Unlock()

	return len(items), nil
}

func (r *Runner) emit(stream Stream, item any) error {
	r.outMu.Lock()
	defer r.outMu.Unlock()

	return r.enc.Encode(record{
		Stream:    stream,
		EmittedAt: time.Now().UTC(),
		Record:    item,
	})
}
