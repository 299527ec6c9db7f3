// Package sweeper runs the document expiration sweep on a schedule.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"onboarding/internal/document/service"
	"onboarding/pkg/requestcontext"
)

// Sweeper is the document service operation the worker drives.
type Sweeper interface {
	Sweep(ctx context.Context) (*service.SweepResult, error)
}

// Worker calls Sweep once at start and then every interval until ctx is
// cancelled. Failed sweeps are logged and retried on the next tick.
type Worker struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *slog.Logger
	clock    func() time.Time
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithClock overrides the wall clock used to stamp each sweep.
func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		w.clock = clock
	}
}

func New(sweeper Sweeper, interval time.Duration, opts ...Option) *Worker {
	w := &Worker{
		sweeper:  sweeper,
		interval: interval,
		logger:   slog.Default(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done and returns ctx.Err().
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			w.RunOnce(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs one sweep pinned to the worker clock and returns the
// number of records expired.
func (w *Worker) RunOnce(ctx context.Context) int {
	now := w.clock()
	result, err := w.sweeper.Sweep(requestcontext.WithTime(ctx, now))
	if err != nil {
		w.logger.ErrorContext(ctx, "expiration sweep failed", "error", err)
		return 0
	}
	if n := len(result.Transitions); n > 0 {
		w.logger.InfoContext(ctx, "expiration sweep finished", "expired", n, "swept_at", now.UTC())
		return n
	}
	w.logger.DebugContext(ctx, "expiration sweep found nothing to expire")
	return 0
}
