package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/internal/document/models"
	"onboarding/internal/document/service"
	"onboarding/pkg/requestcontext"
)

type recordingSweeper struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (r *recordingSweeper) Sweep(ctx context.Context) (*service.SweepResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, requestcontext.Now(ctx))
	if r.err != nil {
		return nil, r.err
	}
	return &service.SweepResult{Transitions: []models.Transition{{To: models.StatusExpired}}}, nil
}

func (r *recordingSweeper) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnce_PinsClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	rec := &recordingSweeper{}
	w := New(rec, time.Hour, WithLogger(quietLogger()), WithClock(func() time.Time { return fixed }))

	assert.Equal(t, 1, w.RunOnce(context.Background()))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, fixed, rec.calls[0])
}

func TestRunOnce_SwallowsErrors(t *testing.T) {
	rec := &recordingSweeper{err: errors.New("db down")}
	w := New(rec, time.Hour, WithLogger(quietLogger()))
	assert.Equal(t, 0, w.RunOnce(context.Background()))
}

func TestRun_SweepsUntilCancelled(t *testing.T) {
	rec := &recordingSweeper{}
	w := New(rec, 5*time.Millisecond, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return rec.count() >= 3 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
