package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome int

const (
	fail outcome = iota
	succeed
)

func TestBreaker_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		successes int
		calls     []outcome
		wantOpen  bool
		wantOpens int
	}{
		{
			name:     "stays closed below the failure threshold",
			failures: 3, successes: 2,
			calls:    []outcome{fail, fail},
			wantOpen: false,
		},
		{
			name:     "opens on the threshold",
			failures: 3, successes: 2,
			calls:     []outcome{fail, fail, fail},
			wantOpen:  true,
			wantOpens: 1,
		},
		{
			name:     "a success resets the failure streak",
			failures: 3, successes: 2,
			calls:    []outcome{fail, fail, succeed, fail, fail},
			wantOpen: false,
		},
		{
			name:     "needs consecutive successes to close",
			failures: 1, successes: 2,
			calls:     []outcome{fail, succeed},
			wantOpen:  true,
			wantOpens: 1,
		},
		{
			name:     "closes after the success threshold",
			failures: 1, successes: 2,
			calls:     []outcome{fail, succeed, succeed},
			wantOpen:  false,
			wantOpens: 1,
		},
		{
			name:     "a failure while open restarts the success count",
			failures: 1, successes: 3,
			calls:     []outcome{fail, succeed, succeed, fail, succeed, succeed},
			wantOpen:  true,
			wantOpens: 1,
		},
		{
			name:     "reopens after closing",
			failures: 1, successes: 1,
			calls:     []outcome{fail, succeed, fail},
			wantOpen:  true,
			wantOpens: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("analyzer", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.successes))
			opens := 0
			for _, call := range tt.calls {
				if call == fail {
					if _, change := b.RecordFailure(); change.Opened {
						opens++
					}
					continue
				}
				b.RecordSuccess()
			}
			assert.Equal(t, tt.wantOpen, b.IsOpen())
			assert.Equal(t, tt.wantOpens, opens)
		})
	}
}

func TestBreaker_Defaults(t *testing.T) {
	b := New("analyzer", WithFailureThreshold(0), WithSuccessThreshold(-1))
	assert.Equal(t, "analyzer", b.Name())
	assert.Equal(t, StateClosed, b.State())

	for range 4 {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen(), "non-positive thresholds keep the default of five")
	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_RecordReturnValues(t *testing.T) {
	b := New("analyzer", WithFailureThreshold(1))

	useFallback, change := b.RecordFailure()
	require.True(t, useFallback)
	require.True(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback, "still open")
	assert.False(t, change.Opened, "no second transition")

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary)
	assert.False(t, change.Closed)

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.False(t, change.Closed, "already closed")
}

func TestBreaker_AllowsProbeAfterCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := New("analyzer", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(func() time.Time { return now }))

	assert.True(t, b.Allow())
	b.RecordFailure()
	assert.False(t, b.Allow(), "open breaker rejects inside the cooldown")

	now = now.Add(time.Minute)
	assert.True(t, b.Allow(), "one probe after cooldown")
	assert.False(t, b.Allow(), "second probe waits for the next window")

	now = now.Add(time.Minute)
	assert.True(t, b.Allow())
}
