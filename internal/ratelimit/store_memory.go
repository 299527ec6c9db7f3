package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often Allow scans for idle keys.
const sweepInterval = time.Minute

type bucket struct {
	hits   []time.Time
	window time.Duration
}

// InMemory is a single-process sliding window limiter. Use Redis when more
// than one instance serves traffic.
type InMemory struct {
	mu        sync.Mutex
	windows   map[string]*bucket
	nextSweep time.Time
	now       func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{windows: make(map[string]*bucket), now: time.Now}
}

// WithClock overrides the time source (tests).
func (s *InMemory) WithClock(now func() time.Time) *InMemory {
	s.now = now
	return s
}

func (s *InMemory) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictIdle(now)

	var hits []time.Time
	if b, ok := s.windows[key]; ok {
		hits = prune(b.hits, now.Add(-window))
	}

	if len(hits) >= limit {
		resetAt := now.Add(window)
		if len(hits) > 0 {
			resetAt = hits[0].Add(window)
			s.windows[key] = &bucket{hits: hits, window: window}
		} else {
			delete(s.windows, key)
		}
		return &Result{
			Allowed:    false,
			Limit:      limit,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	hits = append(hits, now)
	s.windows[key] = &bucket{hits: hits, window: window}
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(hits),
		ResetAt:   hits[0].Add(window),
	}, nil
}

// evictIdle drops keys whose newest hit has left its window. Callers hold mu.
func (s *InMemory) evictIdle(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	s.nextSweep = now.Add(sweepInterval)
	for key, b := range s.windows {
		if len(b.hits) == 0 || !b.hits[len(b.hits)-1].After(now.Add(-b.window)) {
			delete(s.windows, key)
		}
	}
}

// prune drops timestamps at or before cutoff; hits are kept oldest first.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(hits); i++ {
		if hits[i].After(cutoff) {
			break
		}
	}
	return hits[i:]
}
