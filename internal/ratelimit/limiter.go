// Package ratelimit throttles the endpoints that fan out to the document
// analyzer, using a sliding window per caller.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is zero when the request was allowed.
	RetryAfter time.Duration
}

// Limiter counts requests per key inside a sliding window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
