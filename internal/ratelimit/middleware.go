package ratelimit

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"onboarding/internal/ratelimit/metrics"
	"onboarding/pkg/platform/httputil"
)

// KeyFunc derives the bucket a request counts against.
type KeyFunc func(r *http.Request) string

// ByRemoteIP keys requests by caller address. Mount chi's RealIP
// middleware first when running behind a proxy.
func ByRemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type Middleware struct {
	limiter  Limiter
	limit    int
	window   time.Duration
	name     string
	key      KeyFunc
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

func WithKeyFunc(fn KeyFunc) Option {
	return func(m *Middleware) {
		m.key = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// WithDisabled passes every request through (local runs, tests).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// New builds a middleware allowing limit requests per window for each key.
// name prefixes the bucket so separate route groups do not share counters.
func New(limiter Limiter, name string, limit int, window time.Duration, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		name:    name,
		key:     ByRemoteIP,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler rejects over-limit requests with 429. Limiter failures let the
// request through.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled || m.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		result, err := m.limiter.Allow(r.Context(), m.name+":"+m.key(r), m.limit, m.window)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "rate limit check failed", "limiter", m.name, "error", err)
			m.metrics.Observe("error")
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if !result.Allowed {
			m.metrics.Observe("rejected")
			writeRateLimitExceeded(w, result)
			return
		}
		m.metrics.Observe("allowed")
		next.ServeHTTP(w, r)
	})
}

type rateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

func addRateLimitHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *Result) {
	retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, rateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many evaluation requests. Please try again later.",
		RetryAfter: retryAfter,
	})
}
