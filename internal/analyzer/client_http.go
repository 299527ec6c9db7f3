package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"onboarding/internal/analyzer/metrics"
	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/circuit"
)

var tracer = otel.Tracer("onboarding/internal/analyzer")

// HTTPClient calls the analyzer's JSON API behind a circuit breaker.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *circuit.Breaker
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*HTTPClient)

func WithAPIKey(key string) Option {
	return func(c *HTTPClient) {
		c.apiKey = key
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the transport (tests use httptest servers).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *HTTPClient) {
		c.breaker = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 20 * time.Second},
		breaker:    circuit.New("analyzer"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type analyzeRequest struct {
	FileReference string `json:"file_reference"`
	DeclaredType  string `json:"declared_type"`
}

// Analyze posts the file reference to /v1/analyze and decodes the extracted
// field set.
func (c *HTTPClient) Analyze(ctx context.Context, fileRef string, declaredType id.DocumentTypeID) (*models.ExtractedFieldSet, error) {
	ctx, span := tracer.Start(ctx, "analyzer.Analyze", trace.WithAttributes(
		attribute.String("type_id", string(declaredType)),
	))
	defer span.End()
	start := time.Now()

	result, err := c.analyze(ctx, fileRef, declaredType)
	outcome := "ok"
	if err != nil {
		outcome = string(CategoryOf(err))
		span.RecordError(err)
		span.SetAttributes(attribute.String("error_category", outcome))
	}
	c.metrics.ObserveRequest(string(declaredType), outcome, time.Since(start))
	return result, err
}

func (c *HTTPClient) analyze(ctx context.Context, fileRef string, declaredType id.DocumentTypeID) (*models.ExtractedFieldSet, error) {
	if !c.breaker.Allow() {
		return nil, NewError(ErrorOutage, fileRef, "analyzer unavailable", ErrCircuitOpen)
	}

	body, err := json.Marshal(analyzeRequest{FileReference: fileRef, DeclaredType: string(declaredType)})
	if err != nil {
		return nil, NewError(ErrorInternal, fileRef, "failed to marshal analyze request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, NewError(ErrorInternal, fileRef, "failed to create analyze request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(classifyTransport(fileRef, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, c.fail(NewError(categoryForStatus(resp.StatusCode), fileRef,
			fmt.Sprintf("analyzer returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil))
	}

	var out models.ExtractedFieldSet
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, c.fail(NewError(ErrorContractMismatch, fileRef, "failed to decode analyze response", err))
	}
	if out.Fields == nil {
		out.Fields = map[string]any{}
	}
	c.succeed()
	return &out, nil
}

// fail feeds retryable failures to the breaker. Caller errors such as bad
// data do not count against the analyzer's health.
func (c *HTTPClient) fail(err *Error) *Error {
	if !err.Retryable {
		c.succeed()
		return err
	}
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.Warn("analyzer circuit opened", "category", string(err.Category))
		c.metrics.IncrementCircuitChange(string(circuit.StateOpen))
	}
	return err
}

func (c *HTTPClient) succeed() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("analyzer circuit closed")
		c.metrics.IncrementCircuitChange(string(circuit.StateClosed))
	}
}

func classifyTransport(fileRef string, err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewError(ErrorTimeout, fileRef, "analyzer timed out", err)
	}
	return NewError(ErrorOutage, fileRef, "analyzer request failed", err)
}

func categoryForStatus(status int) ErrorCategory {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorAuthentication
	case status == http.StatusNotFound:
		return ErrorNotFound
	case status == http.StatusTooManyRequests:
		return ErrorRateLimited
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrorBadData
	case status >= 500:
		return ErrorOutage
	default:
		return ErrorContractMismatch
	}
}
