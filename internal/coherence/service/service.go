package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"onboarding/internal/analyzer"
	clientmodels "onboarding/internal/client/models"
	"onboarding/internal/coherence/engine"
	"onboarding/internal/coherence/metrics"
	"onboarding/internal/document/models"
	"onboarding/internal/reportcache"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/audit"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/requestcontext"
)

var tracer = otel.Tracer("onboarding/internal/coherence/service")

const (
	defaultConcurrency     = 4
	defaultAnalyzerTimeout = 30 * time.Second
)

type ClientStore interface {
	FindByID(ctx context.Context, clientID id.ClientID) (*clientmodels.ClientProfile, error)
}

type DocumentStore interface {
	ListCurrentByClient(ctx context.Context, clientID id.ClientID) ([]models.DocumentRecord, error)
}

type TypeRegistry interface {
	FindByID(ctx context.Context, typeID id.DocumentTypeID) (*models.DocumentTypeDefinition, error)
}

// Service gathers analyzer output for a client's accepted documents and
// runs the coherence engine over it.
type Service struct {
	clients         ClientStore
	documents       DocumentStore
	types           TypeRegistry
	analyzer        analyzer.Analyzer
	memo            reportcache.Memo
	concurrency     int
	analyzerTimeout time.Duration
	logger          *slog.Logger
	auditPublisher  audit.Emitter
	metrics         *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMemo(memo reportcache.Memo) Option {
	return func(s *Service) {
		s.memo = memo
	}
}

func WithAuditPublisher(publisher audit.Emitter) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithConcurrency bounds in-flight analyzer calls per evaluation.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithAnalyzerTimeout bounds the whole analysis fan-out of one evaluation.
func WithAnalyzerTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.analyzerTimeout = d
		}
	}
}

func New(clients ClientStore, documents DocumentStore, types TypeRegistry, a analyzer.Analyzer, opts ...Option) *Service {
	s := &Service{
		clients:         clients,
		documents:       documents,
		types:           types,
		analyzer:        a,
		concurrency:     defaultConcurrency,
		analyzerTimeout: defaultAnalyzerTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type memoInputs struct {
	Profile clientmodels.ClientProfile `json:"profile"`
	Records []models.DocumentRecord    `json:"records"`
	Day     string                     `json:"day"`
}

// Evaluate cross-checks every accepted, unexpired document of the client.
// Any analyzer failure aborts the evaluation with CodeUpstream wrapping the
// analyzer error.
func (s *Service) Evaluate(ctx context.Context, clientID id.ClientID) (*engine.Report, error) {
	ctx, span := tracer.Start(ctx, "coherence.Evaluate", trace.WithAttributes(
		attribute.String("client_id", clientID.String()),
	))
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveLatency(time.Since(start)) }()

	report, err := s.evaluate(ctx, clientID)
	if err != nil {
		span.RecordError(err)
		s.metrics.IncrementEvaluation("error")
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("score", report.Score),
		attribute.Bool("is_coherent", report.IsCoherent),
	)
	return report, nil
}

func (s *Service) evaluate(ctx context.Context, clientID id.ClientID) (*engine.Report, error) {
	profile, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}

	now := requestcontext.Now(ctx)
	current, err := s.documents.ListCurrentByClient(ctx, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	accepted := make([]models.DocumentRecord, 0, len(current))
	for _, r := range current {
		if r.IsValidNow(now) {
			accepted = append(accepted, r)
		}
	}

	key, err := reportcache.Key(clientID, memoInputs{Profile: *profile, Records: accepted, Day: models.Day(now).Format(time.DateOnly)})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to key coherence report")
	}
	var cached engine.Report
	if hit, err := reportcache.Lookup(ctx, s.memo, key, &cached); err != nil {
		s.warn(ctx, "coherence memo lookup failed", err)
	} else if hit {
		s.metrics.IncrementMemo(true)
		cached.EvaluatedAt = now.UTC()
		return &cached, nil
	}
	if s.memo != nil {
		s.metrics.IncrementMemo(false)
	}

	inputs, err := s.gather(ctx, accepted)
	if err != nil {
		return nil, err
	}

	report, err := engine.Evaluate(*profile, inputs, now)
	if err != nil {
		return nil, err
	}
	if err := reportcache.Store(ctx, s.memo, key, report); err != nil {
		s.warn(ctx, "coherence memo store failed", err)
	}
	s.record(ctx, report)
	return &report, nil
}

// gather resolves each record's type and analyzes the documents
// concurrently. The first failure cancels the remaining calls.
func (s *Service) gather(ctx context.Context, records []models.DocumentRecord) ([]engine.DocumentInput, error) {
	inputs := make([]engine.DocumentInput, len(records))
	for i, r := range records {
		def, err := s.types.FindByID(ctx, r.TypeID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.Newf(dErrors.CodeNotFound, "document type %s not found", r.TypeID)
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document type")
		}
		inputs[i] = engine.DocumentInput{Record: r, Type: *def}
	}

	ctx, cancel := context.WithTimeout(ctx, s.analyzerTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range inputs {
		g.Go(func() error {
			in := &inputs[i]
			extracted, err := s.analyzer.Analyze(ctx, in.Record.FileReference, in.Record.TypeID)
			if err != nil {
				return err
			}
			in.Extracted = *extracted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "document analysis failed")
	}
	return inputs, nil
}

func (s *Service) record(ctx context.Context, report engine.Report) {
	result := "incoherent"
	if report.IsCoherent {
		result = "coherent"
	}
	s.metrics.IncrementEvaluation(result)
	s.metrics.ObserveScore(report.Score)
	for _, d := range report.Discrepancies {
		s.metrics.IncrementDiscrepancy(string(d.Severity))
	}
	for _, a := range report.Alerts {
		s.metrics.IncrementAlert(string(a.Type))
	}

	event := string(audit.EventCoherenceEvaluated)
	requestID := requestcontext.RequestID(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, event,
			"client_id", report.ClientID.String(),
			"score", report.Score,
			"is_coherent", report.IsCoherent,
			"discrepancies", len(report.Discrepancies),
			"alerts", len(report.Alerts),
			"request_id", requestID,
			"event", event,
			"log_type", "audit",
		)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		ClientID:  report.ClientID,
		Action:    event,
		Decision:  result,
		RequestID: requestID,
		ActorID:   requestcontext.ActorID(ctx),
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}

func (s *Service) warn(ctx context.Context, msg string, err error) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
}
