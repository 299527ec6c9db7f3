package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	clientmodels "onboarding/internal/client/models"
	"onboarding/internal/completeness/engine"
	"onboarding/internal/completeness/metrics"
	"onboarding/internal/document/models"
	"onboarding/internal/reportcache"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/audit"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/requestcontext"
)

var tracer = otel.Tracer("onboarding/internal/completeness/service")

type ClientStore interface {
	FindByID(ctx context.Context, clientID id.ClientID) (*clientmodels.ClientProfile, error)
	FindByRFC(ctx context.Context, rfc id.RFC) (*clientmodels.ClientProfile, error)
}

type DocumentStore interface {
	ListCurrentByClient(ctx context.Context, clientID id.ClientID) ([]models.DocumentRecord, error)
}

type TypeRegistry interface {
	ListApplicable(ctx context.Context, pt id.PersonType) ([]models.DocumentTypeDefinition, error)
}

// Service loads a client's inputs and runs the completeness engine.
type Service struct {
	clients        ClientStore
	documents      DocumentStore
	types          TypeRegistry
	memo           reportcache.Memo
	logger         *slog.Logger
	auditPublisher audit.Emitter
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMemo enables report memoisation keyed by client and inputs hash.
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

func New(clients ClientStore, documents DocumentStore, types TypeRegistry, opts ...Option) *Service {
	s := &Service{clients: clients, documents: documents, types: types}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// memoInputs is everything the report depends on. The clock only matters
// at day granularity.
type memoInputs struct {
	Profile clientmodels.ClientProfile      `json:"profile"`
	Records []models.DocumentRecord         `json:"records"`
	Types   []models.DocumentTypeDefinition `json:"types"`
	Day     string                          `json:"day"`
}

// Evaluate returns the completeness report for a client as of the request clock.
func (s *Service) Evaluate(ctx context.Context, clientID id.ClientID) (*engine.Report, error) {
	ctx, span := tracer.Start(ctx, "completeness.Evaluate", trace.WithAttributes(
		attribute.String("client_id", clientID.String()),
	))
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveEvaluateLatency(time.Since(start)) }()

	profile, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, translateClientErr(err)
	}
	records, defs, err := s.loadInputs(ctx, profile)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := requestcontext.Now(ctx)
	key, err := reportcache.Key(clientID, memoInputs{
		Profile: *profile, Records: records, Types: defs, Day: models.Day(now).Format(time.DateOnly),
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to key completeness report")
	}

	var cached engine.Report
	if hit, err := reportcache.Lookup(ctx, s.memo, key, &cached); err != nil {
		s.warn(ctx, "completeness memo lookup failed", err)
	} else if hit {
		s.metrics.IncrementMemo(true)
		span.SetAttributes(attribute.Bool("memo_hit", true))
		cached.EvaluatedAt = now.UTC()
		return &cached, nil
	}
	if s.memo != nil {
		s.metrics.IncrementMemo(false)
	}

	report := engine.Evaluate(*profile, records, defs, now)
	if err := reportcache.Store(ctx, s.memo, key, report); err != nil {
		s.warn(ctx, "completeness memo store failed", err)
	}

	s.logAudit(ctx, report)
	s.metrics.ObserveEvaluation(string(report.NextAction), report.Percentage)
	span.SetAttributes(
		attribute.Int("percentage", report.Percentage),
		attribute.Bool("can_proceed", report.CanProceed),
	)
	return &report, nil
}

// ReturningReport answers whether a returning client can reuse documents.
type ReturningReport struct {
	ClientID   id.ClientID   `json:"client_id"`
	PersonType id.PersonType `json:"person_type"`
	engine.ReturningResult
}

// EvaluateReturningClient looks a client up by tax id and checks whether
// its current documents can be reused.
func (s *Service) EvaluateReturningClient(ctx context.Context, rfc id.RFC) (*ReturningReport, error) {
	ctx, span := tracer.Start(ctx, "completeness.EvaluateReturningClient")
	defer span.End()

	profile, err := s.clients.FindByRFC(ctx, rfc)
	if err != nil {
		return nil, translateClientErr(err)
	}
	records, defs, err := s.loadInputs(ctx, profile)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	result := engine.EvaluateReturning(records, defs, requestcontext.Now(ctx))
	return &ReturningReport{ClientID: profile.ID, PersonType: profile.PersonType, ReturningResult: result}, nil
}

func (s *Service) loadInputs(ctx context.Context, profile *clientmodels.ClientProfile) ([]models.DocumentRecord, []models.DocumentTypeDefinition, error) {
	records, err := s.documents.ListCurrentByClient(ctx, profile.ID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	defs, err := s.types.ListApplicable(ctx, profile.PersonType)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list document types")
	}
	return records, defs, nil
}

func translateClientErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "client not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
}

func (s *Service) warn(ctx context.Context, msg string, err error) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
}

func (s *Service) logAudit(ctx context.Context, report engine.Report) {
	event := string(audit.EventCompletenessEvaluated)
	requestID := requestcontext.RequestID(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, event,
			"client_id", report.ClientID.String(),
			"percentage", report.Percentage,
			"can_proceed", report.CanProceed,
			"next_action", string(report.NextAction),
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
		Decision:  string(report.NextAction),
		RequestID: requestID,
		ActorID:   requestcontext.ActorID(ctx),
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
