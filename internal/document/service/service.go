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
	"onboarding/internal/document/metrics"
	"onboarding/internal/document/models"
	"onboarding/pkg/attrs"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/audit"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/requestcontext"
)

var tracer = otel.Tracer("onboarding/internal/document/service")

// Store persists document records. RunInTx gives Review and Sweep an
// atomic read-modify-write.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Save(ctx context.Context, r models.DocumentRecord) error
	FindByID(ctx context.Context, documentID id.DocumentID) (*models.DocumentRecord, error)
	ListByClient(ctx context.Context, clientID id.ClientID) ([]models.DocumentRecord, error)
	ListCurrentByClient(ctx context.Context, clientID id.ClientID) ([]models.DocumentRecord, error)
	ListSweepable(ctx context.Context, now time.Time) ([]models.DocumentRecord, error)
}

// TypeRegistry resolves document type definitions.
type TypeRegistry interface {
	FindByID(ctx context.Context, typeID id.DocumentTypeID) (*models.DocumentTypeDefinition, error)
}

// ClientLookup resolves the owner of a document.
type ClientLookup interface {
	FindByID(ctx context.Context, clientID id.ClientID) (*clientmodels.ClientProfile, error)
}

// Service manages uploaded document records through their lifecycle.
type Service struct {
	documents      Store
	types          TypeRegistry
	clients        ClientLookup
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

func New(documents Store, types TypeRegistry, clients ClientLookup, opts ...Option) *Service {
	s := &Service{documents: documents, types: types, clients: clients}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput describes an uploaded document.
type RegisterInput struct {
	ClientID      id.ClientID
	TypeID        id.DocumentTypeID
	DocumentDate  time.Time
	FileReference string
}

// Register creates a pending record for an upload. The expiration date is
// fixed here from the type's current validity window.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.DocumentRecord, error) {
	ctx, span := tracer.Start(ctx, "document.Register", trace.WithAttributes(
		attribute.String("client_id", in.ClientID.String()),
		attribute.String("type_id", string(in.TypeID)),
	))
	defer span.End()

	client, err := s.loadClient(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	def, err := s.types.FindByID(ctx, in.TypeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "document type %q not found", in.TypeID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document type")
	}
	if !def.AppliesToPersonType(client.PersonType) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "document type %q does not apply to person type %s", def.ID, client.PersonType)
	}

	record, err := models.NewDocumentRecord(models.NewDocumentParams{
		ID:            id.NewDocumentID(),
		ClientID:      client.ID,
		Type:          *def,
		DocumentDate:  in.DocumentDate,
		FileReference: in.FileReference,
		Now:           requestcontext.Now(ctx),
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}

	if err := s.documents.Save(ctx, *record); err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save document")
	}

	s.logAudit(ctx, string(audit.EventDocumentRegistered),
		"client_id", record.ClientID.String(),
		"document_id", record.ID.String(),
		"type_id", string(record.TypeID),
	)
	s.metrics.IncrementRegistered(string(record.TypeID))
	return record, nil
}

// Decision is a reviewer outcome.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision parses a reviewer decision.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionAccept, DecisionReject:
		return d, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "decision must be %q or %q", DecisionAccept, DecisionReject)
}

// ReviewInput is a reviewer decision on a pending document.
type ReviewInput struct {
	DocumentID id.DocumentID
	Decision   Decision
	Comment    string
}

// Review applies a reviewer decision. The reviewer is the authenticated
// actor. Documents that are no longer pending return CodeConflict, as does
// accepting a document already past its expiration.
func (s *Service) Review(ctx context.Context, in ReviewInput) (*models.DocumentRecord, error) {
	ctx, span := tracer.Start(ctx, "document.Review", trace.WithAttributes(
		attribute.String("document_id", in.DocumentID.String()),
		attribute.String("decision", string(in.Decision)),
	))
	defer span.End()

	reviewer := requestcontext.ActorID(ctx)
	if reviewer == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "reviewer identity required")
	}
	now := requestcontext.Now(ctx)

	var reviewed models.DocumentRecord
	err := s.documents.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.documents.FindByID(ctx, in.DocumentID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "document not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
		}

		switch in.Decision {
		case DecisionAccept:
			if current.IsPastExpiration(now) {
				return dErrors.New(dErrors.CodeConflict, "document is past its expiration date and cannot be accepted")
			}
			reviewed, err = current.Accept(reviewer, in.Comment, now)
		case DecisionReject:
			reviewed, err = current.Reject(reviewer, in.Comment, now)
		default:
			return dErrors.Newf(dErrors.CodeValidation, "unknown decision %q", in.Decision)
		}
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return dErrors.Wrap(err, dErrors.CodeConflict, dErrors.MessageOf(err))
			}
			return err
		}
		if err := s.documents.Save(ctx, reviewed); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save review")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	event := audit.EventDocumentAccepted
	if reviewed.Status == models.StatusRejected {
		event = audit.EventDocumentRejected
	}
	s.logAudit(ctx, string(event),
		"client_id", reviewed.ClientID.String(),
		"document_id", reviewed.ID.String(),
		"type_id", string(reviewed.TypeID),
		"actor_id", reviewer,
		"decision", string(reviewed.Status),
		"reason", reviewed.ReviewerComment,
	)
	s.metrics.IncrementReview(string(in.Decision))
	return &reviewed, nil
}

// CurrentDocument is a current record with its validity derived at read time.
type CurrentDocument struct {
	models.DocumentRecord
	ValidNow            bool `json:"valid_now"`
	DaysUntilExpiration *int `json:"days_until_expiration,omitempty"`
	NeedsRenewal        bool `json:"needs_renewal"`
}

// ListCurrent returns the most current record per type for the client.
func (s *Service) ListCurrent(ctx context.Context, clientID id.ClientID) ([]CurrentDocument, error) {
	if _, err := s.loadClient(ctx, clientID); err != nil {
		return nil, err
	}
	records, err := s.documents.ListCurrentByClient(ctx, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	now := requestcontext.Now(ctx)
	out := make([]CurrentDocument, 0, len(records))
	for _, r := range records {
		out = append(out, CurrentDocument{
			DocumentRecord:      r,
			ValidNow:            r.IsValidNow(now),
			DaysUntilExpiration: r.DaysUntilExpiration(now),
			NeedsRenewal:        r.NeedsRenewal(now),
		})
	}
	return out, nil
}

// History returns every record the client ever uploaded, oldest first.
func (s *Service) History(ctx context.Context, clientID id.ClientID) ([]models.DocumentRecord, error) {
	if _, err := s.loadClient(ctx, clientID); err != nil {
		return nil, err
	}
	records, err := s.documents.ListByClient(ctx, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return records, nil
}

// SweepResult lists the transitions applied by one sweep.
type SweepResult struct {
	Transitions []models.Transition `json:"transitions"`
	SweptAt     time.Time           `json:"swept_at"`
}

// Sweep expires every pending or accepted record past its expiration date
// as of the request clock. Running it again at the same instant is a no-op.
func (s *Service) Sweep(ctx context.Context) (*SweepResult, error) {
	ctx, span := tracer.Start(ctx, "document.Sweep")
	defer span.End()
	start := time.Now()
	now := requestcontext.Now(ctx)

	var transitions []models.Transition
	err := s.documents.RunInTx(ctx, func(ctx context.Context) error {
		candidates, err := s.documents.ListSweepable(ctx, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sweepable documents")
		}
		swept, applied := models.SweepExpired(candidates, now)
		changed := make(map[id.DocumentID]bool, len(applied))
		for _, t := range applied {
			changed[t.DocumentID] = true
		}
		for _, r := range swept {
			if !changed[r.ID] {
				continue
			}
			if err := s.documents.Save(ctx, r); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save expired document")
			}
		}
		transitions = applied
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	for _, t := range transitions {
		s.logAudit(ctx, string(audit.EventDocumentExpired),
			"client_id", t.ClientID.String(),
			"document_id", t.DocumentID.String(),
			"type_id", string(t.TypeID),
			"reason", "expired from "+string(t.From),
		)
	}
	span.SetAttributes(attribute.Int("expired", len(transitions)))
	s.metrics.ObserveSweep(len(transitions), time.Since(start))
	return &SweepResult{Transitions: transitions, SweptAt: now.UTC()}, nil
}

func (s *Service) loadClient(ctx context.Context, clientID id.ClientID) (*clientmodels.ClientProfile, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}
	return client, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}
	if s.auditPublisher == nil {
		return
	}
	clientID, _ := id.ParseClientID(attrs.String(attributes, "client_id"))
	documentID, _ := id.ParseDocumentID(attrs.String(attributes, "document_id"))
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		ClientID:   clientID,
		DocumentID: documentID,
		Subject:    attrs.String(attributes, "type_id"),
		Action:     event,
		Decision:   attrs.String(attributes, "decision"),
		Reason:     attrs.String(attributes, "reason"),
		RequestID:  requestID,
		ActorID:    attrs.String(attributes, "actor_id"),
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
