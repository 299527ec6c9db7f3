package audit

import (
	"context"
	"time"

	id "onboarding/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers reviewer decisions and document lifecycle
	// changes that must be reconstructable for regulators.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity such as report evaluations.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from services to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category   EventCategory `json:"category"`
	Timestamp  time.Time     `json:"timestamp"`
	ClientID   id.ClientID   `json:"client_id"`
	DocumentID id.DocumentID `json:"document_id"`
	Subject    string        `json:"subject,omitempty"`
	Action     string        `json:"action"`
	Decision   string        `json:"decision,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	RequestID  string        `json:"request_id,omitempty"`
	// ActorID is the reviewer or administrator; empty for system actions
	// such as the expiration sweep.
	ActorID string `json:"actor_id,omitempty"`
}

type AuditEvent string

const (
	EventDocumentRegistered AuditEvent = "document_registered"
	EventDocumentAccepted   AuditEvent = "document_accepted"
	EventDocumentRejected   AuditEvent = "document_rejected"
	EventDocumentExpired    AuditEvent = "document_expired"

	EventCompletenessEvaluated AuditEvent = "completeness_evaluated"
	EventCoherenceEvaluated    AuditEvent = "coherence_evaluated"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDocumentRegistered: CategoryCompliance,
	EventDocumentAccepted:   CategoryCompliance,
	EventDocumentRejected:   CategoryCompliance,
	EventDocumentExpired:    CategoryCompliance,

	EventCompletenessEvaluated: CategoryOperations,
	EventCoherenceEvaluated:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader lists persisted events for a client, oldest first.
type Reader interface {
	ListByClient(ctx context.Context, clientID id.ClientID) ([]Event, error)
}

// Emitter is the port services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
