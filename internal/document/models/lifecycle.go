package models

import (
	"strings"
	"time"

	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// MaxDocumentAgeYears bounds how old an uploaded document may be.
const MaxDocumentAgeYears = 5

// documentDateLayouts are tried in order by ParseDocumentDate.
var documentDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	time.RFC3339,
}

// ParseDocumentDate parses an issue date in one of the accepted layouts and
// returns it at UTC midnight.
func ParseDocumentDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "document date is required")
	}
	for _, layout := range documentDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "document date %q is not a recognised date", s)
}

// Day truncates t to midnight UTC of its calendar day. All lifecycle
// comparisons happen at day granularity.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateDocumentDate rejects issue dates in the future or more than
// MaxDocumentAgeYears before now.
func ValidateDocumentDate(documentDate, now time.Time) error {
	if documentDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "document date is required")
	}
	date, today := Day(documentDate), Day(now)
	if date.After(today) {
		return dErrors.New(dErrors.CodeValidation, "document date cannot be in the future")
	}
	if date.Before(today.AddDate(-MaxDocumentAgeYears, 0, 0)) {
		return dErrors.Newf(dErrors.CodeValidation, "document date cannot be more than %d years old", MaxDocumentAgeYears)
	}
	return nil
}

// ExpirationDate returns documentDate + ValidityDays, or nil when the type
// never expires.
func ExpirationDate(def DocumentTypeDefinition, documentDate time.Time) (*time.Time, error) {
	if documentDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "document date is required")
	}
	if def.ValidityDays == nil {
		return nil, nil
	}
	if *def.ValidityDays < 0 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "document type %q has a negative validity window", def.ID)
	}
	exp := Day(documentDate).AddDate(0, 0, *def.ValidityDays)
	return &exp, nil
}

// DocumentRecord is one uploaded document for a client.
//
// Invariants:
//   - ID and ClientID are non-nil, TypeID is set
//   - ExpirationDate is fixed at creation from DocumentDate and the type's
//     validity window at that moment; later catalog changes never alter it
//   - Status transitions follow Status.CanTransitionTo; rejected and
//     expired are terminal, a new upload creates a new record
//
// Records are value snapshots: transitions return a modified copy and the
// caller persists it explicitly.
type DocumentRecord struct {
	ID              id.DocumentID     `json:"id"`
	ClientID        id.ClientID       `json:"client_id"`
	TypeID          id.DocumentTypeID `json:"type_id"`
	DocumentDate    time.Time         `json:"document_date"`
	UploadDate      time.Time         `json:"upload_date"`
	ExpirationDate  *time.Time        `json:"expiration_date,omitempty"`
	Status          Status            `json:"status"`
	ReviewerComment string            `json:"reviewer_comment,omitempty"`
	ReviewedBy      string            `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
	FileReference   string            `json:"file_reference"`
}

// NewDocumentParams carries the inputs of NewDocumentRecord.
type NewDocumentParams struct {
	ID            id.DocumentID
	ClientID      id.ClientID
	Type          DocumentTypeDefinition
	DocumentDate  time.Time
	FileReference string
	Now           time.Time
}

// NewDocumentRecord validates the inputs and creates a pending record with
// its expiration date computed once.
func NewDocumentRecord(p NewDocumentParams) (*DocumentRecord, error) {
	if p.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document id cannot be nil")
	}
	if p.ClientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client id cannot be nil")
	}
	if p.Type.ID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document type is required")
	}
	if strings.TrimSpace(p.FileReference) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "file reference cannot be empty")
	}
	if err := ValidateDocumentDate(p.DocumentDate, p.Now); err != nil {
		return nil, err
	}
	exp, err := ExpirationDate(p.Type, p.DocumentDate)
	if err != nil {
		return nil, err
	}
	return &DocumentRecord{
		ID:             p.ID,
		ClientID:       p.ClientID,
		TypeID:         p.Type.ID,
		DocumentDate:   Day(p.DocumentDate),
		UploadDate:     p.Now.UTC(),
		ExpirationDate: exp,
		Status:         StatusPending,
		FileReference:  strings.TrimSpace(p.FileReference),
	}, nil
}

// IsPastExpiration is true once the expiration day is strictly before today.
func (r DocumentRecord) IsPastExpiration(now time.Time) bool {
	return r.ExpirationDate != nil && Day(*r.ExpirationDate).Before(Day(now))
}

// IsValidNow is true for accepted records whose expiration day is today or later.
func (r DocumentRecord) IsValidNow(now time.Time) bool {
	return r.Status == StatusAccepted && !r.IsPastExpiration(now)
}

// DaysUntilExpiration returns whole days from today to the expiration day,
// negative once expired, nil when the record never expires.
func (r DocumentRecord) DaysUntilExpiration(now time.Time) *int {
	if r.ExpirationDate == nil {
		return nil
	}
	days := int(Day(*r.ExpirationDate).Sub(Day(now)).Hours() / 24)
	return &days
}

// NeedsRenewal is true when the record is expired or rejected, or already
// past its expiration regardless of the stored status.
func (r DocumentRecord) NeedsRenewal(now time.Time) bool {
	return r.Status == StatusExpired || r.Status == StatusRejected || r.IsPastExpiration(now)
}

// IsEffectivelyExpired is true when the status is expired or the record is
// past expiration and not yet swept.
func (r DocumentRecord) IsEffectivelyExpired(now time.Time) bool {
	return r.Status == StatusExpired || (r.Status.CanTransitionTo(StatusExpired) && r.IsPastExpiration(now))
}

// Accept records a reviewer approval. Only pending records can be accepted.
func (r DocumentRecord) Accept(reviewer, comment string, now time.Time) (DocumentRecord, error) {
	return r.review(StatusAccepted, reviewer, comment, now)
}

// Reject records a reviewer rejection. Only pending records can be rejected.
func (r DocumentRecord) Reject(reviewer, comment string, now time.Time) (DocumentRecord, error) {
	return r.review(StatusRejected, reviewer, comment, now)
}

func (r DocumentRecord) review(to Status, reviewer, comment string, now time.Time) (DocumentRecord, error) {
	if strings.TrimSpace(reviewer) == "" {
		return r, dErrors.New(dErrors.CodeInvariantViolation, "reviewer is required")
	}
	if !r.Status.CanTransitionTo(to) {
		return r, dErrors.Newf(dErrors.CodeInvariantViolation, "document is %s and cannot become %s", r.Status, to)
	}
	reviewedAt := now.UTC()
	next := r
	next.Status = to
	next.ReviewedBy = reviewer
	next.ReviewerComment = strings.TrimSpace(comment)
	next.ReviewedAt = &reviewedAt
	return next, nil
}

// Expire applies the time-triggered transition. It fails unless the record
// is pending or accepted and past its expiration day.
func (r DocumentRecord) Expire(now time.Time) (DocumentRecord, error) {
	if !r.Status.CanTransitionTo(StatusExpired) {
		return r, dErrors.Newf(dErrors.CodeInvariantViolation, "document is %s and cannot expire", r.Status)
	}
	if !r.IsPastExpiration(now) {
		return r, dErrors.New(dErrors.CodeInvariantViolation, "document has not reached its expiration date")
	}
	next := r
	next.Status = StatusExpired
	return next, nil
}

// Transition describes one status change produced by SweepExpired.
type Transition struct {
	DocumentID id.DocumentID
	ClientID   id.ClientID
	TypeID     id.DocumentTypeID
	From       Status
	To         Status
}

// SweepExpired returns a copy of records in which every pending or accepted
// record past its expiration is marked expired, plus the transitions made.
// The input slice is not modified. Applying it again with the same now
// yields no further transitions.
func SweepExpired(records []DocumentRecord, now time.Time) ([]DocumentRecord, []Transition) {
	out := make([]DocumentRecord, len(records))
	var transitions []Transition
	for i, r := range records {
		expired, err := r.Expire(now)
		if err != nil {
			out[i] = r
			continue
		}
		out[i] = expired
		transitions = append(transitions, Transition{
			DocumentID: r.ID,
			ClientID:   r.ClientID,
			TypeID:     r.TypeID,
			From:       r.Status,
			To:         StatusExpired,
		})
	}
	return out, transitions
}

// IsMoreCurrentThan orders records of the same type: later upload wins, then
// later document date, then the greater id.
func (r DocumentRecord) IsMoreCurrentThan(other DocumentRecord) bool {
	if !r.UploadDate.Equal(other.UploadDate) {
		return r.UploadDate.After(other.UploadDate)
	}
	if !r.DocumentDate.Equal(other.DocumentDate) {
		return r.DocumentDate.After(other.DocumentDate)
	}
	return r.ID.String() > other.ID.String()
}

// CurrentByType keeps the most current record per document type.
func CurrentByType(records []DocumentRecord) map[id.DocumentTypeID]DocumentRecord {
	current := make(map[id.DocumentTypeID]DocumentRecord, len(records))
	for _, r := range records {
		if existing, ok := current[r.TypeID]; !ok || r.IsMoreCurrentThan(existing) {
			current[r.TypeID] = r
		}
	}
	return current
}
