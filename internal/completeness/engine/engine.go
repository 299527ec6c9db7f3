// Package engine scores how much of the required onboarding evidence a
// client has provided. Pure domain logic: no I/O, time is a parameter.
package engine

import (
	"math"
	"strings"
	"time"

	clientmodels "onboarding/internal/client/models"
	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
)

// Score weights. The basic-data and address gates are all-or-nothing.
const (
	WeightBasicData = 40
	WeightAddress   = 20
	WeightDocuments = 40

	// ProceedThreshold is the minimum percentage for CanProceed.
	ProceedThreshold = 80
)

// TypeState is the evaluated state of one document type for a client.
type TypeState string

const (
	TypeComplete TypeState = "complete"
	TypePending  TypeState = "pending"
	TypeExpired  TypeState = "expired"
	TypeRejected TypeState = "rejected"
)

// TypeStatus is the per-type line of a completeness report.
type TypeStatus struct {
	TypeID              id.DocumentTypeID `json:"type_id"`
	Name                string            `json:"name"`
	Category            models.Category   `json:"category"`
	Optional            bool              `json:"optional"`
	State               TypeState         `json:"state"`
	DocumentID          *id.DocumentID    `json:"document_id,omitempty"`
	ExpirationDate      *time.Time        `json:"expiration_date,omitempty"`
	DaysUntilExpiration *int              `json:"days_until_expiration,omitempty"`
}

// EvaluateDocumentType decides the state of one type from the records
// uploaded for it. Precedence: optional and empty is complete, empty is
// pending, any valid record is complete, then expired, then rejected, then
// pending.
func EvaluateDocumentType(def models.DocumentTypeDefinition, records []models.DocumentRecord, now time.Time) TypeStatus {
	status := TypeStatus{
		TypeID:   def.ID,
		Name:     def.Name,
		Category: def.Category,
		Optional: def.Optional,
	}

	var matching []models.DocumentRecord
	for _, r := range records {
		if r.TypeID == def.ID {
			matching = append(matching, r)
		}
	}

	if len(matching) == 0 {
		if def.Optional {
			status.State = TypeComplete
		} else {
			status.State = TypePending
		}
		return status
	}

	state, chosen := pick(matching, now)
	status.State = state
	docID := chosen.ID
	status.DocumentID = &docID
	status.ExpirationDate = chosen.ExpirationDate
	status.DaysUntilExpiration = chosen.DaysUntilExpiration(now)
	return status
}

// pick returns the winning state and the record that produced it. Among
// records with the same state the most current one is reported.
func pick(records []models.DocumentRecord, now time.Time) (TypeState, models.DocumentRecord) {
	rank := func(r models.DocumentRecord) (TypeState, int) {
		switch {
		case r.IsValidNow(now):
			return TypeComplete, 4
		case r.IsEffectivelyExpired(now):
			return TypeExpired, 3
		case r.Status == models.StatusRejected:
			return TypeRejected, 2
		default:
			return TypePending, 1
		}
	}

	best := records[0]
	bestState, bestRank := rank(best)
	for _, r := range records[1:] {
		state, score := rank(r)
		if score > bestRank || (score == bestRank && r.IsMoreCurrentThan(best)) {
			best, bestState, bestRank = r, state, score
		}
	}
	return bestState, best
}

// NextAction is the single recommended step for the client.
type NextAction string

const (
	ActionCompleteBasicData NextAction = "complete_basic_data"
	ActionCompleteAddress   NextAction = "complete_address"
	ActionResubmitRejected  NextAction = "resubmit_rejected_documents"
	ActionRenewExpired      NextAction = "renew_expired_documents"
	ActionUploadPending     NextAction = "upload_pending_documents"
	ActionReadyForReview    NextAction = "ready_for_review"
)

// Report is the completeness evaluation of one client.
type Report struct {
	ClientID          id.ClientID   `json:"client_id"`
	PersonType        id.PersonType `json:"person_type"`
	Percentage        int           `json:"percentage"`
	BasicDataComplete bool          `json:"basic_data_complete"`
	AddressComplete   bool          `json:"address_complete"`
	RequiredComplete  int           `json:"required_complete"`
	RequiredTotal     int           `json:"required_total"`
	PerType           []TypeStatus  `json:"per_type"`
	CanProceed        bool          `json:"can_proceed"`
	NextAction        NextAction    `json:"next_action"`
	Message           string        `json:"message"`
	EvaluatedAt       time.Time     `json:"evaluated_at"`
}

// Evaluate scores a client against the document types that apply to its
// person type. records may hold only current records or the full history;
// each type considers every record uploaded for it.
func Evaluate(profile clientmodels.ClientProfile, records []models.DocumentRecord, defs []models.DocumentTypeDefinition, now time.Time) Report {
	report := Report{
		ClientID:          profile.ID,
		PersonType:        profile.PersonType,
		BasicDataComplete: profile.HasBasicData(),
		AddressComplete:   profile.HasFullAddress(),
		EvaluatedAt:       now.UTC(),
	}

	byType := groupByType(records)
	for _, def := range defs {
		if !def.AppliesToPersonType(profile.PersonType) {
			continue
		}
		st := EvaluateDocumentType(def, byType[def.ID], now)
		report.PerType = append(report.PerType, st)
		if def.Optional {
			continue
		}
		report.RequiredTotal++
		if st.State == TypeComplete {
			report.RequiredComplete++
		}
	}

	report.Percentage = Percentage(report.BasicDataComplete, report.AddressComplete, report.RequiredComplete, report.RequiredTotal)
	report.CanProceed = report.Percentage >= ProceedThreshold &&
		!hasState(report.PerType, TypeExpired) &&
		!hasState(report.PerType, TypeRejected)
	report.NextAction, report.Message = nextAction(report)
	return report
}

// Percentage is the weighted completeness score rounded to an integer.
// With no required types the document share counts as complete.
func Percentage(basicData, address bool, requiredComplete, requiredTotal int) int {
	score := 0.0
	if basicData {
		score += WeightBasicData
	}
	if address {
		score += WeightAddress
	}
	if requiredTotal == 0 {
		score += WeightDocuments
	} else {
		score += WeightDocuments * float64(requiredComplete) / float64(requiredTotal)
	}
	return int(math.Round(score))
}

func nextAction(r Report) (NextAction, string) {
	switch {
	case !r.BasicDataComplete:
		return ActionCompleteBasicData, "Complete the client's identity and fiscal data."
	case !r.AddressComplete:
		return ActionCompleteAddress, "Complete the client's postal address."
	case hasState(r.PerType, TypeRejected):
		return ActionResubmitRejected, "Resubmit rejected documents: " + names(r.PerType, TypeRejected) + "."
	case hasState(r.PerType, TypeExpired):
		return ActionRenewExpired, "Renew expired documents: " + names(r.PerType, TypeExpired) + "."
	case hasState(r.PerType, TypePending):
		return ActionUploadPending, "Upload or await review of pending documents: " + names(r.PerType, TypePending) + "."
	default:
		return ActionReadyForReview, "All required information is complete; the file is ready for review."
	}
}

// ReturningResult tells whether a returning client's documents can be reused.
type ReturningResult struct {
	CanReuse  bool                `json:"can_reuse"`
	ToRefresh []id.DocumentTypeID `json:"to_refresh"`
	PerType   []TypeStatus        `json:"per_type"`
}

// EvaluateReturning checks a returning client's existing documents. Reuse
// is allowed when no type is expired or rejected; otherwise ToRefresh lists
// exactly those types.
func EvaluateReturning(records []models.DocumentRecord, defs []models.DocumentTypeDefinition, now time.Time) ReturningResult {
	byType := groupByType(records)
	result := ReturningResult{ToRefresh: []id.DocumentTypeID{}}
	for _, def := range defs {
		st := EvaluateDocumentType(def, byType[def.ID], now)
		result.PerType = append(result.PerType, st)
		if st.State == TypeExpired || st.State == TypeRejected {
			result.ToRefresh = append(result.ToRefresh, def.ID)
		}
	}
	result.CanReuse = len(result.ToRefresh) == 0
	return result
}

func groupByType(records []models.DocumentRecord) map[id.DocumentTypeID][]models.DocumentRecord {
	out := make(map[id.DocumentTypeID][]models.DocumentRecord)
	for _, r := range records {
		out[r.TypeID] = append(out[r.TypeID], r)
	}
	return out
}

func hasState(statuses []TypeStatus, state TypeState) bool {
	for _, st := range statuses {
		if st.State == state {
			return true
		}
	}
	return false
}

func names(statuses []TypeStatus, state TypeState) string {
	var out []string
	for _, st := range statuses {
		if st.State == state {
			out = append(out, st.Name)
		}
	}
	return strings.Join(out, ", ")
}
