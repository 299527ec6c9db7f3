// Package engine cross-checks analyzer-extracted document fields against a
// client's declared profile. Pure domain logic: no I/O, time is a parameter.
package engine

import (
	"math"
	"sort"
	"strings"
	"time"

	clientmodels "onboarding/internal/client/models"
	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	pstrings "onboarding/pkg/platform/strings"
)

// Score penalties per discrepancy severity and the coherence threshold.
const (
	PenaltyHigh   = 20
	PenaltyMedium = 10
	PenaltyLow    = 5

	CoherentThreshold = 80

	// FraudThreshold is the number of high discrepancies that escalates to
	// a possible-fraud alert.
	FraudThreshold = 3
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Outcome is the per-field verdict.
type Outcome string

const (
	OutcomeMatch    Outcome = "coincide"
	OutcomeMismatch Outcome = "discrepante"
)

// FieldResult is one compared field of one document.
type FieldResult struct {
	Field         string  `json:"field"`
	ClientValue   string  `json:"client_value"`
	DocumentValue string  `json:"document_value"`
	Outcome       Outcome `json:"outcome"`
}

type Discrepancy struct {
	DocumentID     id.DocumentID     `json:"document_id"`
	TypeID         id.DocumentTypeID `json:"type_id"`
	Field          string            `json:"field"`
	ClientValue    string            `json:"client_value"`
	DocumentValue  string            `json:"document_value"`
	Severity       Severity          `json:"severity"`
	Impact         string            `json:"impact"`
	RequiresReview bool              `json:"requires_review"`
}

// DocumentResult is the validation of one analyzed document.
type DocumentResult struct {
	DocumentID    id.DocumentID     `json:"document_id"`
	TypeID        id.DocumentTypeID `json:"type_id"`
	Category      models.Category   `json:"category"`
	IsValid       bool              `json:"is_valid"`
	Confidence    float64           `json:"confidence"`
	Fields        []FieldResult     `json:"fields"`
	Discrepancies []Discrepancy     `json:"discrepancies"`
}

// ValidateAgainstClient runs the comparator for the document's category.
// Fields the client did not declare are skipped; declared fields missing
// from the document are low-severity discrepancies. A compared field whose
// extracted value is not a string is a validation error.
func ValidateAgainstClient(profile clientmodels.ClientProfile, def models.DocumentTypeDefinition, extracted models.ExtractedFieldSet) (DocumentResult, error) {
	result := DocumentResult{
		TypeID:        def.ID,
		Category:      def.Category,
		IsValid:       extracted.IsValid,
		Confidence:    extracted.Confidence,
		Fields:        []FieldResult{},
		Discrepancies: []Discrepancy{},
	}
	compare, ok := comparators[def.Category]
	if !ok {
		return result, nil
	}

	for _, rule := range compare(profile) {
		declared := strings.TrimSpace(rule.client)
		if declared == "" {
			continue
		}
		value, err := stringField(extracted.Fields, rule.key)
		if err != nil {
			return DocumentResult{}, err
		}

		field := FieldResult{Field: rule.key, ClientValue: declared, DocumentValue: value}
		if value == "" {
			field.Outcome = OutcomeMismatch
			result.Fields = append(result.Fields, field)
			result.Discrepancies = append(result.Discrepancies, Discrepancy{
				TypeID:      def.ID,
				Field:       rule.key,
				ClientValue: declared,
				Severity:    SeverityLow,
				Impact:      "The " + rule.key + " could not be read from the document.",
			})
			continue
		}

		matched, severity := rule.kind.matches(declared, value)
		if matched {
			field.Outcome = OutcomeMatch
			result.Fields = append(result.Fields, field)
			continue
		}
		field.Outcome = OutcomeMismatch
		result.Fields = append(result.Fields, field)
		result.Discrepancies = append(result.Discrepancies, Discrepancy{
			TypeID:         def.ID,
			Field:          rule.key,
			ClientValue:    declared,
			DocumentValue:  value,
			Severity:       severity,
			Impact:         rule.kind.impact(rule.key),
			RequiresReview: severity != SeverityLow,
		})
	}
	return result, nil
}

func stringField(fields map[string]any, key string) (string, error) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", dErrors.Newf(dErrors.CodeValidation, "extracted field %q must be a string, got %T", key, raw)
	}
	return strings.TrimSpace(s), nil
}

// ComputeCoherenceScore is the matched-field share minus severity penalties,
// rounded and clamped to [0, 100]. With no compared fields the score is 0.
func ComputeCoherenceScore(results []DocumentResult) int {
	matched, mismatched := 0, 0
	penalty := 0
	for _, r := range results {
		for _, f := range r.Fields {
			if f.Outcome == OutcomeMatch {
				matched++
			} else {
				mismatched++
			}
		}
		for _, d := range r.Discrepancies {
			penalty += d.Severity.penalty()
		}
	}
	if matched+mismatched == 0 {
		return 0
	}
	base := 100 * float64(matched) / float64(matched+mismatched)
	score := int(math.Round(base - float64(penalty)))
	return min(max(score, 0), 100)
}

func (s Severity) penalty() int {
	switch s {
	case SeverityHigh:
		return PenaltyHigh
	case SeverityMedium:
		return PenaltyMedium
	default:
		return PenaltyLow
	}
}

// DocumentInput pairs an accepted record with its type and analyzer output.
type DocumentInput struct {
	Record    models.DocumentRecord
	Type      models.DocumentTypeDefinition
	Extracted models.ExtractedFieldSet
}

// Report is the coherence evaluation of one client.
type Report struct {
	ClientID        id.ClientID      `json:"client_id"`
	PersonType      id.PersonType    `json:"person_type"`
	Score           int              `json:"score"`
	IsCoherent      bool             `json:"is_coherent"`
	PerDocument     []DocumentResult `json:"per_document"`
	Discrepancies   []Discrepancy    `json:"discrepancies"`
	Alerts          []Alert          `json:"alerts"`
	Recommendations []string         `json:"recommendations"`
	EvaluatedAt     time.Time        `json:"evaluated_at"`
}

// Evaluate validates every document, then aggregates score, alerts and
// recommendations.
func Evaluate(profile clientmodels.ClientProfile, inputs []DocumentInput, now time.Time) (Report, error) {
	report := Report{
		ClientID:      profile.ID,
		PersonType:    profile.PersonType,
		PerDocument:   make([]DocumentResult, 0, len(inputs)),
		Discrepancies: []Discrepancy{},
		EvaluatedAt:   now.UTC(),
	}

	for _, in := range inputs {
		result, err := ValidateAgainstClient(profile, in.Type, in.Extracted)
		if err != nil {
			return Report{}, err
		}
		result.DocumentID = in.Record.ID
		for i := range result.Discrepancies {
			result.Discrepancies[i].DocumentID = in.Record.ID
		}
		report.PerDocument = append(report.PerDocument, result)
		report.Discrepancies = append(report.Discrepancies, result.Discrepancies...)
	}
	sort.SliceStable(report.Discrepancies, func(i, j int) bool {
		return report.Discrepancies[i].Severity.rank() < report.Discrepancies[j].Severity.rank()
	})

	report.Score = ComputeCoherenceScore(report.PerDocument)
	report.IsCoherent = report.Score >= CoherentThreshold && countSeverity(report.Discrepancies, SeverityHigh) == 0
	report.Alerts = alerts(profile.PersonType, report.PerDocument, report.Discrepancies)
	report.Recommendations = recommendations(profile.PersonType, report.Discrepancies, report.Alerts)
	return report, nil
}

func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

func countSeverity(discrepancies []Discrepancy, severity Severity) int {
	n := 0
	for _, d := range discrepancies {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// fieldsWith lists the distinct field names carrying a severity.
func fieldsWith(discrepancies []Discrepancy, severity Severity) string {
	var fields []string
	for _, d := range discrepancies {
		if d.Severity == severity {
			fields = append(fields, d.Field)
		}
	}
	return strings.Join(pstrings.DedupeAndTrim(fields), ", ")
}
