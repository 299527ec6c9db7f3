package engine

import (
	"strconv"

	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
	pstrings "onboarding/pkg/platform/strings"
)

type AlertType string

const (
	AlertDataInconsistency  AlertType = "data_inconsistency"
	AlertInvalidDocument    AlertType = "invalid_document"
	AlertPossibleFraud      AlertType = "possible_fraud"
	AlertMissingInformation AlertType = "missing_information"
)

type Alert struct {
	Type       AlertType       `json:"type"`
	Message    string          `json:"message"`
	DocumentID *id.DocumentID  `json:"document_id,omitempty"`
	Category   models.Category `json:"category,omitempty"`
}

// MandatoryCategories are the document categories each person type must
// have among its accepted documents.
var MandatoryCategories = map[id.PersonType][]models.Category{
	id.PersonTypeIndividual:         {models.CategoryIdentity, models.CategoryNationalID, models.CategoryProofOfAddress},
	id.PersonTypeIndividualBusiness: {models.CategoryIdentity, models.CategoryTaxRegistration, models.CategoryProofOfAddress},
	id.PersonTypeLegalEntity:        {models.CategoryIncorporation, models.CategoryTaxRegistration, models.CategoryProofOfAddress},
}

func alerts(pt id.PersonType, results []DocumentResult, discrepancies []Discrepancy) []Alert {
	out := []Alert{}
	high := countSeverity(discrepancies, SeverityHigh)
	if high > 0 {
		out = append(out, Alert{
			Type:    AlertDataInconsistency,
			Message: "High-severity discrepancies between documents and declared data: " + fieldsWith(discrepancies, SeverityHigh) + ".",
		})
	}
	for _, r := range results {
		if !r.IsValid {
			docID := r.DocumentID
			out = append(out, Alert{
				Type:       AlertInvalidDocument,
				Message:    "The analyzer flagged document " + string(r.TypeID) + " as invalid.",
				DocumentID: &docID,
				Category:   r.Category,
			})
		}
	}
	if high >= FraudThreshold {
		out = append(out, Alert{
			Type:    AlertPossibleFraud,
			Message: strconv.Itoa(high) + " high-severity discrepancies across documents.",
		})
	}
	for _, c := range missingCategories(pt, results) {
		out = append(out, Alert{
			Type:     AlertMissingInformation,
			Message:  "No accepted " + personTypeLabel(pt) + " document of category " + string(c) + ".",
			Category: c,
		})
	}
	return out
}

func missingCategories(pt id.PersonType, results []DocumentResult) []models.Category {
	present := make(map[models.Category]bool, len(results))
	for _, r := range results {
		present[r.Category] = true
	}
	var missing []models.Category
	for _, c := range MandatoryCategories[pt] {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func personTypeLabel(pt id.PersonType) string {
	switch pt {
	case id.PersonTypeLegalEntity:
		return "legal entity"
	case id.PersonTypeIndividualBusiness:
		return "individual with business activity"
	default:
		return "individual"
	}
}

var personTypeReminders = map[id.PersonType]string{
	id.PersonTypeIndividual:         "Individuals must provide official identification, CURP and proof of address.",
	id.PersonTypeIndividualBusiness: "Individuals with business activity must provide official identification, tax registration certificate and proof of address.",
	id.PersonTypeLegalEntity:        "Legal entities must provide articles of incorporation, tax registration certificate and proof of address.",
}

// recommendations are ordered by urgency and deduplicated.
func recommendations(pt id.PersonType, discrepancies []Discrepancy, alerts []Alert) []string {
	var out []string
	if hasAlert(alerts, AlertPossibleFraud) {
		out = append(out, "Escalate the file for manual fraud review.")
	}
	if fields := fieldsWith(discrepancies, SeverityHigh); fields != "" {
		out = append(out, "Resolve immediately the discrepancies in: "+fields+".")
	}
	if hasAlert(alerts, AlertInvalidDocument) {
		out = append(out, "Request a new, legible copy of the documents flagged as invalid.")
	}
	if fields := fieldsWith(discrepancies, SeverityMedium); fields != "" {
		out = append(out, "Confirm with the client: "+fields+".")
	}
	if fields := fieldsWith(discrepancies, SeverityLow); fields != "" {
		out = append(out, "Check manually the fields the analyzer could not read: "+fields+".")
	}
	if hasAlert(alerts, AlertMissingInformation) {
		out = append(out, personTypeReminders[pt])
	}
	if len(discrepancies) == 0 && len(alerts) == 0 {
		out = append(out, "No discrepancies found; documents are coherent with the declared profile.")
	}
	return pstrings.DedupeAndTrim(out)
}

func hasAlert(alerts []Alert, t AlertType) bool {
	for _, a := range alerts {
		if a.Type == t {
			return true
		}
	}
	return false
}
