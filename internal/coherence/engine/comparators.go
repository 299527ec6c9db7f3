package engine

import (
	"time"

	clientmodels "onboarding/internal/client/models"
	"onboarding/internal/document/models"
)

// Extracted field keys the analyzer reports.
const (
	FieldFullName          = "full_name"
	FieldLegalName         = "legal_name"
	FieldHolderName        = "holder_name"
	FieldRFC               = "rfc"
	FieldCURP              = "curp"
	FieldBirthDate         = "birth_date"
	FieldIncorporationDate = "incorporation_date"
	FieldAddress           = "address"
	FieldPostalCode        = "postal_code"
)

type fieldKind int

const (
	kindIdentifier fieldKind = iota
	kindDate
	kindName
	kindAddress
	kindPostalCode
)

// fieldRule binds an extracted field to the client's declared value and the
// way the two are compared.
type fieldRule struct {
	key    string
	kind   fieldKind
	client string
}

// comparator lists the checks for one document category.
type comparator func(p clientmodels.ClientProfile) []fieldRule

var comparators = map[models.Category]comparator{
	models.CategoryIdentity: func(p clientmodels.ClientProfile) []fieldRule {
		return []fieldRule{
			{FieldFullName, kindName, p.FullName()},
			{FieldCURP, kindIdentifier, p.CURP.String()},
			{FieldBirthDate, kindDate, dateOf(p.BirthDate)},
			{FieldAddress, kindAddress, p.Address.Line()},
		}
	},
	models.CategoryTaxRegistration: func(p clientmodels.ClientProfile) []fieldRule {
		name := fieldRule{FieldFullName, kindName, p.FullName()}
		if !p.PersonType.IsIndividual() {
			name = fieldRule{FieldLegalName, kindName, p.LegalName}
		}
		return []fieldRule{
			{FieldRFC, kindIdentifier, p.RFC.String()},
			name,
			{FieldAddress, kindAddress, p.Address.Line()},
			{FieldPostalCode, kindPostalCode, p.Address.PostalCode},
		}
	},
	models.CategoryNationalID: func(p clientmodels.ClientProfile) []fieldRule {
		return []fieldRule{
			{FieldCURP, kindIdentifier, p.CURP.String()},
			{FieldFullName, kindName, p.FullName()},
			{FieldBirthDate, kindDate, dateOf(p.BirthDate)},
		}
	},
	models.CategoryProofOfAddress: func(p clientmodels.ClientProfile) []fieldRule {
		return []fieldRule{
			{FieldAddress, kindAddress, p.Address.Line()},
			{FieldPostalCode, kindPostalCode, p.Address.PostalCode},
		}
	},
	models.CategoryIncorporation: func(p clientmodels.ClientProfile) []fieldRule {
		return []fieldRule{
			{FieldLegalName, kindName, p.LegalName},
			{FieldRFC, kindIdentifier, p.RFC.String()},
			{FieldIncorporationDate, kindDate, dateOf(p.IncorporationDate)},
		}
	},
	models.CategoryIncomeProof: func(p clientmodels.ClientProfile) []fieldRule {
		return []fieldRule{
			{FieldFullName, kindName, p.FullName()},
			{FieldRFC, kindIdentifier, p.RFC.String()},
		}
	},
	models.CategoryBankStatement: func(p clientmodels.ClientProfile) []fieldRule {
		return []fieldRule{
			{FieldHolderName, kindName, p.DisplayName()},
			{FieldAddress, kindAddress, p.Address.Line()},
		}
	},
}

func dateOf(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

// matches compares a declared and an extracted value. The returned severity
// applies when they differ.
func (k fieldKind) matches(declared, extracted string) (bool, Severity) {
	switch k {
	case kindDate:
		return NormalizeDate(declared) == NormalizeDate(extracted), SeverityHigh
	case kindName:
		return Normalize(declared) == Normalize(extracted), SeverityHigh
	case kindAddress:
		return AddressesMatch(declared, extracted), SeverityMedium
	case kindPostalCode:
		return NormalizeIdentifier(declared) == NormalizeIdentifier(extracted), SeverityMedium
	default:
		return NormalizeIdentifier(declared) == NormalizeIdentifier(extracted), SeverityHigh
	}
}

func (k fieldKind) impact(key string) string {
	switch k {
	case kindAddress, kindPostalCode:
		return "The document address differs from the declared address; confirm the client's current address."
	case kindDate:
		return "The " + key + " on the document does not match the declared date."
	case kindName:
		return "The " + key + " on the document does not match the declared name."
	default:
		return "The " + key + " on the document does not match the declared identifier."
	}
}
