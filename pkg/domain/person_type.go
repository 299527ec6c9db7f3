package domain

import dErrors "onboarding/pkg/domain-errors"

// PersonType is the fiscal regime of a client.
// Invariant: the value must be one of the supported codes.
//
// Usage: construct via ParsePersonType at trust boundaries; direct casting
// bypasses validation.
type PersonType string

const (
	// PersonTypeIndividual is a natural person without business activity.
	PersonTypeIndividual PersonType = "PF"
	// PersonTypeIndividualBusiness is a natural person with business activity.
	PersonTypeIndividualBusiness PersonType = "PF_AE"
	// PersonTypeLegalEntity is a company.
	PersonTypeLegalEntity PersonType = "PM"
)

var validPersonTypes = map[PersonType]bool{
	PersonTypeIndividual:         true,
	PersonTypeIndividualBusiness: true,
	PersonTypeLegalEntity:        true,
}

// AllPersonTypes lists the supported person types in a stable order.
func AllPersonTypes() []PersonType {
	return []PersonType{PersonTypeIndividual, PersonTypeIndividualBusiness, PersonTypeLegalEntity}
}

// ParsePersonType constructs a PersonType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParsePersonType(s string) (PersonType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "person type cannot be empty")
	}
	p := PersonType(s)
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid person type")
	}
	return p, nil
}

func (p PersonType) IsValid() bool {
	return validPersonTypes[p]
}

// IsIndividual is true for PF and PF_AE.
func (p PersonType) IsIndividual() bool {
	return p == PersonTypeIndividual || p == PersonTypeIndividualBusiness
}

func (p PersonType) String() string {
	return string(p)
}
