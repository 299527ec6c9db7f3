package models

import (
	"strings"
	"time"

	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// Address is the declared postal address of a client.
type Address struct {
	Street         string `json:"street"`
	ExteriorNumber string `json:"exterior_number"`
	InteriorNumber string `json:"interior_number,omitempty"`
	Neighborhood   string `json:"neighborhood"`
	Municipality   string `json:"municipality"`
	State          string `json:"state"`
	PostalCode     string `json:"postal_code"`
}

// IsComplete is true when every component except InteriorNumber is present.
func (a Address) IsComplete() bool {
	for _, v := range []string{a.Street, a.ExteriorNumber, a.Neighborhood, a.Municipality, a.State, a.PostalCode} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Line joins the non-empty components into one free-text address.
func (a Address) Line() string {
	parts := make([]string, 0, 7)
	for _, v := range []string{a.Street, a.ExteriorNumber, a.InteriorNumber, a.Neighborhood, a.Municipality, a.State, a.PostalCode} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// ClientProfile is the client's declared data. The verification engines
// read it and never modify it.
//
// Invariants:
//   - ID is non-nil and PersonType is valid
//   - RFC and CURP, when set, are in canonical form
type ClientProfile struct {
	ID                id.ClientID   `json:"id"`
	PersonType        id.PersonType `json:"person_type"`
	Name              string        `json:"name,omitempty"`
	LastName          string        `json:"last_name,omitempty"`
	SecondLastName    string        `json:"second_last_name,omitempty"`
	LegalName         string        `json:"legal_name,omitempty"`
	RFC               id.RFC        `json:"rfc,omitempty"`
	CURP              id.CURP       `json:"curp,omitempty"`
	BirthDate         *time.Time    `json:"birth_date,omitempty"`
	IncorporationDate *time.Time    `json:"incorporation_date,omitempty"`
	Address           Address       `json:"address"`
	Email             string        `json:"email,omitempty"`
	Phone             string        `json:"phone,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// Validate checks the profile invariants.
func (c ClientProfile) Validate() error {
	if c.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "client id cannot be nil")
	}
	if !c.PersonType.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "invalid person type")
	}
	if c.RFC != "" {
		if parsed, err := id.ParseRFC(string(c.RFC)); err != nil || parsed != c.RFC {
			return dErrors.New(dErrors.CodeInvariantViolation, "rfc is not canonical")
		}
	}
	if c.CURP != "" {
		if parsed, err := id.ParseCURP(string(c.CURP)); err != nil || parsed != c.CURP {
			return dErrors.New(dErrors.CodeInvariantViolation, "curp is not canonical")
		}
	}
	return nil
}

// HasBasicData is the all-or-nothing identity/fiscal gate of the
// completeness score. Individuals need full name, RFC, CURP and birth date;
// legal entities need legal name, RFC and incorporation date.
func (c ClientProfile) HasBasicData() bool {
	if c.PersonType == id.PersonTypeLegalEntity {
		return notBlank(c.LegalName) && c.RFC != "" && c.IncorporationDate != nil
	}
	return notBlank(c.Name) && notBlank(c.LastName) && c.RFC != "" && c.CURP != "" && c.BirthDate != nil
}

// HasFullAddress is the address gate of the completeness score.
func (c ClientProfile) HasFullAddress() bool {
	return c.Address.IsComplete()
}

// FullName is the individual's name, empty for legal entities.
func (c ClientProfile) FullName() string {
	if c.PersonType == id.PersonTypeLegalEntity {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, v := range []string{c.Name, c.LastName, c.SecondLastName} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// DisplayName is the full name for individuals and the legal name for companies.
func (c ClientProfile) DisplayName() string {
	if c.PersonType == id.PersonTypeLegalEntity {
		return strings.TrimSpace(c.LegalName)
	}
	return c.FullName()
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
