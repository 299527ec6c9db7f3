package handler

import (
	"strings"
	"time"

	"onboarding/internal/client/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// RegisterClientRequest is the body of POST /clients.
type RegisterClientRequest struct {
	PersonType        string         `json:"person_type"`
	Name              string         `json:"name"`
	LastName          string         `json:"last_name"`
	SecondLastName    string         `json:"second_last_name"`
	LegalName         string         `json:"legal_name"`
	RFC               string         `json:"rfc"`
	CURP              string         `json:"curp"`
	BirthDate         string         `json:"birth_date"`
	IncorporationDate string         `json:"incorporation_date"`
	Address           models.Address `json:"address"`
	Email             string         `json:"email"`
	Phone             string         `json:"phone"`

	profile models.ClientProfile
}

// Validate parses the request into a profile. Partial profiles are allowed;
// completeness scoring reports what is missing.
func (r *RegisterClientRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	personType, err := id.ParsePersonType(strings.TrimSpace(r.PersonType))
	if err != nil {
		return err
	}
	p := models.ClientProfile{
		PersonType:     personType,
		Name:           strings.TrimSpace(r.Name),
		LastName:       strings.TrimSpace(r.LastName),
		SecondLastName: strings.TrimSpace(r.SecondLastName),
		LegalName:      strings.TrimSpace(r.LegalName),
		Address:        trimAddress(r.Address),
		Email:          strings.TrimSpace(r.Email),
		Phone:          strings.TrimSpace(r.Phone),
	}

	if personType == id.PersonTypeLegalEntity {
		if p.LegalName == "" {
			return dErrors.New(dErrors.CodeValidation, "legal_name is required for legal entities")
		}
		if strings.TrimSpace(r.CURP) != "" || strings.TrimSpace(r.BirthDate) != "" {
			return dErrors.New(dErrors.CodeValidation, "curp and birth_date only apply to individuals")
		}
	} else {
		if p.Name == "" {
			return dErrors.New(dErrors.CodeValidation, "name is required for individuals")
		}
		if strings.TrimSpace(r.IncorporationDate) != "" {
			return dErrors.New(dErrors.CodeValidation, "incorporation_date only applies to legal entities")
		}
	}

	if strings.TrimSpace(r.RFC) != "" {
		rfc, err := id.ParseRFC(r.RFC)
		if err != nil {
			return err
		}
		if rfc.IsLegalEntity() != (personType == id.PersonTypeLegalEntity) {
			return dErrors.New(dErrors.CodeValidation, "rfc length does not match person type")
		}
		p.RFC = rfc
	}
	if strings.TrimSpace(r.CURP) != "" {
		curp, err := id.ParseCURP(r.CURP)
		if err != nil {
			return err
		}
		p.CURP = curp
	}
	if p.BirthDate, err = parseOptionalDate("birth_date", r.BirthDate); err != nil {
		return err
	}
	if p.IncorporationDate, err = parseOptionalDate("incorporation_date", r.IncorporationDate); err != nil {
		return err
	}

	r.profile = p
	return nil
}

// Profile returns the parsed profile.
func (r *RegisterClientRequest) Profile() models.ClientProfile {
	return r.profile
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "%s must be YYYY-MM-DD", field)
	}
	return &t, nil
}

func trimAddress(a models.Address) models.Address {
	return models.Address{
		Street:         strings.TrimSpace(a.Street),
		ExteriorNumber: strings.TrimSpace(a.ExteriorNumber),
		InteriorNumber: strings.TrimSpace(a.InteriorNumber),
		Neighborhood:   strings.TrimSpace(a.Neighborhood),
		Municipality:   strings.TrimSpace(a.Municipality),
		State:          strings.TrimSpace(a.State),
		PostalCode:     strings.TrimSpace(a.PostalCode),
	}
}
