package models

import (
	"slices"
	"strings"

	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// DocumentTypeDefinition is a catalog entry describing one kind of document.
//
// Invariants:
//   - ID is a valid slug and Name is non-empty
//   - Category is one of the known categories
//   - AppliesTo is non-empty and holds only valid person types
//   - ValidityDays is nil (never expires) or >= 0
type DocumentTypeDefinition struct {
	ID           id.DocumentTypeID `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Category     Category          `json:"category" yaml:"category"`
	AppliesTo    []id.PersonType   `json:"applies_to" yaml:"applies_to"`
	ValidityDays *int              `json:"validity_days,omitempty" yaml:"validity_days,omitempty"`
	Optional     bool              `json:"optional" yaml:"optional"`
}

// Validate checks the definition invariants.
func (d DocumentTypeDefinition) Validate() error {
	if _, err := id.ParseDocumentTypeID(string(d.ID)); err != nil {
		return dErrors.Newf(dErrors.CodeValidation, "document type %q: invalid id", d.ID)
	}
	if strings.TrimSpace(d.Name) == "" {
		return dErrors.Newf(dErrors.CodeValidation, "document type %q: name cannot be empty", d.ID)
	}
	if !d.Category.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "document type %q: unknown category %q", d.ID, d.Category)
	}
	if len(d.AppliesTo) == 0 {
		return dErrors.Newf(dErrors.CodeValidation, "document type %q: applies_to cannot be empty", d.ID)
	}
	for _, pt := range d.AppliesTo {
		if !pt.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "document type %q: invalid person type %q", d.ID, pt)
		}
	}
	if d.ValidityDays != nil && *d.ValidityDays < 0 {
		return dErrors.Newf(dErrors.CodeValidation, "document type %q: validity days cannot be negative", d.ID)
	}
	return nil
}

// AppliesToPersonType reports whether clients of pt must (or may) provide this document.
func (d DocumentTypeDefinition) AppliesToPersonType(pt id.PersonType) bool {
	return slices.Contains(d.AppliesTo, pt)
}

// NeverExpires is true when the type has no validity window.
func (d DocumentTypeDefinition) NeverExpires() bool {
	return d.ValidityDays == nil
}

// Days is a helper for building ValidityDays literals.
func Days(n int) *int {
	return &n
}
