package domain

import (
	"regexp"
	"strings"

	dErrors "onboarding/pkg/domain-errors"
)

// RFC is a Mexican tax identifier: 12 characters for legal entities, 13 for
// individuals. Stored upper-cased without separators.
type RFC string

// CURP is the 18-character national population registry code.
type CURP string

var (
	rfcPattern  = regexp.MustCompile(`^[A-ZÑ&]{3,4}[0-9]{6}[A-Z0-9]{3}$`)
	curpPattern = regexp.MustCompile(`^[A-Z][AEIOUX][A-Z]{2}[0-9]{6}[HM][A-Z]{5}[A-Z0-9][0-9]$`)
)

// ParseRFC normalises and validates a tax id.
func ParseRFC(s string) (RFC, error) {
	v := compactUpper(s)
	if v == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "rfc cannot be empty")
	}
	if !rfcPattern.MatchString(v) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid rfc")
	}
	return RFC(v), nil
}

// ParseCURP normalises and validates a national id.
func ParseCURP(s string) (CURP, error) {
	v := compactUpper(s)
	if v == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "curp cannot be empty")
	}
	if !curpPattern.MatchString(v) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid curp")
	}
	return CURP(v), nil
}

// IsLegalEntity reports whether the RFC has the 12-character company shape.
func (r RFC) IsLegalEntity() bool {
	return len([]rune(string(r))) == 12
}

func (r RFC) String() string  { return string(r) }
func (c CURP) String() string { return string(c) }

func compactUpper(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}
