// Package domain holds typed identifiers and value primitives shared across
// bounded contexts. Parse* constructors are meant for trust boundaries
// (handlers, adapters); they reject malformed input with CodeInvalidInput.
package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	dErrors "onboarding/pkg/domain-errors"
)

// ClientID identifies an onboarding client.
type ClientID uuid.UUID

// DocumentID identifies a single uploaded document record.
type DocumentID uuid.UUID

// DocumentTypeID is the catalog slug of a document kind, e.g. "curp".
type DocumentTypeID string

func (c ClientID) String() string   { return uuid.UUID(c).String() }
func (c ClientID) IsNil() bool      { return uuid.UUID(c) == uuid.Nil }
func (d DocumentID) String() string { return uuid.UUID(d).String() }
func (d DocumentID) IsNil() bool    { return uuid.UUID(d) == uuid.Nil }

func (t DocumentTypeID) String() string { return string(t) }

// MarshalText renders the canonical UUID form so IDs serialise as JSON strings.
func (c ClientID) MarshalText() ([]byte, error) { return uuid.UUID(c).MarshalText() }

func (c *ClientID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(c).UnmarshalText(b)
}

func (d DocumentID) MarshalText() ([]byte, error) { return uuid.UUID(d).MarshalText() }

func (d *DocumentID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(d).UnmarshalText(b)
}

// NewClientID returns a random ClientID.
func NewClientID() ClientID { return ClientID(uuid.New()) }

// NewDocumentID returns a random DocumentID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// ParseClientID parses a non-nil UUID.
func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s, "client_id")
	if err != nil {
		return ClientID{}, err
	}
	return ClientID(u), nil
}

// ParseDocumentID parses a non-nil UUID.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document_id")
	if err != nil {
		return DocumentID{}, err
	}
	return DocumentID(u), nil
}

var documentTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

// ParseDocumentTypeID validates a catalog slug (lower-case, digits, underscores).
func ParseDocumentTypeID(s string) (DocumentTypeID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document type cannot be empty")
	}
	if !documentTypePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid document type")
	}
	return DocumentTypeID(s), nil
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", field)
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", field)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be nil", field)
	}
	return u, nil
}
