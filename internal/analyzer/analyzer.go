// Package analyzer talks to the external document analyzer that reads
// structured fields out of uploaded files.
package analyzer

import (
	"context"

	"onboarding/internal/document/models"
	id "onboarding/pkg/domain"
)

// Analyzer extracts fields from one stored file. Implementations are
// untrusted and fallible; failures are *Error values.
type Analyzer interface {
	Analyze(ctx context.Context, fileRef string, declaredType id.DocumentTypeID) (*models.ExtractedFieldSet, error)
}
