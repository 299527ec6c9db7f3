package handler

import (
	"strings"
	"time"

	"onboarding/internal/document/models"
	"onboarding/internal/document/service"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// RegisterDocumentRequest is the body of POST /clients/{clientID}/documents.
type RegisterDocumentRequest struct {
	TypeID        string `json:"type_id"`
	DocumentDate  string `json:"document_date"`
	FileReference string `json:"file_reference"`

	parsedTypeID id.DocumentTypeID
	parsedDate   time.Time
}

// Validate implements httputil.Validatable.
func (r *RegisterDocumentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.FileReference) > 1024 {
		return dErrors.New(dErrors.CodeValidation, "file_reference must be at most 1024 characters")
	}
	r.FileReference = strings.TrimSpace(r.FileReference)
	if r.FileReference == "" {
		return dErrors.New(dErrors.CodeValidation, "file_reference is required")
	}

	typeID, err := id.ParseDocumentTypeID(r.TypeID)
	if err != nil {
		return err
	}
	r.parsedTypeID = typeID

	date, err := models.ParseDocumentDate(r.DocumentDate)
	if err != nil {
		return err
	}
	r.parsedDate = date
	return nil
}

// ReviewRequest is the body of POST /documents/{documentID}/review.
type ReviewRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`

	parsedDecision service.Decision
}

// Validate implements httputil.Validatable. Rejections need a comment so the
// client knows what to fix.
func (r *ReviewRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Comment) > 2000 {
		return dErrors.New(dErrors.CodeValidation, "comment must be at most 2000 characters")
	}
	r.Comment = strings.TrimSpace(r.Comment)
	decision, err := service.ParseDecision(strings.ToLower(strings.TrimSpace(r.Decision)))
	if err != nil {
		return err
	}
	if decision == service.DecisionReject && r.Comment == "" {
		return dErrors.New(dErrors.CodeValidation, "comment is required when rejecting a document")
	}
	r.parsedDecision = decision
	return nil
}
