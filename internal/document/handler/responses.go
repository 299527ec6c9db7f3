package handler

import (
	"onboarding/internal/document/models"
	"onboarding/internal/document/service"
	id "onboarding/pkg/domain"
)

// TypesResponse is the body of GET /document-types.
type TypesResponse struct {
	PersonType    string                          `json:"person_type"`
	DocumentTypes []models.DocumentTypeDefinition `json:"document_types"`
}

// CurrentResponse is the body of GET /clients/{clientID}/documents.
type CurrentResponse struct {
	ClientID  id.ClientID               `json:"client_id"`
	Documents []service.CurrentDocument `json:"documents"`
}

// HistoryResponse is the body of GET /clients/{clientID}/documents?history=true.
type HistoryResponse struct {
	ClientID  id.ClientID             `json:"client_id"`
	Documents []models.DocumentRecord `json:"documents"`
}
