package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboarding/internal/document/models"
	"onboarding/internal/document/service"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/requestcontext"
)

// Service defines the document operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.DocumentRecord, error)
	Review(ctx context.Context, in service.ReviewInput) (*models.DocumentRecord, error)
	ListCurrent(ctx context.Context, clientID id.ClientID) ([]service.CurrentDocument, error)
	History(ctx context.Context, clientID id.ClientID) ([]models.DocumentRecord, error)
	Sweep(ctx context.Context) (*service.SweepResult, error)
}

// TypeLister lists the catalog entries that apply to a person type.
type TypeLister interface {
	ListApplicable(ctx context.Context, pt id.PersonType) ([]models.DocumentTypeDefinition, error)
}

// Handler wires document endpoints to the document service.
type Handler struct {
	service Service
	types   TypeLister
	logger  *slog.Logger
}

func New(service Service, types TypeLister, logger *slog.Logger) *Handler {
	return &Handler{service: service, types: types, logger: logger}
}

// Register mounts the unauthenticated document endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/document-types", h.HandleListTypes)
	r.Post("/clients/{clientID}/documents", h.HandleRegister)
	r.Get("/clients/{clientID}/documents", h.HandleList)
}

// RegisterReviewer mounts endpoints that need a reviewer token.
func (h *Handler) RegisterReviewer(r chi.Router) {
	r.Post("/documents/{documentID}/review", h.HandleReview)
}

// RegisterAdmin mounts endpoints that need an admin token.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/sweep", h.HandleSweep)
}

// HandleListTypes handles GET /document-types?person_type=PF.
func (h *Handler) HandleListTypes(w http.ResponseWriter, r *http.Request) {
	pt, err := id.ParsePersonType(r.URL.Query().Get("person_type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defs, err := h.types.ListApplicable(r.Context(), pt)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list document types",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TypesResponse{PersonType: string(pt), DocumentTypes: defs})
}

// HandleRegister handles POST /clients/{clientID}/documents.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Register(ctx, service.RegisterInput{
		ClientID:      clientID,
		TypeID:        req.parsedTypeID,
		DocumentDate:  req.parsedDate,
		FileReference: req.FileReference,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "document registration failed",
			"request_id", requestID,
			"client_id", clientID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

// HandleList handles GET /clients/{clientID}/documents. With history=true it
// returns every record instead of the current one per type.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if r.URL.Query().Get("history") == "true" {
		records, err := h.service.History(ctx, clientID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, HistoryResponse{ClientID: clientID, Documents: records})
		return
	}

	docs, err := h.service.ListCurrent(ctx, clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CurrentResponse{ClientID: clientID, Documents: docs})
}

// HandleReview handles POST /documents/{documentID}/review.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Review(ctx, service.ReviewInput{
		DocumentID: documentID,
		Decision:   req.parsedDecision,
		Comment:    req.Comment,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "document review failed",
			"request_id", requestID,
			"document_id", documentID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleSweep handles POST /admin/sweep.
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Sweep(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "on-demand sweep failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
