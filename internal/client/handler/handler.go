package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboarding/internal/client/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/requestcontext"
)

// Service defines the client operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, profile models.ClientProfile) (*models.ClientProfile, error)
	Get(ctx context.Context, clientID id.ClientID) (*models.ClientProfile, error)
}

// Handler wires client endpoints to the client service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts client endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/clients", h.HandleRegister)
	r.Get("/clients/{clientID}", h.HandleGet)
}

// HandleRegister handles POST /clients.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterClientRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.Register(ctx, req.Profile())
	if err != nil {
		h.logger.WarnContext(ctx, "client registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleGet handles GET /clients/{clientID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Get(r.Context(), clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}
