package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboarding/internal/coherence/engine"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/requestcontext"
)

// Service defines the coherence operations exposed over HTTP.
type Service interface {
	Evaluate(ctx context.Context, clientID id.ClientID) (*engine.Report, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/clients/{clientID}/coherence", h.HandleEvaluate)
}

// HandleEvaluate handles GET /clients/{clientID}/coherence.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	report, err := h.service.Evaluate(ctx, clientID)
	if err != nil {
		h.logger.WarnContext(ctx, "coherence evaluation failed",
			"request_id", requestcontext.RequestID(ctx),
			"client_id", clientID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}
