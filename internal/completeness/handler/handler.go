package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboarding/internal/completeness/engine"
	"onboarding/internal/completeness/service"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/requestcontext"
)

// Service defines the completeness operations exposed over HTTP.
type Service interface {
	Evaluate(ctx context.Context, clientID id.ClientID) (*engine.Report, error)
	EvaluateReturningClient(ctx context.Context, rfc id.RFC) (*service.ReturningReport, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/clients/{clientID}/completeness", h.HandleEvaluate)
	r.Get("/clients/returning", h.HandleReturning)
}

// HandleEvaluate handles GET /clients/{clientID}/completeness.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	report, err := h.service.Evaluate(ctx, clientID)
	if err != nil {
		h.logger.WarnContext(ctx, "completeness evaluation failed",
			"request_id", requestcontext.RequestID(ctx),
			"client_id", clientID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// HandleReturning handles GET /clients/returning?rfc=.
func (h *Handler) HandleReturning(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("rfc")
	if raw == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "rfc query parameter is required"))
		return
	}
	rfc, err := id.ParseRFC(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.EvaluateReturningClient(r.Context(), rfc)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
