// Package httpapi assembles the public router from the module handlers.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jwttoken "onboarding/internal/jwt_token"
	"onboarding/internal/platform/metrics"
	"onboarding/pkg/platform/httputil"
	authmw "onboarding/pkg/platform/middleware/auth"
	request "onboarding/pkg/platform/middleware/request"
	"onboarding/pkg/platform/middleware/requesttime"
)

const requestTimeout = 60 * time.Second

// Module mounts the routes any authenticated caller may use.
type Module interface {
	Register(r chi.Router)
}

// ModuleFunc adapts a route-mounting method to Module.
type ModuleFunc func(r chi.Router)

func (f ModuleFunc) Register(r chi.Router) { f(r) }

// HealthChecker reports the readiness of one backing dependency.
type HealthChecker func(r *http.Request) error

// Deps are the handlers and cross-cutting pieces the router needs.
type Deps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	JWTValidator authmw.JWTValidator

	// Public modules: clients, documents, completeness.
	Public []Module
	// Throttled modules call the document analyzer and sit behind Throttle.
	Throttled []Module
	Throttle  func(http.Handler) http.Handler
	// Reviewer routes require the reviewer or admin role.
	Reviewer []Module
	// Admin routes require the admin role.
	Admin []Module

	Health map[string]HealthChecker
}

// NewRouter wires middleware, health, metrics and module routes.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(request.Recoverer(d.Logger))
	r.Use(request.Logger(d.Logger))
	r.Use(chimw.Timeout(requestTimeout))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/healthz", healthHandler(d.Health))
	r.Handle("/metrics", promhttp.Handler())

	for _, m := range d.Public {
		m.Register(r)
	}
	r.Group(func(r chi.Router) {
		if d.Throttle != nil {
			r.Use(d.Throttle)
		}
		for _, m := range d.Throttled {
			m.Register(r)
		}
	})
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(d.JWTValidator, d.Logger, jwttoken.RoleReviewer, jwttoken.RoleAdmin))
		for _, m := range d.Reviewer {
			m.Register(r)
		}
	})
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(d.JWTValidator, d.Logger, jwttoken.RoleAdmin))
		for _, m := range d.Admin {
			m.Register(r)
		}
	})
	return r
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(r); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
