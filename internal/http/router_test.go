package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "onboarding/internal/jwt_token"
	"onboarding/internal/ratelimit"
	request "onboarding/pkg/platform/middleware/request"
	"onboarding/pkg/requestcontext"
)

func newTestRouter(t *testing.T, health map[string]HealthChecker) (http.Handler, *jwttoken.JWTService) {
	t.Helper()
	jwtService := jwttoken.NewJWTService("test-signing-key", "onboarding")
	echoActor := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(requestcontext.ActorID(r.Context())))
	}
	router := NewRouter(Deps{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		JWTValidator: jwttoken.NewMiddlewareValidator(jwtService),
		Public: []Module{ModuleFunc(func(r chi.Router) {
			r.Get("/public", func(w http.ResponseWriter, r *http.Request) {
				assert.False(t, requestcontext.Now(r.Context()).IsZero())
				w.WriteHeader(http.StatusNoContent)
			})
		})},
		Throttled: []Module{ModuleFunc(func(r chi.Router) {
			r.Get("/analyze", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
		})},
		Throttle: ratelimit.New(ratelimit.NewInMemory(), "analyze", 1, time.Minute).Handler,
		Reviewer: []Module{ModuleFunc(func(r chi.Router) { r.Post("/review", echoActor) })},
		Admin:    []Module{ModuleFunc(func(r chi.Router) { r.Post("/admin", echoActor) })},
		Health:   health,
	})
	return router, jwtService
}

func serve(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := serve(router, http.MethodGet, "/public", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get(request.HeaderRequestID))

	w = serve(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ThrottledRoutes(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/analyze", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodGet, "/analyze", "").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/public", "").Code, "public routes are not throttled")
}

func TestRouter_RoleGroups(t *testing.T) {
	router, jwtService := newTestRouter(t, nil)
	reviewer, err := jwtService.GenerateToken("rev-1", jwttoken.RoleReviewer, time.Hour)
	require.NoError(t, err)
	admin, err := jwtService.GenerateToken("adm-1", jwttoken.RoleAdmin, time.Hour)
	require.NoError(t, err)

	t.Run("review requires a token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/review", "").Code)
	})

	t.Run("reviewer can review", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/review", reviewer)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "rev-1", w.Body.String())
	})

	t.Run("admin can review", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/review", admin).Code)
	})

	t.Run("reviewer cannot sweep", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/admin", reviewer).Code)
	})

	t.Run("admin can sweep", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/admin", admin).Code)
	})
}

func TestRouter_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router, _ := newTestRouter(t, map[string]HealthChecker{
			"database": func(*http.Request) error { return nil },
		})
		w := serve(router, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("degraded", func(t *testing.T) {
		router, _ := newTestRouter(t, map[string]HealthChecker{
			"redis": func(*http.Request) error { return errors.New("connection refused") },
		})
		w := serve(router, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "connection refused", body["redis"])
	})
}
