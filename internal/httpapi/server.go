// Package httpapi exposes the scoring operations over HTTP. It is a thin
// adapter: decode JSON, run the dispatch pipeline, encode the envelope.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/gridsight/site-scorer/internal/dispatch"
	"github.com/gridsight/site-scorer/internal/scoring"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// Server routes score requests to the scoring service.
type Server struct {
	svc    *scoring.Service
	health HealthChecker
}

// NewServer creates an HTTP server around the scoring service.
func NewServer(svc *scoring.Service, health HealthChecker) *Server {
	return &Server{svc: svc, health: health}
}

// Router builds the chi router with CORS and request logging applied to
// every route.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Post("/demographics/score", handleScore(s.svc.Demographics))
	r.Post("/income/score", handleScore(s.svc.Income))
	r.Post("/competition/score", handleScore(s.svc.Competition))
	r.Post("/complementary/score", handleScore(s.svc.Complementary))
	r.Post("/traffic/score", handleScore(s.svc.Traffic))
	r.Post("/profile/score", handleScore(s.svc.Profile))
	return r
}

// handleScore adapts one scoring operation into an HTTP handler. The body
// decodes into the request type, the dispatch pipeline does validation and
// error shaping, and the envelope goes back out as JSON.
func handleScore[Req any, Res any](fn func(context.Context, Req) (Res, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, &dispatch.Error{
				Status:  http.StatusBadRequest,
				Message: "Invalid request body",
			})
			return
		}

		res, err := dispatch.Handle(r.Context(), req, fn, dispatch.WrapOutput())
		if err != nil {
			var de *dispatch.Error
			if !errors.As(err, &de) {
				de = dispatch.NewInternalError(err)
			}
			writeError(w, de)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.health.HealthCheck(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, de *dispatch.Error) {
	writeJSON(w, de.Status, de)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("httpapi: encode response", zap.Error(err))
	}
}
