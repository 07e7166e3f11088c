// Package api exposes compass over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/compass/internal/extractor"
	"github.com/MikeSquared-Agency/compass/internal/model"
	"github.com/MikeSquared-Agency/compass/internal/processor"
)

// Service is the pipeline behind the HTTP handlers.
type Service interface {
	User(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch model.ProfilePatch) (*model.UserProfile, error)
	MergeInsights(ctx context.Context, userID uuid.UUID, in model.Insights) (*model.UserProfile, error)
	SaveAssessment(ctx context.Context, userID uuid.UUID, patch model.AssessmentPatch) (*model.Assessment, error)
	Candidates(ctx context.Context, userID uuid.UUID) ([]*model.UserProfile, error)
	Search(ctx context.Context, userID uuid.UUID, query string) ([]*model.UserProfile, error)
	StartSession(ctx context.Context, userID uuid.UUID, module model.Module) (*model.ChatSession, error)
	SendMessage(ctx context.Context, userID, sessionID uuid.UUID, module model.Module, content string) (*processor.MessageResult, error)
	SetSessionStatus(ctx context.Context, userID, sessionID uuid.UUID, status model.Status) (*model.ChatSession, error)
	Session(ctx context.Context, userID, sessionID uuid.UUID) (*model.ChatSession, error)
	Sessions(ctx context.Context, userID uuid.UUID, limit int) ([]*model.ChatSession, error)
}

type Server struct {
	router    *chi.Mux
	port      int
	svc       Service
	extractor *extractor.Extractor
	checks    []namedCheck
	logger    *slog.Logger
}

const healthTimeout = 2 * time.Second

func NewServer(port int, apiToken string, svc Service, ext *extractor.Extractor, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		svc:       svc,
		extractor: ext,
		logger:    logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/compass/status", s.status)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))

		r.Route("/compute", func(r chi.Router) {
			r.Post("/extract", s.computeExtract)
			r.Post("/merge", s.computeMerge)
			r.Post("/alignment", s.computeAlignment)
			r.Post("/similarity", s.computeSimilarity)
		})

		r.Group(func(r chi.Router) {
			r.Use(UserMiddleware)

			r.Route("/chat", func(r chi.Router) {
				r.Post("/session", s.startSession)
				r.Post("/message", s.sendMessage)
				r.Get("/sessions", s.listSessions)
				r.Get("/session/{id}", s.getSession)
				r.Put("/session/{id}", s.updateSession)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", s.getProfile)
				r.Put("/profile", s.updateProfile)
				r.Get("/insights", s.getInsights)
				r.Put("/insights", s.mergeInsights)
				r.Get("/dashboard", s.dashboard)
			})

			r.Route("/insights", func(r chi.Router) {
				r.Get("/analytics", s.analytics)
				r.Get("/progress", s.progress)
				r.Get("/recommendations", s.recommendations)
			})

			r.Route("/pipeline", func(r chi.Router) {
				r.Put("/tests", s.saveTests)
				r.Get("/coach", s.pipelineCoach)
			})

			r.Route("/network", func(r chi.Router) {
				r.Get("/suggested", s.suggestedConnections)
				r.Get("/search", s.searchConnections)
			})
		})
	})

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// HealthCheck reports an error when a dependency is unavailable.
type HealthCheck func(ctx context.Context) error

type namedCheck struct {
	name  string
	check HealthCheck
}

// AddHealthCheck registers a dependency check reported by /health.
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checks = append(s.checks, namedCheck{name: name, check: check})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	body := map[string]string{"status": "ok"}
	code := http.StatusOK
	for _, c := range s.checks {
		if err := c.check(ctx); err != nil {
			s.logger.Warn("health check failed", "check", c.name, "error", err)
			body[c.name] = "down"
			body["status"] = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		body[c.name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":   "compass",
		"status":  "active",
		"modules": model.Modules,
	})
}
