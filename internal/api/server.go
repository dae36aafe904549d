// Package api serves the engine over a JSON HTTP interface.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/julianstephens/missionctl/internal/engine"
	"github.com/julianstephens/missionctl/internal/logger"
	"github.com/julianstephens/missionctl/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	RateLimit      float64
	RateBurst      int
	AllowedOrigins []string
}

type Server struct {
	engine  *engine.Engine
	metrics *metrics.Metrics
	limiter *RateLimiter
	handler http.Handler
}

func NewServer(e *engine.Engine, m *metrics.Metrics, opts Options) *Server {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.RateBurst < 1 {
		opts.RateBurst = 30
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		engine:  e,
		metrics: m,
		limiter: NewRateLimiter(opts.RateLimit, opts.RateBurst),
	}

	router := mux.NewRouter()
	router.Use(logRequests, m.Middleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.limiter.Middleware)

	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/xp", s.handleXP).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	api.HandleFunc("/habits", s.handleListHabits).Methods(http.MethodGet)
	api.HandleFunc("/habits", s.handleCreateHabit).Methods(http.MethodPost)
	api.HandleFunc("/habits/{id}", s.handleGetHabit).Methods(http.MethodGet)
	api.HandleFunc("/habits/{id}", s.handleDeleteHabit).Methods(http.MethodDelete)
	api.HandleFunc("/habits/{id}/toggle", s.handleToggleHabit).Methods(http.MethodPost)
	api.HandleFunc("/habits/{id}/reset", s.handleResetHabit).Methods(http.MethodPost)

	api.HandleFunc("/missions", s.handleListMissions).Methods(http.MethodGet)
	api.HandleFunc("/missions", s.handleCreateMission).Methods(http.MethodPost)
	api.HandleFunc("/missions/{id}", s.handleGetMission).Methods(http.MethodGet)
	api.HandleFunc("/missions/{id}", s.handleDeleteMission).Methods(http.MethodDelete)
	api.HandleFunc("/missions/{id}/start", s.handleStartMission).Methods(http.MethodPost)
	api.HandleFunc("/missions/{id}/complete", s.handleCompleteMission).Methods(http.MethodPost)
	api.HandleFunc("/missions/{id}/extend", s.handleExtendMission).Methods(http.MethodPost)
	api.HandleFunc("/missions/{id}/cancel", s.handleCancelMission).Methods(http.MethodPost)

	s.handler = gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(opts.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)(router)
	return s
}

// Handler returns the full middleware-wrapped router
func (s *Server) Handler() http.Handler {
	return s.handler
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.limiter.RunCleanup(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("Shutting down HTTP server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}
