// Package api exposes the read-only HTTP interface over stored listings.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/douscan/douscan/internal/metrics"
	"github.com/douscan/douscan/internal/store"
	"github.com/douscan/douscan/internal/vacancy"
)

// Directory is the slice of the store the API reads from.
type Directory interface {
	Search(ctx context.Context, q store.SearchQuery) ([]vacancy.Listing, error)
	Latest(ctx context.Context, limit int) ([]vacancy.Listing, error)
	StatsByCategory(ctx context.Context) ([]store.CategoryCount, error)
}

// Server wires HTTP handlers to the listings directory.
type Server struct {
	router chi.Router
	dir    Directory
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(dir Directory, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{dir: dir, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/listings", s.searchListings)
		r.Get("/listings/latest", s.latestListings)
		r.Get("/stats", s.stats)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) searchListings(w http.ResponseWriter, r *http.Request) {
	q := store.SearchQuery{
		Keyword:    r.URL.Query().Get("q"),
		Category:   r.URL.Query().Get("category"),
		City:       r.URL.Query().Get("city"),
		Experience: r.URL.Query().Get("experience"),
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	q.Limit = limit

	if q.Category != "" {
		if _, err := vacancy.CategoryCode(q.Category); err != nil {
			s.writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
	}

	listings, err := s.dir.Search(r.Context(), q)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"listings": listings, "count": len(listings)})
}

func (s *Server) latestListings(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if limit <= 0 {
		limit = 20
	}
	listings, err := s.dir.Latest(r.Context(), limit)
	if err != nil {
		s.logger.Error("latest failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "latest failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"listings": listings, "count": len(listings)})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.dir.StatsByCategory(r.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "stats failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"categories": counts})
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid limit")
	}
	return n, nil
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
