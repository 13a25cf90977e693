package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/domain/discovery"
	"github.com/rpggio/folio/internal/domain/reconcile"
)

// ActivityContentType is served for Change Discovery documents.
const ActivityContentType = `application/ld+json;profile="https://www.w3.org/ns/activitystreams"`

// maxImportBytes bounds POST /activity/import bodies.
const maxImportBytes = 64 << 20

// ActivityService defines the activity log reads served over HTTP.
type ActivityService interface {
	GetRecentActivities(ctx context.Context, limit int) ([]activity.Activity, error)
	GetActivitiesSince(ctx context.Context, t string) ([]activity.Activity, error)
	GetActivitiesForObject(ctx context.Context, objectID string) ([]activity.Activity, error)
	GetArchivedActivitiesForObject(ctx context.Context, objectID string) ([]activity.Activity, error)
	GetAllActivitiesForObject(ctx context.Context, objectID string) ([]activity.Activity, error)
	GetStats(ctx context.Context) (*activity.Stats, error)
	GetArchiveStats(ctx context.Context) (*activity.ArchiveStats, error)
	ExportAll(ctx context.Context) ([]activity.Activity, error)
}

// DiscoveryService renders the Change Discovery feed.
type DiscoveryService interface {
	Collection(ctx context.Context, baseURL string) (*discovery.Collection, error)
	Page(ctx context.Context, baseURL string, n int) (*discovery.Page, error)
}

// ImportService merges activity sets from other devices.
type ImportService interface {
	Import(ctx context.Context, activities []activity.Activity) (reconcile.Result, error)
}

// Services contains the domain services exposed over HTTP.
type Services struct {
	Activities ActivityService
	Discovery  DiscoveryService
	Importer   ImportService
	// Health reports readiness; nil means always healthy.
	Health func(ctx context.Context) error
}

// Options configures optional routes and behavior.
type Options struct {
	// BaseURL prefixes feed ids. Derived from each request when empty.
	BaseURL string
	// MCP serves /mcp when set.
	MCP http.Handler
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	services Services
	baseURL  string
	logger   *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(services Services, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		services: services,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		logger:   logger.With(slog.String("component", "http")),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(srv.logRequests)

	r.Get("/health", srv.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	r.Route("/activity", func(r chi.Router) {
		r.Get("/collection", srv.handleCollection)
		r.Get("/collection/page/{page}", srv.handlePage)
		r.Get("/recent", srv.handleRecent)
		r.Get("/since", srv.handleSince)
		r.Get("/objects/{objectID}", srv.handleObjectHistory)
		r.Get("/stats", srv.handleStats)
		r.Get("/archive/stats", srv.handleArchiveStats)
		r.Get("/export", srv.handleExport)
		r.Post("/import", srv.handleImport)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.services.Health != nil {
		if err := s.services.Health(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	c, err := s.services.Discovery.Collection(r.Context(), s.requestBaseURL(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ActivityContentType, c)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %q", discovery.ErrInvalidPage, chi.URLParam(r, "page")))
		return
	}
	page, err := s.services.Discovery.Page(r.Context(), s.requestBaseURL(r), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ActivityContentType, page)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, fmt.Errorf("%w: limit must be a non-negative integer", activity.ErrInvalidInput))
			return
		}
		limit = n
	}
	list, err := s.services.Activities.GetRecentActivities(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}

func (s *Server) handleSince(w http.ResponseWriter, r *http.Request) {
	t := r.URL.Query().Get("t")
	if _, err := time.Parse(time.RFC3339Nano, t); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: t must be an RFC 3339 timestamp", activity.ErrInvalidInput))
		return
	}
	list, err := s.services.Activities.GetActivitiesSince(r.Context(), t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}

func (s *Server) handleObjectHistory(w http.ResponseWriter, r *http.Request) {
	objectID := chi.URLParam(r, "objectID")
	var (
		list []activity.Activity
		err  error
	)
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "all":
		list, err = s.services.Activities.GetAllActivitiesForObject(r.Context(), objectID)
	case "live":
		list, err = s.services.Activities.GetActivitiesForObject(r.Context(), objectID)
	case "archive":
		list, err = s.services.Activities.GetArchivedActivitiesForObject(r.Context(), objectID)
	default:
		err = fmt.Errorf("%w: unknown scope %q", activity.ErrInvalidInput, scope)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.services.Activities.GetStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", stats)
}

func (s *Server) handleArchiveStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.services.Activities.GetArchiveStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	list, err := s.services.Activities.ExportAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var list []activity.Activity
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err := dec.Decode(&list); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", reconcile.ErrInvalidActivity, err))
		return
	}
	result, err := s.services.Importer.Import(r.Context(), list)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "", result)
}

// requestBaseURL prefers the configured base URL and otherwise rebuilds one
// from the request, honoring X-Forwarded-Proto.
func (s *Server) requestBaseURL(r *http.Request) string {
	if s.baseURL != "" {
		return s.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	writeJSON(w, status, "", ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, discovery.ErrInvalidPage),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, reconcile.ErrInvalidActivity):
		return http.StatusBadRequest
	case errors.Is(err, activity.ErrActivityNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
