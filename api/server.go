package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"mw_harvester/models"
	"mw_harvester/services"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Store is the read side of the run history database.
type Store interface {
	GetRecentRuns(limit int) ([]models.ScrapeRun, error)
	GetLogs(runID int64) ([]models.ScrapeLog, error)
	GetSiteStats() ([]models.SiteStats, error)
	GetListings(source string, limit int) ([]models.StoredListing, error)
}

// LastExport reports the most recent export result, nil before the first run.
type LastExport interface {
	Last() *services.ExportResult
}

type Server struct {
	store   Store
	sites   []string
	exports LastExport
	logger  *zap.Logger
	router  *mux.Router
}

// NewServer builds the read-only status API. store and exports may be nil.
func NewServer(store Store, sites []string, exports LastExport, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:   store,
		sites:   sites,
		exports: exports,
		logger:  logger.With(zap.String("component", "api")),
		router:  mux.NewRouter(),
	}
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/runs", s.handleRuns).Methods(http.MethodGet)
	s.router.HandleFunc("/runs/{id:[0-9]+}/logs", s.handleRunLogs).Methods(http.MethodGet)
	s.router.HandleFunc("/listings", s.handleListings).Methods(http.MethodGet)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status API listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type healthResponse struct {
	Status     string                 `json:"status"`
	Sites      []string               `json:"sites"`
	Stats      []models.SiteStats     `json:"stats,omitempty"`
	LastExport *services.ExportResult `json:"last_export,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Sites: s.sites}
	if s.store != nil {
		stats, err := s.store.GetSiteStats()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		resp.Stats = stats
	}
	if s.exports != nil {
		resp.LastExport = s.exports.Last()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	limit, ok := s.limit(w, r)
	if !ok {
		return
	}
	runs, err := s.store.GetRecentRuns(limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunLogs(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	logs, err := s.store.GetLogs(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	limit, ok := s.limit(w, r)
	if !ok {
		return
	}
	listings, err := s.store.GetListings(r.URL.Query().Get("source"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, listings)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "run history disabled")
		return false
	}
	return true
}

func (s *Server) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}
