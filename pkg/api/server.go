package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/lookout/pkg/events"
	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/storage"
	"github.com/cuemby/lookout/pkg/types"
)

const reconcileTimeout = 10 * time.Second

// Monitor is the part of the monitor service the API exposes
type Monitor interface {
	GetAllStatuses() map[string]types.StatusRecord
	GetStatus(id string) (types.StatusRecord, bool)
	ForceCheck(ctx context.Context, id string) (types.StatusRecord, bool)
	TestHost(ctx context.Context, host string, port int) types.TestResult
	Targets() []types.MonitorTarget
	Reconcile(ctx context.Context) error
}

// Config holds the collaborators and options of the HTTP server
type Config struct {
	Store   storage.Store
	Monitor Monitor
	Broker  *events.Broker

	// StatusPushInterval is how often websocket clients get a full snapshot
	StatusPushInterval time.Duration

	// ReadOnly rejects every admin request that would modify the document
	ReadOnly bool
}

// Server serves the public, monitor, admin and ops HTTP endpoints
type Server struct {
	store        storage.Store
	monitor      Monitor
	broker       *events.Broker
	pushInterval time.Duration
	readOnly     bool

	mux    *http.ServeMux
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a new HTTP API server
func NewServer(cfg Config) *Server {
	if cfg.StatusPushInterval <= 0 {
		cfg.StatusPushInterval = 30 * time.Second
	}

	s := &Server{
		store:        cfg.Store,
		monitor:      cfg.Monitor,
		broker:       cfg.Broker,
		pushInterval: cfg.StatusPushInterval,
		readOnly:     cfg.ReadOnly,
		mux:          http.NewServeMux(),
		logger:       log.WithComponent("api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Ops
	s.mux.HandleFunc("GET /health", metrics.HealthHandler())
	s.mux.HandleFunc("GET /ready", metrics.ReadyHandler())
	s.mux.HandleFunc("GET /live", metrics.LivenessHandler())
	s.mux.Handle("GET /metrics", metrics.Handler())

	// Public
	s.mux.HandleFunc("GET /api/public/data", s.handlePublicData)
	s.mux.HandleFunc("GET /api/favicon", s.handleFavicon)

	// Monitor
	s.mux.HandleFunc("GET /api/monitor/status", s.handleAllStatuses)
	s.mux.HandleFunc("GET /api/monitor/status/{id}", s.handleStatus)
	s.mux.HandleFunc("POST /api/monitor/check/{id}", s.handleForceCheck)
	s.mux.HandleFunc("POST /api/monitor/test", s.handleTestHost)
	s.mux.HandleFunc("GET /api/monitor/targets", s.handleTargets)
	s.mux.HandleFunc("GET /api/monitor/ws", s.handleStream)

	// Admin
	admin := http.NewServeMux()
	admin.HandleFunc("GET /api/admin/config", s.handleGetConfig)
	admin.HandleFunc("PUT /api/admin/settings", s.handleUpdateSettings)

	admin.HandleFunc("POST /api/admin/categories", s.handleCreateCategory)
	admin.HandleFunc("PUT /api/admin/categories/reorder", s.handleReorderCategories)
	admin.HandleFunc("PUT /api/admin/categories/{id}", s.handleUpdateCategory)
	admin.HandleFunc("DELETE /api/admin/categories/{id}", s.handleDeleteCategory)

	admin.HandleFunc("POST /api/admin/links", s.handleCreateLink)
	admin.HandleFunc("PUT /api/admin/links/reorder", s.handleReorderLinks)
	admin.HandleFunc("PUT /api/admin/links/{id}", s.handleUpdateLink)
	admin.HandleFunc("DELETE /api/admin/links/{id}", s.handleDeleteLink)

	admin.HandleFunc("POST /api/admin/widgets", s.handleCreateWidget)
	admin.HandleFunc("PUT /api/admin/widgets/{id}", s.handleUpdateWidget)
	admin.HandleFunc("DELETE /api/admin/widgets/{id}", s.handleDeleteWidget)
	admin.HandleFunc("POST /api/admin/widgets/{id}/toggle", s.handleToggleWidget)

	admin.HandleFunc("GET /api/admin/export", s.handleExport)
	admin.HandleFunc("POST /api/admin/import", s.handleImport)

	var adminHandler http.Handler = admin
	if s.readOnly {
		adminHandler = ReadOnly(admin)
	}
	s.mux.Handle("/api/admin/", adminHandler)
}

// Handler returns the root handler with request metrics applied
func (s *Server) Handler() http.Handler {
	return Instrument(s.mux)
}

// Start serves HTTP on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metrics.UpdateComponent(metrics.ComponentAPI, true, "")
	s.logger.Info().Str("addr", addr).Msg("HTTP API listening")

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	metrics.UpdateComponent(metrics.ComponentAPI, false, err.Error())
	return err
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	metrics.UpdateComponent(metrics.ComponentAPI, false, "shutting down")
	return s.server.Shutdown(ctx)
}

// afterConfigChange brings monitoring in line with the stored document and
// notifies stream clients. The change is committed at this point, so the
// reconcile runs even when the client has gone away. Reconcile failures are
// logged, not returned.
func (s *Server) afterConfigChange(r *http.Request, what string) {
	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), reconcileTimeout)
		defer cancel()
		if err := s.monitor.Reconcile(ctx); err != nil {
			s.logger.Warn().Err(err).Str("change", what).Msg("Failed to reconcile monitor after config change")
		}
	}
	if s.broker != nil {
		s.broker.Publish(&events.Event{
			Type:    events.EventConfigChanged,
			Message: what,
		})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps storage errors to HTTP status codes
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).Msg("Store operation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 10<<20))
	return dec.Decode(v)
}
