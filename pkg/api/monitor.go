package api

import (
	"net/http"
	"strings"

	"github.com/cuemby/lookout/pkg/log"
)

func (s *Server) handleAllStatuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.GetAllStatuses())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.monitor.GetStatus(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "host not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleForceCheck(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, ok := s.monitor.ForceCheck(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "host not found")
		return
	}

	logger := log.WithTargetID(id)
	logger.Debug().
		Str("status", string(rec.Status)).
		Msg("Forced check")
	writeJSON(w, http.StatusOK, rec)
}

type testHostRequest struct {
	Host string `json:"host"`
	Port *int   `json:"port"`
}

func (s *Server) handleTestHost(w http.ResponseWriter, r *http.Request) {
	var req testHostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	host := strings.TrimSpace(req.Host)
	if host == "" {
		writeError(w, http.StatusBadRequest, "host is required")
		return
	}

	port := 0
	if req.Port != nil {
		port = *req.Port
	}
	if port < 0 || port > 65535 {
		writeError(w, http.StatusBadRequest, "port must be between 0 (ICMP) and 65535")
		return
	}

	writeJSON(w, http.StatusOK, s.monitor.TestHost(r.Context(), host, port))
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Targets())
}
