// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, engine orchestration,
// output serialization. The API NEVER performs allocation logic.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fundalloc/internal/errors"
)

// Server is the API server
type Server struct {
	handler *Handler
	mux     *http.ServeMux
	version string
}

// NewServer creates a new API server
func NewServer(version string) *Server {
	s := &Server{
		handler: NewHandler(),
		mux:     http.NewServeMux(),
		version: version,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /allocate", s.handleAllocate)
	s.mux.HandleFunc("POST /scenarios", s.handleScenarios)
	s.mux.HandleFunc("POST /uncertainty", s.handleUncertainty)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// handleAllocate handles POST /allocate
func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "allocate", "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	resp, err := s.handler.allocate(requestID, &req)
	if err != nil {
		s.writeEngineError(w, "allocate", err)
		return
	}

	resp.Metadata = s.metadata(requestID, computeInputHash(&req), start)
	s.writeJSON(w, "allocate", resp, http.StatusOK)
	requestDuration.WithLabelValues("allocate").Observe(time.Since(start).Seconds())
}

// handleScenarios handles POST /scenarios
func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ScenariosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "scenarios", "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	resp, err := s.handler.scenarios(requestID, &req)
	if err != nil {
		s.writeEngineError(w, "scenarios", err)
		return
	}

	resp.Metadata = s.metadata(requestID, computeInputHash(&req), start)
	s.writeJSON(w, "scenarios", resp, http.StatusOK)
	requestDuration.WithLabelValues("scenarios").Observe(time.Since(start).Seconds())
}

// handleUncertainty handles POST /uncertainty
func (s *Server) handleUncertainty(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req UncertaintyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "uncertainty", "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	resp, err := s.handler.uncertainty(r.Context(), requestID, &req)
	if err != nil {
		s.writeEngineError(w, "uncertainty", err)
		return
	}

	resp.Metadata = s.metadata(requestID, computeInputHash(&req), start)
	s.writeJSON(w, "uncertainty", resp, http.StatusOK)
	requestDuration.WithLabelValues("uncertainty").Observe(time.Since(start).Seconds())
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "health", map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "version", map[string]string{
		"version":     s.version,
		"engine":      "fundalloc",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) metadata(requestID, inputHash string, start time.Time) *ResponseMetadata {
	return &ResponseMetadata{
		RequestID:     requestID,
		InputHash:     inputHash,
		EngineVersion: s.version,
		DurationMs:    time.Since(start).Milliseconds(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, endpoint string, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func (s *Server) writeError(w http.ResponseWriter, endpoint, code, message string, status int) {
	s.writeJSON(w, endpoint, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}, status)
}

// writeEngineError maps a typed engine error to an HTTP status.
func (s *Server) writeEngineError(w http.ResponseWriter, endpoint string, err error) {
	status := http.StatusInternalServerError
	code := string(errors.TypeInternal)

	var domainErr *errors.Error
	if stderrors.As(err, &domainErr) {
		code = string(domainErr.Type)
		switch domainErr.Type {
		case errors.TypeInput, errors.TypeConfig:
			status = http.StatusBadRequest
		case errors.TypeConvergence:
			status = http.StatusUnprocessableEntity
		case errors.TypeNotFound:
			status = http.StatusNotFound
		}
	}
	s.writeError(w, endpoint, code, err.Error(), status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// computeInputHash deterministically hashes a request body.
func computeInputHash(req interface{}) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
