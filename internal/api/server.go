// Package api exposes the requirement/record converter over HTTP, so
// other tooling can reuse the conversion logic without shelling out to
// the CLI.
package api

import (
	"encoding/json"
	"net/http"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pipelock/pkg/errors"
	"github.com/matzehuels/pipelock/pkg/pipfile"
)

// Server handles conversion requests.
type Server struct {
	log *charmlog.Logger
}

// New creates a Server logging through the given logger.
func New(logger *charmlog.Logger) *Server {
	return &Server{log: logger}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/convert", func(r chi.Router) {
		r.Post("/line", s.handleConvertLine)
		r.Post("/record", s.handleConvertRecord)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type convertLineRequest struct {
	Line string `json:"line"`
}

type convertLineResponse struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// handleConvertLine turns one pip requirement line into a record entry.
func (s *Server) handleConvertLine(w http.ResponseWriter, r *http.Request) {
	var req convertLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Line == "" {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidRequirement, "a non-empty line is required"))
		return
	}

	name, dep, err := pipfile.FromLine(req.Line)
	if err != nil {
		s.log.Warn("convert failed", "line", req.Line, "err", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, convertLineResponse{Name: name, Value: dep.Value()})
}

type convertRecordRequest struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type convertRecordResponse struct {
	Line string `json:"line"`
}

// handleConvertRecord turns one record entry back into a pip line.
func (s *Server) handleConvertRecord(w http.ResponseWriter, r *http.Request) {
	var req convertRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidRequirement, "a name and record value are required"))
		return
	}

	dep, err := pipfile.ParseValue(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, convertRecordResponse{Line: pipfile.ToLine(req.Name, dep)})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
