// Package httpapi exposes the chat service over HTTP: a query endpoint, a
// catalog summary endpoint and the usual health and metrics plumbing.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/coursechat/coursechat"
	"github.com/coursechat/coursechat/logging"
	"github.com/coursechat/coursechat/observability"
)

// Chat is the slice of the orchestrator contract the API consumes.
type Chat interface {
	Query(ctx context.Context, text, sessionID string) (*coursechat.Answer, error)
	CourseAnalytics() coursechat.Analytics
}

// Server serves the chat HTTP API.
type Server struct {
	chat   Chat
	logger logging.Logger
}

// New constructs a Server over the given chat orchestrator.
func New(chat Chat, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Server{chat: chat, logger: logger}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/api/query", s.handleQuery)
	r.Get("/api/courses", s.handleCourses)

	return r
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "query must not be empty")
		return
	}

	answer, err := s.chat.Query(r.Context(), req.Query, req.SessionID)
	if err != nil {
		// Internal failure details stay in the logs, not the response body.
		s.logger.Error("query failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "query_failed", "failed to answer the query")
		return
	}

	respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleCourses(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.chat.CourseAnalytics())
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
