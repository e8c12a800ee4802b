package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/runtime"
)

// DefaultAskCount is the number of sources retrieved for /ask when count is omitted
const DefaultAskCount = 3

const healthCheckTimeout = 5 * time.Second

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"online"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// HealthResponse reports wired capabilities and backend reachability
// @Description Health and capability report
type HealthResponse struct {
	Status       string               `json:"status" example:"ok"`
	Version      string               `json:"version" example:"1.0.0"`
	Capabilities runtime.Capabilities `json:"capabilities"`
	Checks       map[string]string    `json:"checks"`
}

// AskRequest is the body of POST /ask
// @Description Question to answer from indexed claims
type AskRequest struct {
	Query string `json:"query" example:"Is there any news about COVID-19 vaccines in Barbados?"`
	Count *int   `json:"count,omitempty" example:"3"`
}

// AskResponse is the body returned by POST /ask
// @Description Synthesized answer and the evidence it cites
type AskResponse struct {
	Answer  string           `json:"answer"`
	Sources []*domain.Source `json:"sources"`
}

// SearchRequest is the body of POST /api/v1/search.
// Omitted fields fall back to the server's configured defaults.
// @Description Retrieval request
type SearchRequest struct {
	Query        string   `json:"query" example:"vaccine trials"`
	K            *int     `json:"k,omitempty" example:"4"`
	UseDiversity *bool    `json:"use_diversity,omitempty" example:"true"`
	FetchK       *int     `json:"fetch_k,omitempty" example:"20"`
	Lambda       *float64 `json:"lambda,omitempty" example:"0.5"`
}

func (r SearchRequest) options(defaults domain.SearchOptions) domain.SearchOptions {
	opts := defaults
	if r.K != nil {
		opts.K = *r.K
	}
	if r.UseDiversity != nil {
		opts.UseDiversity = *r.UseDiversity
	}
	if r.FetchK != nil {
		opts.FetchK = *r.FetchK
	}
	if r.Lambda != nil {
		opts.Lambda = *r.Lambda
	}
	return opts
}

// Health endpoints

// handleStatus godoc
// @Summary      Relay status
// @Description  Liveness probe used by the chat front end
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /status [get]
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "online"})
}

// handleHealth godoc
// @Summary      Health check
// @Description  Reports wired AI capabilities and pings the vector index and Redis
// @Tags         Health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:  "ok",
		Version: s.version,
		Checks:  map[string]string{},
	}
	if s.services != nil {
		resp.Capabilities = s.services.Capabilities()
	}

	code := http.StatusOK
	if s.index != nil {
		resp.Checks["index"] = "ok"
		if err := s.index.Ping(ctx); err != nil {
			s.logger.Warn("index health check failed", "error", err)
			resp.Checks["index"] = "unavailable"
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	if s.redisClient != nil {
		resp.Checks["redis"] = "ok"
		if err := s.redisClient.Ping(ctx); err != nil {
			s.logger.Warn("redis health check failed", "error", err)
			resp.Checks["redis"] = "unavailable"
			resp.Status = "degraded"
		}
	}

	writeJSON(w, code, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		s.logger.Error("read swagger doc", "error", err)
		writeError(w, http.StatusInternalServerError, "api documentation unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// Retrieval endpoints

// handleAsk godoc
// @Summary      Answer a question
// @Description  Retrieves count claims and drafts a cited answer with the configured language model
// @Tags         Retrieval
// @Accept       json
// @Produce      json
// @Param        request  body      AskRequest  true  "Question"
// @Success      200      {object}  AskResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Missing or invalid token"
// @Failure      503      {object}  ErrorResponse  "Index or language model unavailable"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Security     BearerAuth
// @Router       /ask [post]
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	count := DefaultAskCount
	if req.Count != nil {
		count = *req.Count
	}

	answer, err := s.answerService.Ask(r.Context(), req.Query, count)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to answer query")
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{Answer: answer.Answer, Sources: answer.Sources})
}

// handleSearch godoc
// @Summary      Search claims
// @Description  Similarity or MMR search over the indexed claims
// @Tags         Retrieval
// @Accept       json
// @Produce      json
// @Param        request  body      SearchRequest  true  "Search query"
// @Success      200      {object}  domain.SearchResult
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Missing or invalid token"
// @Failure      503      {object}  ErrorResponse  "Index unavailable"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Security     BearerAuth
// @Router       /api/v1/search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := s.searchService.Search(r.Context(), req.Query, req.options(s.defaults))
	if err != nil {
		s.writeServiceError(w, r, err, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeServiceError maps core errors to status codes.
// Only invalid input is echoed back; everything else is logged and replaced.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrIndexUnavailable):
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "index unavailable")
		return
	case errors.Is(err, domain.ErrServiceUnavailable):
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, fallback)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
