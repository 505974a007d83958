package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/unisearch/internal/domain/query"
	"github.com/kailas-cloud/unisearch/internal/metrics"
	"github.com/kailas-cloud/unisearch/internal/repository/answercache"
	healthuc "github.com/kailas-cloud/unisearch/internal/usecase/health"
	"github.com/kailas-cloud/unisearch/internal/usecase/orchestrate"
	"github.com/kailas-cloud/unisearch/internal/usecase/stream"
)

// Orchestrator runs the routing pipeline for one query.
type Orchestrator interface {
	Execute(ctx context.Context, q query.Query) orchestrate.Result
	Answer(ctx context.Context, q query.Query) (answer string, cached bool, res orchestrate.Result)
}

// History records, replays and clears conversation turns.
type History interface {
	Exchanges(ctx context.Context, sessionID string) ([]answercache.Exchange, error)
	AppendExchange(ctx context.Context, sessionID string, ex answercache.Exchange)
	ClearExchanges(ctx context.Context, sessionID string) error
}

// HealthChecker reports aggregated component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API server.
type Server struct {
	orchestrator Orchestrator
	history      History
	health       HealthChecker
	chunker      *stream.Chunker
	model        string
	logger       *zap.Logger
}

// NewServer creates an HTTP API server. history can be nil.
func NewServer(
	orchestrator Orchestrator,
	history History,
	health HealthChecker,
	chunker *stream.Chunker,
	model string,
	logger *zap.Logger,
) *Server {
	if model == "" {
		model = "unisearch"
	}
	return &Server{
		orchestrator: orchestrator,
		history:      history,
		health:       health,
		chunker:      chunker,
		model:        model,
		logger:       logger,
	}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/v1/search", s.Search)
	r.Post("/v1/chat/stream", s.ChatStream)
	r.Get("/v1/chat/history/{session}", s.ChatHistory)
	r.Delete("/v1/chat/history/{session}", s.ClearHistory)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type searchRequest struct {
	Query      string  `json:"query"`
	SessionID  string  `json:"session_id,omitempty"`
	MaxResults int     `json:"max_results,omitempty"`
	MaxCost    float64 `json:"max_cost,omitempty"`
	Quality    string  `json:"quality,omitempty"`
	Operation  string  `json:"operation,omitempty"`
}

type resultItem struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	URL        string  `json:"url"`
	Source     string  `json:"source"`
	Score      float64 `json:"score"`
	ResultType string  `json:"result_type,omitempty"`
}

type searchData struct {
	Query        string       `json:"query"`
	Results      []resultItem `json:"results"`
	Summary      string       `json:"summary"`
	TotalResults int          `json:"total_results"`
}

type searchMetadata struct {
	QueryID       string  `json:"query_id"`
	CorrelationID string  `json:"correlation_id"`
	ExecutionTime float64 `json:"execution_time"`
	Cost          float64 `json:"cost"`
	Confidence    float64 `json:"confidence"`
	Route         string  `json:"route"`
}

type searchResponse struct {
	Status   string         `json:"status"`
	Data     searchData     `json:"data"`
	Metadata searchMetadata `json:"metadata"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q, queryID, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	res := s.orchestrator.Execute(r.Context(), q)
	out := res.Outcome

	items := make([]resultItem, 0, len(out.Items()))
	for _, it := range out.Items() {
		items = append(items, resultItem{
			Title:      it.Title(),
			Content:    it.Content(),
			URL:        it.URL(),
			Source:     string(it.Source()),
			Score:      it.Score(),
			ResultType: it.ResultType(),
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Status: "success",
		Data: searchData{
			Query:        q.Text(),
			Results:      items,
			Summary:      out.Answer(),
			TotalResults: len(items),
		},
		Metadata: searchMetadata{
			QueryID:       queryID,
			CorrelationID: q.CorrelationID(),
			ExecutionTime: res.Elapsed.Seconds(),
			Cost:          out.Cost(),
			Confidence:    out.Confidence(),
			Route:         string(res.Decision.Route()),
		},
	})
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatStream handles POST /v1/chat/stream: the answer is resolved
// through the pipeline (or replayed from cache), then delivered as
// OpenAI-style server-sent chunk events ending with [DONE].
func (s *Server) ChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := query.New(req.Message, req.SessionID, requestID(r), 0, 0, "", query.OperationSearch)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	queryID := uuid.NewString()

	answer, cached, _ := s.orchestrator.Answer(r.Context(), q)

	if s.history != nil && req.SessionID != "" {
		s.history.AppendExchange(r.Context(), req.SessionID, answercache.Exchange{
			UserMessage: req.Message,
			Answer:      answer,
			Timestamp:   time.Now().Unix(),
		})
	}

	model := s.model
	schedule := "fresh"
	if cached {
		model += "-cached"
		schedule = "cached"
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	created := time.Now().Unix()
	id := "chatcmpl-" + queryID

	chunks := s.chunker.Chunk(answer, cached)
	for ch := range stream.Deliver(r.Context(), chunks) {
		event := openai.ChatCompletionStreamResponse{
			ID:      id,
			Object:  "chat.completion.chunk",
			Created: created,
			Model:   model,
			Choices: []openai.ChatCompletionStreamChoice{{Index: 0}},
		}
		if ch.Terminal {
			event.Choices[0].FinishReason = openai.FinishReasonStop
		} else {
			event.Choices[0].Delta = openai.ChatCompletionStreamChoiceDelta{Content: ch.Text}
		}

		data, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("Failed to encode stream event", zap.Error(err))
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			// Consumer is gone; stop without error.
			return
		}
		if !ch.Terminal {
			metrics.StreamChunksTotal.WithLabelValues(schedule).Inc()
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	if r.Context().Err() != nil {
		return
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	if flusher != nil {
		flusher.Flush()
	}
}

type historyResponse struct {
	SessionID string                 `json:"session_id"`
	Exchanges []answercache.Exchange `json:"exchanges"`
}

// ChatHistory handles GET /v1/chat/history/{session}.
func (s *Server) ChatHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "conversation history is disabled")
		return
	}

	sessionID := chi.URLParam(r, "session")
	exchanges, err := s.history.Exchanges(r.Context(), sessionID)
	if err != nil {
		s.logger.Warn("History read failed", zap.String("session_id", sessionID), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "conversation history is unavailable")
		return
	}

	if exchanges == nil {
		exchanges = []answercache.Exchange{}
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: sessionID, Exchanges: exchanges})
}

// ClearHistory handles DELETE /v1/chat/history/{session}.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "conversation history is disabled")
		return
	}

	sessionID := chi.URLParam(r, "session")
	if err := s.history.ClearExchanges(r.Context(), sessionID); err != nil {
		s.logger.Warn("History delete failed", zap.String("session_id", sessionID), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "conversation history is unavailable")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeQuery parses and validates the search request body. Returns the
// generated query ID alongside the query.
func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (query.Query, string, bool) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return query.Query{}, "", false
	}

	q, err := query.New(
		req.Query, req.SessionID, requestID(r),
		req.MaxResults, req.MaxCost, req.Quality,
		query.Operation(req.Operation),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return query.Query{}, "", false
	}
	return q, uuid.NewString(), true
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: "error", Message: message})
}
