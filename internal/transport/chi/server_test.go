package chi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/unisearch/internal/domain"
	"github.com/kailas-cloud/unisearch/internal/domain/outcome"
	"github.com/kailas-cloud/unisearch/internal/metrics"
	"github.com/kailas-cloud/unisearch/internal/domain/query"
	"github.com/kailas-cloud/unisearch/internal/domain/route"
	"github.com/kailas-cloud/unisearch/internal/domain/search/item"
	"github.com/kailas-cloud/unisearch/internal/repository/answercache"
	"github.com/kailas-cloud/unisearch/internal/usecase/health"
	"github.com/kailas-cloud/unisearch/internal/usecase/orchestrate"
	"github.com/kailas-cloud/unisearch/internal/usecase/stream"
)

// --- Mocks ---

type mockOrchestrator struct {
	result orchestrate.Result
	answer string
	cached bool
}

func (m *mockOrchestrator) Execute(context.Context, query.Query) orchestrate.Result {
	return m.result
}

func (m *mockOrchestrator) Answer(context.Context, query.Query) (string, bool, orchestrate.Result) {
	return m.answer, m.cached, m.result
}

type mockHistory struct {
	exchanges []answercache.Exchange
	appended  []answercache.Exchange
	cleared   []string
	clearErr  error
}

func (m *mockHistory) Exchanges(context.Context, string) ([]answercache.Exchange, error) {
	return m.exchanges, nil
}

func (m *mockHistory) AppendExchange(_ context.Context, _ string, ex answercache.Exchange) {
	m.appended = append(m.appended, ex)
}

func (m *mockHistory) ClearExchanges(_ context.Context, sessionID string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = append(m.cleared, sessionID)
	return nil
}

type mockHealth struct {
	report health.Report
}

func (m *mockHealth) Check(context.Context) health.Report { return m.report }

func testChunker() *stream.Chunker {
	return stream.New(stream.Config{
		FirstDelay:  time.Millisecond,
		EarlyDelay:  time.Millisecond,
		LateDelay:   time.Millisecond,
		CachedDelay: time.Millisecond,
	})
}

func newTestRouter(orch Orchestrator, hist History, hc HealthChecker) *chi.Mux {
	srv := NewServer(orch, hist, hc, testChunker(), "unisearch", zap.NewNop())
	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func searchResult() orchestrate.Result {
	items := []item.Item{
		item.New("Doc A", "content a", "document://a", item.SourceDocument, 0.9, "document"),
		item.New("Web B", "snippet b", "https://example.com/b", item.SourceWeb, 0.8, "web"),
	}
	out := outcome.Success(items, "Found 2 relevant results.", 0.9, 0.003).
		WithMeta("response_type", "search_results")
	return orchestrate.Result{
		Outcome:  out,
		Decision: route.NewDecision(route.Hybrid, 0.75, "mixed signals"),
		Elapsed:  120 * time.Millisecond,
	}
}

// --- Tests ---

func TestSearchEnvelope(t *testing.T) {
	r := newTestRouter(&mockOrchestrator{result: searchResult()}, nil, &mockHealth{})

	body := `{"query": "latest report", "max_results": 5}`
	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status %q", resp.Status)
	}
	if resp.Data.TotalResults != 2 || len(resp.Data.Results) != 2 {
		t.Errorf("unexpected results: %+v", resp.Data)
	}
	if resp.Data.Results[0].Source != "document" || resp.Data.Results[1].Source != "web" {
		t.Errorf("unexpected sources: %+v", resp.Data.Results)
	}
	if resp.Metadata.Route != "hybrid" || resp.Metadata.Cost != 0.003 {
		t.Errorf("unexpected metadata: %+v", resp.Metadata)
	}
	if resp.Metadata.QueryID == "" {
		t.Error("expected a generated query_id")
	}
}

func TestSearchInvalidBody(t *testing.T) {
	r := newTestRouter(&mockOrchestrator{result: searchResult()}, nil, &mockHealth{})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "error" {
		t.Errorf("status %q", resp.Status)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	r := newTestRouter(&mockOrchestrator{result: searchResult()}, nil, &mockHealth{})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query": "  "}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

type sseEvent struct {
	raw  string
	resp openai.ChatCompletionStreamResponse
}

func parseSSE(t *testing.T, body *bytes.Buffer) (events []sseEvent, done bool) {
	t.Helper()
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			done = true
			continue
		}
		var resp openai.ChatCompletionStreamResponse
		if err := json.Unmarshal([]byte(payload), &resp); err != nil {
			t.Fatalf("decode event %q: %v", payload, err)
		}
		events = append(events, sseEvent{raw: payload, resp: resp})
	}
	return events, done
}

func TestChatStream(t *testing.T) {
	answer := "The capital of France is Paris, a city known for art and history and food."
	hist := &mockHistory{}
	r := newTestRouter(&mockOrchestrator{result: searchResult(), answer: answer}, hist, &mockHealth{})

	body := `{"message": "capital of France", "session_id": "sess-1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type %q", ct)
	}

	events, done := parseSSE(t, rec.Body)
	if !done {
		t.Fatal("stream did not end with [DONE]")
	}
	if len(events) < 2 {
		t.Fatalf("expected content events plus terminal, got %d", len(events))
	}

	var rebuilt strings.Builder
	for _, ev := range events[:len(events)-1] {
		if ev.resp.Object != "chat.completion.chunk" {
			t.Errorf("object %q", ev.resp.Object)
		}
		if ev.resp.Model != "unisearch" {
			t.Errorf("model %q", ev.resp.Model)
		}
		rebuilt.WriteString(ev.resp.Choices[0].Delta.Content)
	}

	got := strings.Fields(rebuilt.String())
	want := strings.Fields(answer)
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("reassembled %q, want %q", strings.Join(got, " "), strings.Join(want, " "))
	}

	term := events[len(events)-1].resp
	if term.Choices[0].FinishReason != openai.FinishReasonStop {
		t.Errorf("finish reason %q", term.Choices[0].FinishReason)
	}
	if term.Choices[0].Delta.Content != "" {
		t.Errorf("terminal chunk carried content %q", term.Choices[0].Delta.Content)
	}

	if len(hist.appended) != 1 || hist.appended[0].Answer != answer {
		t.Errorf("expected one recorded exchange, got %+v", hist.appended)
	}
}

func TestChatStreamCachedModelTag(t *testing.T) {
	r := newTestRouter(&mockOrchestrator{result: searchResult(), answer: "short answer", cached: true}, nil, &mockHealth{})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(`{"message": "q"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	events, _ := parseSSE(t, rec.Body)
	if len(events) == 0 {
		t.Fatal("no events")
	}
	if events[0].resp.Model != "unisearch-cached" {
		t.Errorf("model %q, want unisearch-cached", events[0].resp.Model)
	}
}

func TestChatHistory(t *testing.T) {
	hist := &mockHistory{exchanges: []answercache.Exchange{
		{UserMessage: "q1", Answer: "a1", Timestamp: 1},
	}}
	r := newTestRouter(&mockOrchestrator{result: searchResult()}, hist, &mockHealth{})

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/history/sess-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != "sess-1" || len(resp.Exchanges) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClearChatHistory(t *testing.T) {
	hist := &mockHistory{}
	r := newTestRouter(&mockOrchestrator{result: searchResult()}, hist, &mockHealth{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/chat/history/sess-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d", rec.Code)
	}
	if len(hist.cleared) != 1 || hist.cleared[0] != "sess-1" {
		t.Errorf("expected sess-1 cleared, got %v", hist.cleared)
	}
}

func TestClearChatHistoryUnavailable(t *testing.T) {
	hist := &mockHistory{clearErr: domain.ErrCacheUnavailable}
	r := newTestRouter(&mockOrchestrator{result: searchResult()}, hist, &mockHealth{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/chat/history/sess-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestStreamChunkMetricCountsDelivered(t *testing.T) {
	answer := strings.Repeat("word ", 40)
	r := newTestRouter(&mockOrchestrator{result: searchResult(), answer: answer}, nil, &mockHealth{})

	before := testutil.ToFloat64(metrics.StreamChunksTotal.WithLabelValues("fresh"))

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(`{"message": "q"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	events, done := parseSSE(t, rec.Body)
	if !done {
		t.Fatal("stream did not complete")
	}
	contentEvents := len(events) - 1 // last event is the terminal marker

	after := testutil.ToFloat64(metrics.StreamChunksTotal.WithLabelValues("fresh"))
	if got := after - before; got != float64(contentEvents) {
		t.Errorf("counted %v chunks, delivered %d", got, contentEvents)
	}
}

func TestHealthDegraded(t *testing.T) {
	hc := &mockHealth{report: health.Report{
		Status: health.Degraded,
		Checks: map[string]health.CheckResult{"cache": health.CheckError},
	}}
	r := newTestRouter(&mockOrchestrator{result: searchResult()}, nil, hc)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rec.Code)
	}
}
