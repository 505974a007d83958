package websearch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/unisearch/internal/domain"
	"github.com/kailas-cloud/unisearch/internal/domain/query"
	"github.com/kailas-cloud/unisearch/internal/domain/search/item"
)

// --- Mocks ---

type mockClient struct {
	res   domain.WebSearchResult
	err   error
	block bool
	calls int
}

func (m *mockClient) Search(ctx context.Context, _ string, _ int) (domain.WebSearchResult, error) {
	m.calls++
	if m.block {
		<-ctx.Done()
		return domain.WebSearchResult{}, ctx.Err()
	}
	return m.res, m.err
}

func makeQuery(t *testing.T) query.Query {
	t.Helper()
	q, err := query.New("best budget laptop", "s1", "c1", 10, 0, "", "")
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}

// --- Tests ---

func TestSearch_Success(t *testing.T) {
	client := &mockClient{res: domain.WebSearchResult{
		Citations: []domain.WebCitation{
			{URL: "https://a.example", Title: "A", Snippet: "sa", Score: 0.8},
			{URL: "https://b.example", Title: "B", Snippet: "sb", Score: 0.6},
		},
		Response:   "summary",
		Cost:       0.003,
		Confidence: 0.82,
		Provider:   "brave_search",
	}}
	svc := New(client, Config{})

	out := svc.Search(context.Background(), makeQuery(t))
	if !out.OK() {
		t.Fatalf("unexpected failure: %v", out.Err())
	}
	if len(out.Items()) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out.Items()))
	}
	if out.Items()[0].Source() != item.SourceWeb {
		t.Errorf("expected web source, got %q", out.Items()[0].Source())
	}
	if out.Cost() != 0.003 {
		t.Errorf("expected provider cost, got %v", out.Cost())
	}
	if out.Confidence() != 0.82 {
		t.Errorf("expected provider confidence, got %v", out.Confidence())
	}
	if p, _ := out.Meta("provider_used"); p != "brave_search" {
		t.Errorf("expected provider metadata, got %q", p)
	}
}

func TestSearch_UnscoredCitationsDecayByRank(t *testing.T) {
	client := &mockClient{res: domain.WebSearchResult{
		Citations: []domain.WebCitation{
			{URL: "u0"}, {URL: "u1"}, {URL: "u2"},
		},
	}}
	svc := New(client, Config{})

	out := svc.Search(context.Background(), makeQuery(t))
	items := out.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].Score() >= items[i-1].Score() {
			t.Errorf("rank %d score %v not below rank %d score %v",
				i, items[i].Score(), i-1, items[i-1].Score())
		}
	}
}

func TestSearch_FallsBackToConfiguredCost(t *testing.T) {
	client := &mockClient{res: domain.WebSearchResult{
		Citations: []domain.WebCitation{{URL: "u"}},
	}}
	svc := New(client, Config{CostPerQuery: 0.002})

	out := svc.Search(context.Background(), makeQuery(t))
	if out.Cost() != 0.002 {
		t.Errorf("expected configured cost 0.002, got %v", out.Cost())
	}
}

func TestSearch_ProviderFailureBecomesOutcome(t *testing.T) {
	svc := New(&mockClient{err: errors.New("quota exhausted")}, Config{})

	out := svc.Search(context.Background(), makeQuery(t))
	if out.OK() {
		t.Fatal("expected failure outcome")
	}
	if !errors.Is(out.Err(), domain.ErrAdapterFailure) {
		t.Errorf("expected ErrAdapterFailure, got %v", out.Err())
	}
	if out.Cost() != 0 {
		t.Errorf("failed branch must contribute zero cost, got %v", out.Cost())
	}
}

func TestSearch_TimeoutReturnsTimeoutKind(t *testing.T) {
	svc := New(&mockClient{block: true}, Config{Timeout: 20 * time.Millisecond})

	start := time.Now()
	out := svc.Search(context.Background(), makeQuery(t))
	if time.Since(start) > 2*time.Second {
		t.Fatal("adapter hung past its own timeout")
	}
	if !errors.Is(out.Err(), domain.ErrAdapterTimeout) {
		t.Errorf("expected ErrAdapterTimeout, got %v", out.Err())
	}
}

func TestSearch_RateLimiterAllowsWithinBudget(t *testing.T) {
	client := &mockClient{res: domain.WebSearchResult{}}
	svc := New(client, Config{RateLimitPerSec: 100, Burst: 2})

	for i := 0; i < 2; i++ {
		if out := svc.Search(context.Background(), makeQuery(t)); !out.OK() {
			t.Fatalf("call %d unexpectedly failed: %v", i, out.Err())
		}
	}
	if client.calls != 2 {
		t.Errorf("expected 2 provider calls, got %d", client.calls)
	}
}
