package websearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/unisearch/internal/domain"
	"github.com/kailas-cloud/unisearch/internal/domain/outcome"
	"github.com/kailas-cloud/unisearch/internal/domain/query"
	"github.com/kailas-cloud/unisearch/internal/domain/search/item"
	"github.com/kailas-cloud/unisearch/internal/metrics"
)

const (
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 10 * time.Second
	// defaultConfidence applies when the provider reports none.
	defaultConfidence = 0.8
	// baseScore seeds rank-decayed scores for unscored citations.
	baseScore = 0.8
	scoreStep = 0.1
	minScore  = 0.1

	source = "web"
)

// Config holds adapter settings.
type Config struct {
	Timeout time.Duration
	// CostPerQuery applies when the provider does not report cost.
	CostPerQuery float64
	// RateLimitPerSec caps outbound provider calls; 0 disables limiting.
	RateLimitPerSec float64
	Burst           int
}

// Service adapts web search providers into the uniform execution outcome.
// Calls are rate limited on the client side since every provider query
// costs real money. Provider failures become outcomes with OK()=false.
type Service struct {
	client       Client
	limiter      *rate.Limiter
	timeout      time.Duration
	costPerQuery float64
}

// New creates a web search adapter.
func New(client Client, cfg Config) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var limiter *rate.Limiter
	if cfg.RateLimitPerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), burst)
	}
	return &Service{
		client:       client,
		limiter:      limiter,
		timeout:      timeout,
		costPerQuery: cfg.CostPerQuery,
	}
}

// Search runs the query against the web search provider.
func (s *Service) Search(ctx context.Context, q query.Query) outcome.Outcome {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			metrics.AdapterRequestsTotal.WithLabelValues(source, "error").Inc()
			return outcome.Failure(
				fmt.Errorf("web search rate limit wait: %w", domain.ErrAdapterTimeout), 0,
			).WithMeta("source", source)
		}
	}

	start := time.Now()
	res, err := s.client.Search(ctx, q.Text(), q.MaxResults())
	metrics.AdapterRequestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AdapterRequestsTotal.WithLabelValues(source, "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			return outcome.Failure(
				fmt.Errorf("web search: %w", domain.ErrAdapterTimeout), 0,
			).WithMeta("source", source)
		}
		return outcome.Failure(
			fmt.Errorf("web search: %w: %w", domain.ErrAdapterFailure, err), 0,
		).WithMeta("source", source)
	}
	metrics.AdapterRequestsTotal.WithLabelValues(source, "success").Inc()

	items := make([]item.Item, 0, len(res.Citations))
	for rank, c := range res.Citations {
		items = append(items, item.New(
			c.Title, c.Snippet, c.URL,
			item.SourceWeb, citationScore(c, rank), source,
		))
	}

	cost := res.Cost
	if cost <= 0 {
		cost = s.costPerQuery
	}
	confidence := res.Confidence
	if confidence <= 0 {
		confidence = defaultConfidence
	}

	out := outcome.Success(items, res.Response, confidence, cost).
		WithMeta("search_type", source)
	if res.Provider != "" {
		out = out.WithMeta("provider_used", res.Provider)
	}
	return out
}

// citationScore uses the provider score when present, otherwise decays by
// rank so the merged ordering still reflects the provider's ranking.
func citationScore(c domain.WebCitation, rank int) float64 {
	if c.Score > 0 {
		return c.Score
	}
	score := baseScore - scoreStep*float64(rank)
	if score < minScore {
		score = minScore
	}
	return score
}
