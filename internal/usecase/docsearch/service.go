package docsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/unisearch/internal/domain"
	"github.com/kailas-cloud/unisearch/internal/domain/outcome"
	"github.com/kailas-cloud/unisearch/internal/domain/query"
	"github.com/kailas-cloud/unisearch/internal/domain/search/item"
	"github.com/kailas-cloud/unisearch/internal/metrics"
)

const (
	// DefaultTimeout bounds a single index call.
	DefaultTimeout = 5 * time.Second
	// searchConfidence reflects that locally indexed content is high-trust.
	searchConfidence = 0.85
	// searchCost is near-zero: the index is a local collaborator.
	searchCost = 0.0

	source = "document"
)

// Service adapts the document index collaborator into the uniform
// execution outcome. It enforces its own timeout and never returns an
// error: provider failures become outcomes with OK()=false.
type Service struct {
	client  Client
	timeout time.Duration
}

// New creates a document search adapter. timeout <= 0 selects DefaultTimeout.
func New(client Client, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{client: client, timeout: timeout}
}

// Search runs the query against the document index.
func (s *Service) Search(ctx context.Context, q query.Query) outcome.Outcome {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	hits, err := s.client.Search(ctx, q.Text(), q.MaxResults())
	metrics.AdapterRequestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AdapterRequestsTotal.WithLabelValues(source, "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			return outcome.Failure(
				fmt.Errorf("document search: %w", domain.ErrAdapterTimeout), searchCost,
			).WithMeta("source", source)
		}
		return outcome.Failure(
			fmt.Errorf("document search: %w: %w", domain.ErrAdapterFailure, err), searchCost,
		).WithMeta("source", source)
	}
	metrics.AdapterRequestsTotal.WithLabelValues(source, "success").Inc()

	items := make([]item.Item, 0, len(hits))
	for _, h := range hits {
		items = append(items, item.New(
			h.Title, h.Content, "document://"+h.ID,
			item.SourceDocument, h.Score, source,
		))
	}

	return outcome.Success(items, "", searchConfidence, searchCost).
		WithMeta("search_type", source)
}
