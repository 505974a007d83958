package synthesis

import (
	"fmt"

	"github.com/kailas-cloud/unisearch/internal/domain/outcome"
	"github.com/kailas-cloud/unisearch/internal/domain/search/item"
)

const (
	// topN is how many hits the summary payload carries.
	topN = 5
	// synthesisConfidence is fixed high: synthesis rarely fails once
	// given valid input.
	synthesisConfidence = 0.9
	synthesisCost       = 0.002

	fallbackConfidence = 0.1
	fallbackMessage    = "Sorry, I couldn't find relevant results for your query."
	fallbackSuggestion = "Try rephrasing your question or using different keywords."

	noResultsMessage = "No results found."
)

// Service turns ranked result sets into summarized response payloads and
// provides the safe fallback payload when no route succeeds.
type Service struct{}

// New creates a synthesis service.
func New() *Service {
	return &Service{}
}

// Synthesize summarizes a ranked result set. An empty input is a valid,
// expected outcome: it yields success at zero confidence, not a failure.
func (s *Service) Synthesize(items []item.Item, meta map[string]string) outcome.Outcome {
	if len(items) == 0 {
		return outcome.Success(nil, noResultsMessage, 0.0, 0).
			WithMeta("response_type", "no_results")
	}

	top := items
	if len(top) > topN {
		top = top[:topN]
	}

	summary := fmt.Sprintf("Found %d relevant results.", len(items))
	out := outcome.Success(top, summary, synthesisConfidence, synthesisCost).
		WithMeta("response_type", "search_results").
		WithMeta("total_found", fmt.Sprintf("%d", len(items)))
	for k, v := range meta {
		out = out.WithMeta(k, v)
	}
	return out
}

// Fallback produces the fixed low-confidence guidance payload. Pure and
// side-effect free: it always succeeds.
func (s *Service) Fallback() outcome.Outcome {
	return outcome.Success(nil, fallbackMessage+" "+fallbackSuggestion, fallbackConfidence, 0).
		WithMeta("response_type", "fallback")
}
