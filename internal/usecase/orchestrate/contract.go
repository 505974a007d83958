package orchestrate

import (
	"context"

	"github.com/kailas-cloud/unisearch/internal/domain/complexity"
	"github.com/kailas-cloud/unisearch/internal/domain/outcome"
	"github.com/kailas-cloud/unisearch/internal/domain/query"
	"github.com/kailas-cloud/unisearch/internal/domain/route"
	"github.com/kailas-cloud/unisearch/internal/domain/search/item"
)

// Classifier decides the route and complexity class for a query.
type Classifier interface {
	Classify(q query.Query) route.Decision
	Complexity(q query.Query) complexity.Level
}

// Searcher executes one search branch. Implementations report provider
// failures and timeouts as failed outcomes, never as panics or hangs.
type Searcher interface {
	Search(ctx context.Context, q query.Query) outcome.Outcome
}

// Synthesizer turns merged items into a final payload, and provides the
// fixed fallback payload when no branch produced anything usable.
type Synthesizer interface {
	Synthesize(items []item.Item, meta map[string]string) outcome.Outcome
	Fallback() outcome.Outcome
}

// AnswerCache stores complete answers keyed by query content.
// Implementations degrade failures to misses.
type AnswerCache interface {
	GetAnswer(ctx context.Context, q query.Query) (string, bool)
	SetAnswer(ctx context.Context, q query.Query, answer string, level complexity.Level)
}
