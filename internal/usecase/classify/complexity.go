package classify

import (
	"strings"

	"github.com/kailas-cloud/unisearch/internal/domain/complexity"
	"github.com/kailas-cloud/unisearch/internal/domain/query"
)

// Markers of open-ended queries whose answers drift too fast to cache.
var openEndedSignals = []string{
	"why", "how do", "how does", "how can", "explain", "compare",
	"opinion", "should i", "pros and cons",
}

const simpleWordLimit = 6

// Complexity classifies how open-ended the query is. The answer cache
// derives its TTL from this level, so the classification happens once per
// query alongside routing.
func (s *Service) Complexity(q query.Query) complexity.Level {
	text := q.Normalized()

	for _, sig := range openEndedSignals {
		if strings.Contains(text, sig) {
			return complexity.Open
		}
	}

	if len(strings.Fields(text)) <= simpleWordLimit {
		return complexity.Simple
	}
	return complexity.Standard
}
