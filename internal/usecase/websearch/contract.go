package websearch

import (
	"context"

	"github.com/kailas-cloud/unisearch/internal/domain"
)

// Client is the web search collaborator contract.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) (domain.WebSearchResult, error)
}
