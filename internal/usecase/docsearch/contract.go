package docsearch

import (
	"context"

	"github.com/kailas-cloud/unisearch/internal/domain"
)

// Client is the document index collaborator contract.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]domain.IndexHit, error)
}
