package orchestrate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/unisearch/internal/domain"
	"github.com/kailas-cloud/unisearch/internal/domain/outcome"
	"github.com/kailas-cloud/unisearch/internal/domain/query"
	"github.com/kailas-cloud/unisearch/internal/domain/search/item"
)

// combine fans out to the document and web branches concurrently and
// joins their results. Both goroutines are owned by this call: it does
// not return until both have finished. A panic in one branch is
// contained as that branch's failure.
func (s *Service) combine(ctx context.Context, q query.Query) outcome.Outcome {
	var (
		wg     sync.WaitGroup
		docOut outcome.Outcome
		webOut outcome.Outcome
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				docOut = outcome.Failure(fmt.Errorf("document branch panic: %v: %w", r, domain.ErrAdapterFailure), 0)
			}
		}()
		docOut = s.document.Search(ctx, q)
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				webOut = outcome.Failure(fmt.Errorf("web branch panic: %v: %w", r, domain.ErrAdapterFailure), 0)
			}
		}()
		webOut = s.web.Search(ctx, q)
	}()
	wg.Wait()

	return mergeBranches(q, docOut, webOut)
}

// mergeBranches unions two branch outcomes. One surviving branch is
// still a success, marked partial. Document items precede web items
// before the stable sort, so equal scores rank local content first.
func mergeBranches(q query.Query, docOut, webOut outcome.Outcome) outcome.Outcome {
	docOK, webOK := docOut.OK(), webOut.OK()

	if !docOK && !webOK {
		return outcome.Failure(
			fmt.Errorf("both hybrid branches failed (document: %v, web: %v): %w",
				docOut.Err(), webOut.Err(), domain.ErrAdapterFailure),
			0)
	}

	var items []item.Item
	var cost float64
	if docOK {
		items = append(items, docOut.Items()...)
		cost += docOut.Cost()
	}
	if webOK {
		items = append(items, webOut.Items()...)
		cost += webOut.Cost()
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score() > items[j].Score()
	})
	if len(items) > q.MaxResults() {
		items = items[:q.MaxResults()]
	}

	confidence := 0.0
	if docOK && docOut.Confidence() > confidence {
		confidence = docOut.Confidence()
	}
	if webOK && webOut.Confidence() > confidence {
		confidence = webOut.Confidence()
	}

	out := outcome.Success(items, "", confidence, cost).
		WithMeta("search_type", "hybrid")
	switch {
	case docOK && !webOK:
		out = out.WithMeta("hybrid_partial", "document_only")
	case webOK && !docOK:
		out = out.WithMeta("hybrid_partial", "web_only")
	}
	return out
}
