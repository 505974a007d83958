package outcome

import (
	"github.com/kailas-cloud/unisearch/internal/domain/search/item"
)

// Outcome is the uniform result of any routing, search, or synthesis stage.
// Failures are carried as data here rather than raised across stage
// boundaries. An Outcome is owned by the stage that produced it and
// read-only downstream.
type Outcome struct {
	ok         bool
	items      []item.Item
	answer     string
	confidence float64
	cost       float64
	err        error
	metadata   map[string]string
}

// Success creates a successful outcome carrying items and an optional
// answer text.
func Success(items []item.Item, answer string, confidence, cost float64) Outcome {
	return Outcome{
		ok:         true,
		items:      items,
		answer:     answer,
		confidence: confidence,
		cost:       cost,
	}
}

// Failure creates a failed outcome. The error is retained for kind checks
// via errors.Is; cost covers work done before the failure.
func Failure(err error, cost float64) Outcome {
	return Outcome{ok: false, err: err, cost: cost}
}

// OK reports whether the stage succeeded.
func (o *Outcome) OK() bool { return o.ok }

// Items returns the scored hits, ordered by relevance.
func (o *Outcome) Items() []item.Item { return o.items }

// Answer returns the textual answer payload, if any.
func (o *Outcome) Answer() string { return o.answer }

// Confidence returns the stage's confidence in [0,1].
func (o *Outcome) Confidence() float64 { return o.confidence }

// Cost returns the accumulated external cost of the stage.
func (o *Outcome) Cost() float64 { return o.cost }

// Err returns the stage error, nil on success.
func (o *Outcome) Err() error { return o.err }

// Meta returns a metadata value by key.
func (o *Outcome) Meta(key string) (string, bool) {
	v, ok := o.metadata[key]
	return v, ok
}

// Metadata returns the full metadata bag. Callers must not mutate it.
func (o *Outcome) Metadata() map[string]string { return o.metadata }

// WithMeta returns a copy of the outcome with one metadata entry added.
// The original is left untouched so upstream stages keep their view.
func (o Outcome) WithMeta(key, value string) Outcome {
	meta := make(map[string]string, len(o.metadata)+1)
	for k, v := range o.metadata {
		meta[k] = v
	}
	meta[key] = value
	o.metadata = meta
	return o
}

// WithCost returns a copy of the outcome with the cost replaced. The
// orchestrator uses it to fold routing and synthesis costs into the final
// outcome.
func (o Outcome) WithCost(cost float64) Outcome {
	o.cost = cost
	return o
}
