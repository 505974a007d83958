package orchestrate

import "github.com/kailas-cloud/unisearch/internal/domain/route"

// State is a position in the request lifecycle. The machine never
// loops: routing, one branch, synthesis or fallback, done.
type State string

// Lifecycle states.
const (
	StateRouting   State = "routing"
	StateDocument  State = "document"
	StateWeb       State = "web"
	StateHybrid    State = "hybrid"
	StateUpload    State = "upload"
	StateSynthesis State = "synthesis"
	StateFallback  State = "fallback"
	StateDone      State = "done"
)

// branchState maps a routing decision to the branch state it enters.
// Unrecognized routes map to fallback.
func branchState(r route.Route) State {
	switch r {
	case route.Document:
		return StateDocument
	case route.Web:
		return StateWeb
	case route.Hybrid:
		return StateHybrid
	case route.Upload:
		return StateUpload
	default:
		return StateFallback
	}
}
