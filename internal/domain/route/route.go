package route

// Route is the chosen search strategy for a query.
type Route string

// Route constants.
const (
	// Document searches the local document index only.
	Document Route = "document"
	// Web searches external web providers only.
	Web Route = "web"
	// Hybrid runs document and web search concurrently and merges results.
	Hybrid   Route = "hybrid"
	Upload   Route = "upload"
	Fallback Route = "fallback"
)

// IsValid checks if the route is one of the supported values.
func (r Route) IsValid() bool {
	return r == Document || r == Web || r == Hybrid || r == Upload || r == Fallback
}

// Decision is the classifier's routing verdict for a single query.
// It is produced once per query and read-only afterward.
type Decision struct {
	route      Route
	confidence float64
	reasoning  string
}

// NewDecision creates a routing decision. Confidence is clamped to [0,1].
func NewDecision(r Route, confidence float64, reasoning string) Decision {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Decision{route: r, confidence: confidence, reasoning: reasoning}
}

// Route returns the suggested route.
func (d *Decision) Route() Route { return d.route }

// Confidence returns the classifier's confidence in [0,1].
func (d *Decision) Confidence() float64 { return d.confidence }

// Reasoning returns a human-readable explanation for the decision.
func (d *Decision) Reasoning() string { return d.reasoning }
