package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/unisearch/internal/domain/query"
	"github.com/kailas-cloud/unisearch/internal/domain/route"
)

// DefaultThreshold is the confidence level below which a decision counts
// as ambiguous.
const DefaultThreshold = 0.5

// Service routes queries by deterministic keyword heuristics. It never
// fails: ambiguous queries map to the hybrid route with confidence below
// the threshold instead of erroring, and upload operations bypass
// classification entirely.
type Service struct {
	threshold float64
}

// New creates a classifier. threshold <= 0 selects DefaultThreshold.
func New(threshold float64) *Service {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Service{threshold: threshold}
}

// Threshold returns the ambiguity threshold.
func (s *Service) Threshold() float64 { return s.threshold }

// Signals that suggest locally indexed content will answer the query.
var documentSignals = []string{
	"document", "file", "pdf", "report", "uploaded", "my notes",
	"what is", "who is", "who was", "define", "definition", "capital of",
	"meaning of",
}

// Signals that suggest the answer lives on the live web.
var webSignals = []string{
	"latest", "news", "today", "current", "recent", "now",
	"price", "weather", "stock", "release", "best", "top", " vs ",
	"review", "compare",
}

var yearPattern = regexp.MustCompile(`\b20\d{2}\b`)

// Classify inspects the query text and produces a routing decision.
// Deterministic: no network calls, same text and configuration always
// yield the same decision.
func (s *Service) Classify(q query.Query) route.Decision {
	if q.IsUpload() {
		return route.NewDecision(route.Upload, 1.0, "upload operation bypasses classification")
	}

	text := " " + q.Normalized() + " "

	docHits := countHits(text, documentSignals)
	webHits := countHits(text, webSignals)
	if yearPattern.MatchString(text) {
		webHits++
	}

	switch {
	case docHits > 0 && webHits == 0:
		conf := hitConfidence(docHits)
		return route.NewDecision(route.Document, conf,
			fmt.Sprintf("%d document signal(s), no web signals", docHits))
	case webHits > 0 && docHits == 0:
		conf := hitConfidence(webHits)
		return route.NewDecision(route.Web, conf,
			fmt.Sprintf("%d web signal(s), no document signals", webHits))
	case docHits > 0 && webHits > 0:
		return route.NewDecision(route.Hybrid, 0.75,
			fmt.Sprintf("mixed signals: %d document, %d web", docHits, webHits))
	default:
		// No signals at all: ambiguous, stays under the threshold.
		conf := s.threshold - 0.2
		if conf < 0 {
			conf = 0
		}
		return route.NewDecision(route.Hybrid, conf, "no routing signals, defaulting to hybrid")
	}
}

// hitConfidence maps a signal count to a confidence in [0.7, 0.95].
func hitConfidence(hits int) float64 {
	conf := 0.6 + 0.1*float64(hits)
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

func countHits(text string, signals []string) int {
	n := 0
	for _, s := range signals {
		if strings.Contains(text, s) {
			n++
		}
	}
	return n
}
