package orchestrate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/unisearch/internal/domain"
	"github.com/kailas-cloud/unisearch/internal/domain/outcome"
	"github.com/kailas-cloud/unisearch/internal/domain/query"
	"github.com/kailas-cloud/unisearch/internal/domain/route"
	"github.com/kailas-cloud/unisearch/internal/logger"
	"github.com/kailas-cloud/unisearch/internal/metrics"
)

const (
	// routingCost is the fixed bookkeeping cost of one classification.
	routingCost = 0.001

	defaultPipelineTimeout = 30 * time.Second

	uploadAck = "Document received and queued for indexing."
)

// Result is the terminal product of one request: the final outcome plus
// the routing decision and elapsed time callers report back.
type Result struct {
	Outcome  outcome.Outcome
	Decision route.Decision
	Elapsed  time.Duration
}

// Service drives a query through the routing state machine: classify,
// execute one branch, then synthesize or fall back. Every request
// terminates with a well-formed outcome regardless of what the branches
// or collaborators do.
type Service struct {
	classifier Classifier
	document   Searcher
	web        Searcher
	synth      Synthesizer
	cache      AnswerCache
	timeout    time.Duration
}

// New wires the orchestrator. cache may be nil to disable answer
// caching. A non-positive timeout selects the default pipeline timeout.
func New(
	classifier Classifier,
	document, web Searcher,
	synth Synthesizer,
	cache AnswerCache,
	timeout time.Duration,
) *Service {
	if timeout <= 0 {
		timeout = defaultPipelineTimeout
	}
	return &Service{
		classifier: classifier,
		document:   document,
		web:        web,
		synth:      synth,
		cache:      cache,
		timeout:    timeout,
	}
}

// Execute runs the full pipeline for one query. Programming errors in
// any stage are converted into the fallback outcome so the caller
// always receives a response.
func (s *Service) Execute(ctx context.Context, q query.Query) (res Result) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log := logger.FromContext(ctx)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Pipeline panic recovered, falling back",
				zap.Any("panic", r))
			res = Result{
				Outcome:  s.synth.Fallback().WithCost(routingCost),
				Decision: route.NewDecision(route.Fallback, 0, "internal error"),
				Elapsed:  time.Since(start),
			}
		}
		res.Elapsed = time.Since(start)
	}()

	if q.IsUpload() {
		decision := route.NewDecision(route.Upload, 1.0, "upload operation bypasses classification")
		s.transition(log, StateRouting, StateUpload, decision)
		metrics.RoutesTotal.WithLabelValues(string(route.Upload)).Inc()
		out := outcome.Success(nil, uploadAck, 1.0, 0).
			WithMeta("response_type", "upload_ack")
		s.transition(log, StateUpload, StateDone, decision)
		return Result{Outcome: out, Decision: decision}
	}

	decision := s.classifier.Classify(q)
	branch := branchState(decision.Route())
	s.transition(log, StateRouting, branch, decision)
	metrics.RoutesTotal.WithLabelValues(string(decision.Route())).Inc()

	branchOut := s.dispatch(ctx, q, decision.Route())

	var final outcome.Outcome
	if branchOut.OK() && len(branchOut.Items()) > 0 {
		s.transition(log, branch, StateSynthesis, decision)
		final = s.synth.Synthesize(branchOut.Items(), branchOut.Metadata())
		if !final.OK() {
			final = s.synth.Fallback()
		}
		final = final.WithCost(routingCost + branchOut.Cost() + final.Cost())
		s.transition(log, StateSynthesis, StateDone, decision)
	} else {
		s.transition(log, branch, StateFallback, decision)
		if err := branchOut.Err(); err != nil {
			log.Warn("Branch failed, falling back",
				zap.String("route", string(decision.Route())),
				zap.Error(err))
		}
		final = s.synth.Fallback().WithCost(routingCost + branchOut.Cost())
		s.transition(log, StateFallback, StateDone, decision)
	}

	return Result{Outcome: final, Decision: decision}
}

// Answer resolves a query to its final answer text, consulting the
// answer cache before running the pipeline. cached reports whether the
// text was replayed from cache.
func (s *Service) Answer(ctx context.Context, q query.Query) (answer string, cached bool, res Result) {
	if s.cache != nil && !q.IsUpload() {
		if text, ok := s.cache.GetAnswer(ctx, q); ok {
			out := outcome.Success(nil, text, 1.0, 0).
				WithMeta("response_type", "cached")
			return text, true, Result{Outcome: out}
		}
	}

	res = s.Execute(ctx, q)
	answer = res.Outcome.Answer()

	if s.cache != nil && res.Outcome.OK() {
		if rt, _ := res.Outcome.Meta("response_type"); rt == "search_results" {
			s.cache.SetAnswer(ctx, q, answer, s.classifier.Complexity(q))
		}
	}
	return answer, false, res
}

// dispatch executes the branch for the chosen route. Unrecognized
// routes fail without touching any adapter.
func (s *Service) dispatch(ctx context.Context, q query.Query, r route.Route) outcome.Outcome {
	switch r {
	case route.Document:
		return s.document.Search(ctx, q)
	case route.Web:
		return s.web.Search(ctx, q)
	case route.Hybrid:
		return s.combine(ctx, q)
	default:
		return outcome.Failure(fmt.Errorf("route %q: %w", r, domain.ErrNoRoute), 0)
	}
}

func (s *Service) transition(log *zap.Logger, from, to State, d route.Decision) {
	log.Debug("State transition",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("route", string(d.Route())),
		zap.Float64("confidence", d.Confidence()),
		zap.String("reasoning", d.Reasoning()))
}
