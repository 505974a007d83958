package classify

import (
	"testing"

	"github.com/kailas-cloud/unisearch/internal/domain/complexity"
	"github.com/kailas-cloud/unisearch/internal/domain/query"
	"github.com/kailas-cloud/unisearch/internal/domain/route"
)

func makeQuery(t *testing.T, text string, op query.Operation) query.Query {
	t.Helper()
	q, err := query.New(text, "s1", "c1", 10, 0, "", op)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}

func TestClassify_UploadBypassesClassification(t *testing.T) {
	// Text full of web signals must not matter for uploads.
	q := makeQuery(t, "latest news today 2024", query.OperationUpload)
	d := New(0).Classify(q)

	if d.Route() != route.Upload {
		t.Fatalf("expected upload route, got %q", d.Route())
	}
	if d.Confidence() != 1.0 {
		t.Errorf("expected confidence 1.0, got %v", d.Confidence())
	}
}

func TestClassify_Routes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want route.Route
	}{
		{name: "document factual", text: "capital of France", want: route.Document},
		{name: "document file", text: "summarize the uploaded pdf report", want: route.Document},
		{name: "web timely", text: "latest news today", want: route.Web},
		{name: "web price", text: "bitcoin price now", want: route.Web},
		{name: "mixed signals", text: "what is the latest release", want: route.Hybrid},
		{name: "no signals", text: "blue bicycles in Amsterdam", want: route.Hybrid},
	}

	svc := New(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := svc.Classify(makeQuery(t, tt.text, query.OperationSearch))
			if d.Route() != tt.want {
				t.Errorf("expected route %q, got %q (reasoning: %s)", tt.want, d.Route(), d.Reasoning())
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	svc := New(0)
	q := makeQuery(t, "capital of France", query.OperationSearch)

	first := svc.Classify(q)
	for i := 0; i < 10; i++ {
		d := svc.Classify(q)
		if d.Route() != first.Route() || d.Confidence() != first.Confidence() {
			t.Fatal("classification must be deterministic for identical input")
		}
	}
}

func TestClassify_AmbiguousStaysBelowThreshold(t *testing.T) {
	svc := New(0.5)
	d := svc.Classify(makeQuery(t, "blue bicycles in Amsterdam", query.OperationSearch))

	if d.Route() != route.Hybrid {
		t.Fatalf("expected hybrid route, got %q", d.Route())
	}
	if d.Confidence() >= svc.Threshold() {
		t.Errorf("ambiguous confidence %v must be below threshold %v", d.Confidence(), svc.Threshold())
	}
}

func TestComplexity(t *testing.T) {
	tests := []struct {
		text string
		want complexity.Level
	}{
		{text: "capital of France", want: complexity.Simple},
		{text: "list every national park in the western united states", want: complexity.Standard},
		{text: "why is the sky blue", want: complexity.Open},
		{text: "compare rust and go for backend services", want: complexity.Open},
	}

	svc := New(0)
	for _, tt := range tests {
		q := makeQuery(t, tt.text, query.OperationSearch)
		if got := svc.Complexity(q); got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.text, tt.want, got)
		}
	}
}
