package query

import (
	"fmt"
	"strings"
)

// Query parameter limits.
const (
	// MaxTextLength is the maximum allowed query text length.
	MaxTextLength     = 4096
	DefaultMaxResults = 10
	MaxMaxResults     = 50
)

// Operation tags what the caller wants done with the query.
type Operation string

// Operation constants.
const (
	OperationSearch Operation = "search"
	OperationUpload Operation = "upload"
)

// Query is a validated, immutable search request.
type Query struct {
	text          string
	sessionID     string
	correlationID string
	maxResults    int
	maxCost       float64
	quality       string
	operation     Operation
}

// New validates and normalizes query parameters.
// Defaults: maxResults=10 (capped at 50), operation=search.
func New(
	text, sessionID, correlationID string,
	maxResults int,
	maxCost float64,
	quality string,
	op Operation,
) (Query, error) {
	if strings.TrimSpace(text) == "" {
		return Query{}, fmt.Errorf("query text is required")
	}
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("query too long (max %d chars)", MaxTextLength)
	}
	if op == "" {
		op = OperationSearch
	}
	if op != OperationSearch && op != OperationUpload {
		return Query{}, fmt.Errorf("invalid operation: %q", op)
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > MaxMaxResults {
		maxResults = MaxMaxResults
	}
	if maxCost < 0 {
		return Query{}, fmt.Errorf("max_cost must be non-negative")
	}

	return Query{
		text:          text,
		sessionID:     sessionID,
		correlationID: correlationID,
		maxResults:    maxResults,
		maxCost:       maxCost,
		quality:       quality,
		operation:     op,
	}, nil
}

// Text returns the raw query text.
func (q *Query) Text() string { return q.text }

// SessionID returns the conversation session identifier.
func (q *Query) SessionID() string { return q.sessionID }

// CorrelationID returns the request correlation identifier.
func (q *Query) CorrelationID() string { return q.correlationID }

// MaxResults returns the result count cap.
func (q *Query) MaxResults() int { return q.maxResults }

// MaxCost returns the caller's cost budget (0 = unlimited).
func (q *Query) MaxCost() float64 { return q.maxCost }

// Quality returns the requested quality level.
func (q *Query) Quality() string { return q.quality }

// Operation returns the operation tag.
func (q *Query) Operation() Operation { return q.operation }

// IsUpload reports whether the query is a document upload operation.
func (q *Query) IsUpload() bool { return q.operation == OperationUpload }

// Normalized returns the query text lowercased with whitespace collapsed.
// Cache keys derive from this form so hits survive formatting differences.
func (q *Query) Normalized() string {
	return strings.Join(strings.Fields(strings.ToLower(q.text)), " ")
}
