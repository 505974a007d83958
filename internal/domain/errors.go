package domain

import "errors"

var (
	// ErrAdapterFailure signals a search provider failure inside one branch.
	ErrAdapterFailure = errors.New("adapter failure")
	// ErrAdapterTimeout signals a search provider that exceeded its own deadline.
	ErrAdapterTimeout = errors.New("adapter timeout")
	// ErrNoRoute signals a routing decision that maps to no known executor.
	ErrNoRoute = errors.New("no usable route")
	// ErrSynthesisFailure signals a failed result synthesis step.
	ErrSynthesisFailure = errors.New("synthesis failure")
	// ErrCacheUnavailable signals an answer cache backend failure.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrStreamClosed signals a consumer that disconnected mid-stream.
	ErrStreamClosed = errors.New("stream consumer disconnected")
)

// KeyPrefix namespaces all keys written by this service.
const KeyPrefix = "unisearch:"
