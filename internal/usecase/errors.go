package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrUpstreamEmpty marks a well-formed provider reply whose response
	// array is empty. Every fetch treats it as a hard failure; no data
	// from the provider is never a valid ingest input.
	ErrUpstreamEmpty = errors.New("upstream returned no data")

	// ErrMissingSeason is returned when a fixture payload carries no
	// season, which would make the record unroutable in the store.
	ErrMissingSeason = errors.New("fixture payload is missing season")

	// ErrUpstream marks transport or HTTP failures talking to the
	// provider, with the provider's message attached when available.
	ErrUpstream = errors.New("upstream provider failure")

	// ErrStoreWrite marks a failed merge-write; the caller decides whether
	// it is fatal for the invocation.
	ErrStoreWrite = errors.New("store write failure")
)
