package domain

import "github.com/pkg/errors"

var (
	// ErrNotFound means the provider has no record for the requested id
	// and no local row exists. Distinct from ErrProviderUnavailable so
	// callers can tell "doesn't exist" from "couldn't check".
	ErrNotFound = errors.New("anime not found")

	// ErrProviderUnavailable means the provider could not be reached
	// (circuit open or retries exhausted).
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrInvalidParams means the request was malformed and was rejected
	// before any provider call.
	ErrInvalidParams = errors.New("invalid parameters")
)
