package stash

import (
	"errors"

	"github.com/kashstash/stash/endpoint"
)

// Sentinel errors returned by Stash operations.
var (
	// ErrNoStore is returned when a Stash is created without a store.
	ErrNoStore = errors.New("stash: store is required")

	// ErrEndpointNotFound is returned when an endpoint cannot be found.
	ErrEndpointNotFound = endpoint.ErrNotFound

	// ErrNoEndpoints is returned when an operation needs a current endpoint
	// but none are configured.
	ErrNoEndpoints = endpoint.ErrNoEndpoints

	// ErrProbeNotConfigured is returned when a digest operation needs a read
	// probe the current endpoint does not carry.
	ErrProbeNotConfigured = errors.New("stash: read probe not configured")
)
