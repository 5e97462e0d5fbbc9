package endpoint

import (
	"context"
	"errors"
)

// Sentinel errors for registry and store operations.
var (
	// ErrNotFound is returned when an endpoint cannot be found.
	ErrNotFound = errors.New("endpoint: not found")

	// ErrNoEndpoints is returned when an operation needs a current endpoint
	// but none are configured.
	ErrNoEndpoints = errors.New("endpoint: no endpoints configured")
)

// Document is the persisted configuration: the full endpoint list plus the
// identifier of the currently selected endpoint.
//
// LastUsed is a non-owning reference. It should name a member of Endpoints,
// but readers must tolerate a dangling reference (e.g. after a delete
// observed from another process) by falling back to the first endpoint.
type Document struct {
	Endpoints []Endpoint `json:"endpoints"`
	LastUsed  string     `json:"lastUsedEndpoint"`
}

// Store defines the persistence contract for the configuration document.
//
// The document is always read and written whole. Save must replace the
// stored document atomically so that a concurrent reader in another process
// (a share extension, a second CLI invocation) never observes a partial
// write. Load must fail soft: absent, corrupt or undecodable storage yields
// an empty default Document and a nil error, never a failure the caller has
// to recover from.
type Store interface {
	// Load returns the full configuration document.
	Load(ctx context.Context) (*Document, error)

	// Save atomically replaces the stored document.
	Save(ctx context.Context, doc *Document) error

	// Close releases any resources held by the store.
	Close() error
}
