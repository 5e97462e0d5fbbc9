// Package memory provides an in-memory Store implementation for unit testing.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/kashstash/stash/endpoint"
)

// compile-time interface check.
var _ endpoint.Store = (*Store)(nil)

// ErrClosed is returned when the store is used after Close.
var ErrClosed = errors.New("memory: store is closed")

// Store is an in-memory implementation of endpoint.Store for testing.
// The document is deep-copied on every Load and Save so callers can never
// mutate the stored state through a retained pointer.
type Store struct {
	mu     sync.RWMutex
	doc    endpoint.Document
	closed bool
}

// New creates a new in-memory store holding an empty document.
func New() *Store {
	return &Store{}
}

// Load returns a copy of the stored document. A fresh store yields an
// empty document, matching the fail-soft contract of endpoint.Store.
func (s *Store) Load(_ context.Context) (*endpoint.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	return copyDocument(&s.doc), nil
}

// Save replaces the stored document with a copy of doc.
func (s *Store) Save(_ context.Context, doc *endpoint.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.doc = *copyDocument(doc)
	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func copyDocument(doc *endpoint.Document) *endpoint.Document {
	out := &endpoint.Document{LastUsed: doc.LastUsed}
	if len(doc.Endpoints) > 0 {
		out.Endpoints = make([]endpoint.Endpoint, len(doc.Endpoints))
		copy(out.Endpoints, doc.Endpoints)
		// The slice copy shares the optional probe pointers; clone them
		// so a retained endpoint cannot reach the stored state.
		for i := range out.Endpoints {
			out.Endpoints[i].DigestProbe = copyProbe(out.Endpoints[i].DigestProbe)
			out.Endpoints[i].ListProbe = copyProbe(out.Endpoints[i].ListProbe)
		}
	}
	return out
}

func copyProbe(p *endpoint.Probe) *endpoint.Probe {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
