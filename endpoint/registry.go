package endpoint

import (
	"context"
	"log/slog"

	"github.com/kashstash/stash/id"
	"github.com/kashstash/stash/internal/entity"
)

// Registry provides endpoint management over a configuration Store.
//
// Every mutation is write-through: the full document is persisted before the
// call returns, so a second process reading the same storage observes the
// latest state. The registry holds no cached state of its own.
type Registry struct {
	store  Store
	logger *slog.Logger
}

// NewRegistry creates a registry backed by the given store.
func NewRegistry(store Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{store: store, logger: logger}
}

// load returns the current document, falling back to an empty default when
// the store reports a failure. Store backends already fail soft; this keeps
// the registry total even against a misbehaving backend.
func (r *Registry) load(ctx context.Context) *Document {
	doc, err := r.store.Load(ctx)
	if err != nil || doc == nil {
		if err != nil {
			r.logger.WarnContext(ctx, "config load failed, using empty default", "error", err)
		}
		return &Document{}
	}
	return doc
}

// List returns all endpoints in insertion (display) order.
func (r *Registry) List(ctx context.Context) []Endpoint {
	return r.load(ctx).Endpoints
}

// Get returns the endpoint with the given ID.
func (r *Registry) Get(ctx context.Context, epID id.ID) (*Endpoint, error) {
	doc := r.load(ctx)
	for i := range doc.Endpoints {
		if doc.Endpoints[i].ID.String() == epID.String() {
			return &doc.Endpoints[i], nil
		}
	}
	return nil, ErrNotFound
}

// Add validates the input, appends a new endpoint, makes it current, and
// persists. Nothing is written when validation fails.
func (r *Registry) Add(ctx context.Context, in Input) (*Endpoint, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ep := newEndpoint(in)

	doc := r.load(ctx)
	doc.Endpoints = append(doc.Endpoints, ep)
	doc.LastUsed = ep.ID.String()

	if err := r.store.Save(ctx, doc); err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "endpoint added", "endpoint_id", ep.ID, "name", ep.Name)
	return &ep, nil
}

// Update replaces the endpoint with the matching ID in place, preserving its
// position and creation time. An unknown ID persists nothing and returns
// ErrNotFound — a sentinel rather than a silent no-op, so callers can tell a
// stale ID from a successful edit.
func (r *Registry) Update(ctx context.Context, epID id.ID, in Input) (*Endpoint, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	doc := r.load(ctx)
	for i := range doc.Endpoints {
		if doc.Endpoints[i].ID.String() != epID.String() {
			continue
		}

		ep := newEndpoint(in)
		ep.ID = epID
		ep.CreatedAt = doc.Endpoints[i].CreatedAt
		doc.Endpoints[i] = ep

		if err := r.store.Save(ctx, doc); err != nil {
			return nil, err
		}
		return &doc.Endpoints[i], nil
	}
	return nil, ErrNotFound
}

// Delete removes the endpoint with the matching ID. When the removed
// endpoint was current, the first remaining endpoint becomes current, or no
// endpoint when the list is now empty.
func (r *Registry) Delete(ctx context.Context, epID id.ID) error {
	doc := r.load(ctx)

	idx := -1
	for i := range doc.Endpoints {
		if doc.Endpoints[i].ID.String() == epID.String() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	wasCurrent := doc.LastUsed == epID.String()
	doc.Endpoints = append(doc.Endpoints[:idx], doc.Endpoints[idx+1:]...)

	if wasCurrent {
		if len(doc.Endpoints) > 0 {
			doc.LastUsed = doc.Endpoints[0].ID.String()
		} else {
			doc.LastUsed = ""
		}
	}

	return r.store.Save(ctx, doc)
}

// SetCurrent marks the given ID current unconditionally and persists. The ID
// is not required to name a list member; Current repairs a dangling
// reference on read.
func (r *Registry) SetCurrent(ctx context.Context, epID id.ID) error {
	doc := r.load(ctx)
	doc.LastUsed = epID.String()
	return r.store.Save(ctx, doc)
}

// Current resolves the active endpoint: the one matching the persisted
// current-endpoint reference, or the first endpoint when the reference is
// absent or dangling. Returns ErrNoEndpoints when the list is empty.
//
// This fallback is the single policy for reading the active endpoint; any
// process reading the same storage resolves identically.
func (r *Registry) Current(ctx context.Context) (*Endpoint, error) {
	doc := r.load(ctx)
	ep := ResolveCurrent(doc)
	if ep == nil {
		return nil, ErrNoEndpoints
	}
	return ep, nil
}

// ResolveCurrent applies the current-endpoint fallback policy to a document:
// match by LastUsed, else first endpoint, else nil.
func ResolveCurrent(doc *Document) *Endpoint {
	if doc == nil || len(doc.Endpoints) == 0 {
		return nil
	}
	for i := range doc.Endpoints {
		if doc.Endpoints[i].ID.String() == doc.LastUsed {
			return &doc.Endpoints[i]
		}
	}
	return &doc.Endpoints[0]
}

func newEndpoint(in Input) Endpoint {
	return Endpoint{
		Entity:           entity.New(),
		ID:               id.NewEndpointID(),
		Name:             in.Name,
		Device:           in.Device,
		ProbeKey:         in.ProbeKey,
		NodeName:         in.NodeName,
		ProbeID:          in.ProbeID,
		KeepScreenshots:  in.KeepScreenshots,
		ScreenshotFolder: in.ScreenshotFolder,
		DigestProbe:      in.DigestProbe,
		ListProbe:        in.ListProbe,
		ConfigDigestID:   in.ConfigDigestID,
		ConfigDigestNode: in.ConfigDigestNode,
	}
}
