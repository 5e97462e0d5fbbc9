package stash

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kashstash/stash/digest"
	"github.com/kashstash/stash/endpoint"
	"github.com/kashstash/stash/observability"
	"github.com/kashstash/stash/payload"
	"github.com/kashstash/stash/share"
	"github.com/kashstash/stash/upload"
)

// Stash is the root client core.
type Stash struct {
	config     Config
	store      endpoint.Store
	registry   *endpoint.Registry
	builder    *payload.Builder
	dispatcher *upload.Dispatcher
	fanout     *share.FanOut
	digests    *digest.Client
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	transport  http.RoundTripper
	clock      func() time.Time
	logger     *slog.Logger
}

// Option configures a Stash instance.
type Option func(*Stash) error

// New creates a new Stash with the given options.
func New(opts ...Option) (*Stash, error) {
	st := &Stash{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.store == nil {
		return nil, ErrNoStore
	}
	st.wireServices()
	return st, nil
}

// wireServices initializes the internal services after options have been applied.
func (st *Stash) wireServices() {
	st.registry = endpoint.NewRegistry(st.store, st.logger)

	st.builder = payload.NewBuilder(st.clock)

	st.dispatcher = upload.NewDispatcher(upload.Config{
		Domain:    st.config.Domain,
		Timeout:   st.config.RequestTimeout,
		Transport: st.transport,
		Metrics:   st.metrics,
		Tracer:    st.tracer,
	}, st.logger)

	st.fanout = share.NewFanOut(st.builder, st.dispatcher, share.Config{
		Concurrency: st.config.ShareConcurrency,
		Metrics:     st.metrics,
	}, st.logger)

	st.digests = digest.NewClient(digest.Config{
		Domain:    st.config.Domain,
		Timeout:   st.config.RequestTimeout,
		Transport: st.transport,
	}, st.logger, st.clock)
}

// Endpoints returns the endpoint registry.
func (st *Stash) Endpoints() *endpoint.Registry {
	return st.registry
}

// Store returns the underlying store.
func (st *Stash) Store() endpoint.Store {
	return st.store
}

// Digests returns the digest read client.
func (st *Stash) Digests() *digest.Client {
	return st.digests
}

// Close releases the underlying store.
func (st *Stash) Close() error {
	return st.store.Close()
}

// UploadNote sends a text note to the current endpoint. The note travels as
// a base64 text file; the device tag and filename-derived tags are merged
// into userTags. Delivery failure is reported through the Result, not an
// error — the error covers only "no endpoint to send to".
func (st *Stash) UploadNote(ctx context.Context, text, userTags string) (upload.Result, error) {
	ep, err := st.registry.Current(ctx)
	if err != nil {
		return upload.Result{}, err
	}

	p := st.builder.Text(text, userTags, ep.Device).WithFilenameTags()
	return st.dispatcher.Send(ctx, ep, p), nil
}

// UploadImage sends image bytes to the current endpoint. kind selects the
// filename and content type (image vs screenshot); contextPrompt is attached
// for downstream processing. Screenshots are archived locally first when the
// endpoint asks for it.
func (st *Stash) UploadImage(ctx context.Context, data []byte, kind payload.Kind, userTags, contextPrompt string) (upload.Result, error) {
	ep, err := st.registry.Current(ctx)
	if err != nil {
		return upload.Result{}, err
	}

	p := st.builder.Image(data, kind, userTags, contextPrompt, ep.Device).WithFilenameTags()

	if kind == payload.KindScreenshot {
		st.archiveScreenshot(ctx, ep, data, p.File.Filename)
	}

	return st.dispatcher.Send(ctx, ep, p), nil
}

// Share fans out a batch of attachments to the current endpoint and returns
// the aggregate summary. With no endpoint configured the batch resolves to
// OutcomeNothingShared rather than an error: share surfaces have no good way
// to ask the user to fix their configuration mid-share.
func (st *Stash) Share(ctx context.Context, userTags, contextPrompt string, items []share.Attachment) share.Summary {
	ep, err := st.registry.Current(ctx)
	if err != nil {
		st.logger.WarnContext(ctx, "share with no endpoint configured", "error", err)
		return share.Summary{Outcome: share.OutcomeNothingShared}
	}
	return st.fanout.Run(ctx, ep, userTags, contextPrompt, items)
}

// FetchDigest retrieves the content of a single digest through the current
// endpoint's digest read probe.
func (st *Stash) FetchDigest(ctx context.Context, digestID string) (string, error) {
	ep, err := st.registry.Current(ctx)
	if err != nil {
		return "", err
	}
	probe, ok := ep.DigestFetchProbe()
	if !ok {
		return "", fmt.Errorf("%w: digest fetch", ErrProbeNotConfigured)
	}
	return st.digests.Fetch(ctx, probe, digestID)
}

// FetchConfigDigest retrieves the device's remote config template, named by
// the endpoint's configDigestId. The fetch goes through the digest read
// probe, on the config digest node when one is set.
func (st *Stash) FetchConfigDigest(ctx context.Context) (string, error) {
	ep, err := st.registry.Current(ctx)
	if err != nil {
		return "", err
	}
	if ep.ConfigDigestID == "" {
		return "", fmt.Errorf("%w: config digest", ErrProbeNotConfigured)
	}
	probe, ok := ep.DigestFetchProbe()
	if !ok {
		return "", fmt.Errorf("%w: digest fetch", ErrProbeNotConfigured)
	}
	if ep.ConfigDigestNode != "" {
		probe.NodeName = ep.ConfigDigestNode
	}
	return st.digests.Fetch(ctx, probe, ep.ConfigDigestID)
}

// ListDigests lists digests tagged with tag within the lookback window,
// through the current endpoint's listing probe.
func (st *Stash) ListDigests(ctx context.Context, tag string, lookback time.Duration) ([]digest.Entry, error) {
	ep, err := st.registry.Current(ctx)
	if err != nil {
		return nil, err
	}
	probe, ok := ep.ListDigestsProbe()
	if !ok {
		return nil, fmt.Errorf("%w: digest listing", ErrProbeNotConfigured)
	}
	return st.digests.List(ctx, probe, tag, lookback)
}

// archiveScreenshot writes the raw image next to the user's other kept
// screenshots. Failure is logged and otherwise ignored: a full disk must
// not stop the upload.
func (st *Stash) archiveScreenshot(ctx context.Context, ep *endpoint.Endpoint, data []byte, filename string) {
	if !ep.KeepScreenshots || ep.ScreenshotFolder == "" {
		return
	}
	if err := os.MkdirAll(ep.ScreenshotFolder, 0o755); err != nil {
		st.logger.WarnContext(ctx, "screenshot archive failed", "error", err)
		return
	}
	path := filepath.Join(ep.ScreenshotFolder, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		st.logger.WarnContext(ctx, "screenshot archive failed", "path", path, "error", err)
	}
}
