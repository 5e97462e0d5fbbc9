// Package share fans out heterogeneous shared attachments into concurrent
// uploads and joins their outcomes into one user-facing result.
package share

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kashstash/stash/endpoint"
	"github.com/kashstash/stash/observability"
	"github.com/kashstash/stash/payload"
	"github.com/kashstash/stash/upload"
)

// Kind classifies a shared attachment.
type Kind string

// Recognized attachment kinds. Anything else is ignored.
const (
	KindImage Kind = "image"
	KindText  Kind = "text"
	KindURL   Kind = "url"
)

// Content is the materialized content of an attachment. Image attachments
// carry Bytes (and the matching payload kind); text and URL attachments
// carry Text.
type Content struct {
	Bytes []byte
	Text  string

	// ImageKind selects JPEG vs PNG handling for image attachments.
	// Zero means payload.KindImage.
	ImageKind payload.Kind
}

// LoadFunc materializes an attachment's content from its OS-provided handle.
// Loading may involve disk I/O and runs off the caller's goroutine.
type LoadFunc func(ctx context.Context) (*Content, error)

// Attachment is one shared item awaiting upload.
type Attachment struct {
	Kind Kind
	Load LoadFunc
}

// Outcome is the aggregate result of a fan-out invocation.
type Outcome int

const (
	// OutcomeNothingShared means no payload was built and no upload started:
	// either nothing was recognized or every load failed.
	OutcomeNothingShared Outcome = iota

	// OutcomeSucceeded means at least one upload returned success. Partial
	// success counts as success: the goal is that at least one thing got
	// through.
	OutcomeSucceeded

	// OutcomeFailed means uploads were attempted and every one failed.
	OutcomeFailed
)

// Summary is the joined result delivered once, after all dispatched work has
// completed.
type Summary struct {
	Outcome   Outcome
	Attempted int
	Succeeded int
}

// Message returns the user-facing text for this summary.
func (s Summary) Message() string {
	switch s.Outcome {
	case OutcomeSucceeded:
		return "Upload successful"
	case OutcomeFailed:
		return "Upload failed"
	default:
		return "No shareable content found"
	}
}

// Config holds fan-out configuration.
type Config struct {
	// Concurrency bounds the number of simultaneously running load+upload
	// tasks. Attachments are few (typically 1–5), so a small bound is fine.
	Concurrency int

	Metrics *observability.Metrics
}

// FanOut runs the share state machine: discover, dispatch, join, finalize.
type FanOut struct {
	builder    *payload.Builder
	dispatcher *upload.Dispatcher
	config     Config
	logger     *slog.Logger
}

// NewFanOut creates a fan-out runner.
func NewFanOut(builder *payload.Builder, dispatcher *upload.Dispatcher, cfg Config, logger *slog.Logger) *FanOut {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FanOut{builder: builder, dispatcher: dispatcher, config: cfg, logger: logger}
}

// Run loads, builds and uploads every recognized attachment concurrently,
// then joins. The endpoint is read once up front; no configuration state is
// touched during the cycle.
//
// Join semantics: Run waits for all dispatched tasks — no short-circuit on
// first failure or first success, because the outcome is aggregate. A load
// failure drops that attachment without counting as an attempt. Individual
// uploads are not retried and no timeout is imposed beyond the transport's.
func (f *FanOut) Run(ctx context.Context, ep *endpoint.Endpoint, userTags, prompt string, items []Attachment) Summary {
	if f.config.Metrics != nil {
		f.config.Metrics.ShareBatches.Inc()
	}

	var (
		mu        sync.Mutex
		attempted int
		succeeded int
	)

	sem := make(chan struct{}, f.config.Concurrency)
	var wg sync.WaitGroup

	for _, item := range items {
		if !recognized(item.Kind) {
			f.recordItem("ignored")
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(item Attachment) {
			defer wg.Done()
			defer func() { <-sem }()

			content, err := item.Load(ctx)
			if err != nil || content == nil {
				f.logger.WarnContext(ctx, "attachment load failed, skipping",
					"kind", item.Kind, "error", err)
				f.recordItem("dropped")
				return
			}

			p := f.build(item.Kind, content, userTags, prompt, ep.Device)

			mu.Lock()
			attempted++
			mu.Unlock()

			res := f.dispatcher.Send(ctx, ep, p)
			if res.OK() {
				mu.Lock()
				succeeded++
				mu.Unlock()
				f.recordItem("uploaded")
			} else {
				f.recordItem("failed")
			}
		}(item)
	}

	// Join: every dispatched load+upload must finish before the aggregate
	// outcome is decided.
	wg.Wait()

	s := Summary{Attempted: attempted, Succeeded: succeeded}
	switch {
	case attempted == 0:
		s.Outcome = OutcomeNothingShared
	case succeeded > 0:
		s.Outcome = OutcomeSucceeded
	default:
		s.Outcome = OutcomeFailed
	}
	return s
}

func (f *FanOut) build(kind Kind, content *Content, userTags, prompt string, device string) *payload.Payload {
	if kind == KindImage {
		imageKind := content.ImageKind
		if imageKind == "" {
			imageKind = payload.KindImage
		}
		return f.builder.Image(content.Bytes, imageKind, userTags, prompt, device)
	}
	// Text and URLs upload as plain-text notes.
	return f.builder.Text(content.Text, userTags, device)
}

func (f *FanOut) recordItem(state string) {
	if f.config.Metrics != nil {
		f.config.Metrics.RecordShareItem(state)
	}
}

func recognized(k Kind) bool {
	switch k {
	case KindImage, KindText, KindURL:
		return true
	}
	return false
}
