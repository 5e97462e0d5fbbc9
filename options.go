package stash

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/kashstash/stash/endpoint"
	"github.com/kashstash/stash/observability"
)

// WithStore sets the persistence backend for the Stash instance.
func WithStore(s endpoint.Store) Option {
	return func(st *Stash) error {
		st.store = s
		return nil
	}
}

// WithLogger sets the structured logger for the Stash instance.
func WithLogger(logger *slog.Logger) Option {
	return func(st *Stash) error {
		st.logger = logger
		return nil
	}
}

// WithDomain sets the platform domain probe URLs expand against.
func WithDomain(domain string) Option {
	return func(st *Stash) error {
		st.config.Domain = domain
		return nil
	}
}

// WithRequestTimeout sets the HTTP timeout per upload or read attempt.
func WithRequestTimeout(d time.Duration) Option {
	return func(st *Stash) error {
		st.config.RequestTimeout = d
		return nil
	}
}

// WithConcurrency bounds the number of concurrent uploads in a share fan-out.
func WithConcurrency(n int) Option {
	return func(st *Stash) error {
		st.config.ShareConcurrency = n
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *observability.Metrics) Option {
	return func(st *Stash) error {
		st.metrics = m
		return nil
	}
}

// WithTracer sets the tracer for upload spans.
func WithTracer(t *observability.Tracer) Option {
	return func(st *Stash) error {
		st.tracer = t
		return nil
	}
}

// WithTransport overrides the HTTP transport used for uploads and digest
// reads. Intended for tests and egress proxies.
func WithTransport(rt http.RoundTripper) Option {
	return func(st *Stash) error {
		st.transport = rt
		return nil
	}
}

// WithClock injects the clock used for payload filenames and digest listing
// windows. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(st *Stash) error {
		st.clock = clock
		return nil
	}
}
