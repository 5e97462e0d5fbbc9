// Package upload performs the authenticated HTTP dispatch of built payloads.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kashstash/stash/endpoint"
	"github.com/kashstash/stash/observability"
	"github.com/kashstash/stash/payload"
)

const maxResponseBody = 1024 // 1KB cap on diagnostic response body

// probeKeyHeader authenticates the request to the probe. Fixed contract.
const probeKeyHeader = "X-PROBE-KEY"

// Result holds the outcome of a single upload attempt. Success is exactly
// HTTP 200; every other status, transport failure or timeout is a failure.
// There is no partial-success status.
type Result struct {
	StatusCode int
	Response   string
	Error      string
	LatencyMs  int
}

// OK reports whether the upload succeeded.
func (r Result) OK() bool { return r.StatusCode == http.StatusOK }

// Config holds dispatcher configuration.
type Config struct {
	// Domain is the platform domain the probe URL template expands against.
	Domain string

	// Timeout is the HTTP timeout per upload attempt.
	Timeout time.Duration

	// Transport overrides the HTTP transport. Nil uses the default.
	Transport http.RoundTripper

	Metrics *observability.Metrics
	Tracer  *observability.Tracer
}

// Dispatcher sends payloads to an endpoint's ingest probe.
//
// Send never returns a Go error: all failure modes — non-200 status,
// transport errors, timeouts — resolve uniformly into the Result, so callers
// branch on one boolean outcome and surface the diagnostics if they care.
type Dispatcher struct {
	client *http.Client
	config Config
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg Config, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		client: &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		config: cfg,
		logger: logger,
	}
}

// URL returns the ingest probe run URL for an endpoint.
func (d *Dispatcher) URL(ep *endpoint.Endpoint) string {
	return ep.IngestProbe().URL(d.config.Domain)
}

// Send uploads a payload to the endpoint's ingest probe and returns the
// result. The probe key travels only in the request header; it is never
// logged or recorded on spans.
func (d *Dispatcher) Send(ctx context.Context, ep *endpoint.Endpoint, p *payload.Payload) Result {
	var span trace.Span
	if d.config.Tracer != nil {
		ctx, span = d.config.Tracer.StartUploadSpan(ctx, ep.ID.String(), p.File.Filename)
	}

	res := d.post(ctx, ep, p)

	if d.config.Metrics != nil {
		status := "failed"
		if res.OK() {
			status = "uploaded"
		}
		d.config.Metrics.RecordUpload(status, float64(res.LatencyMs)/1000.0)
	}
	if span != nil {
		d.config.Tracer.EndUploadSpan(span, res.StatusCode, res.LatencyMs, res.Error)
	}

	if res.OK() {
		d.logger.DebugContext(ctx, "upload completed",
			"endpoint_id", ep.ID, "filename", p.File.Filename, "latency_ms", res.LatencyMs)
	} else {
		d.logger.WarnContext(ctx, "upload failed",
			"endpoint_id", ep.ID, "filename", p.File.Filename,
			"status", res.StatusCode, "error", res.Error)
	}

	return res
}

func (d *Dispatcher) post(ctx context.Context, ep *endpoint.Endpoint, p *payload.Payload) Result {
	body, err := json.Marshal(p)
	if err != nil {
		return Result{Error: fmt.Sprintf("marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL(ep), bytes.NewReader(body))
	if err != nil {
		return Result{Error: fmt.Sprintf("create request: %v", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(probeKeyHeader, ep.ProbeKey)

	start := time.Now()
	resp, err := d.client.Do(req)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return Result{
			Error:     err.Error(),
			LatencyMs: int(latency),
		}
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if readErr != nil {
		return Result{
			StatusCode: resp.StatusCode,
			Error:      fmt.Sprintf("read response: %v", readErr),
			LatencyMs:  int(latency),
		}
	}

	res := Result{
		StatusCode: resp.StatusCode,
		Response:   string(respBody),
		LatencyMs:  int(latency),
	}
	if !res.OK() {
		res.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return res
}
