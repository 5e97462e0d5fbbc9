// Package digest reads back previously ingested content through the
// platform's read probes. Reads are tunneled: the client POSTs a request
// descriptor to a probe's run URL and the probe performs the GET upstream.
package digest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kashstash/stash/endpoint"
)

// ErrNoContent is returned when a fetched digest carries no extractable
// content in any of the known response shapes.
var ErrNoContent = errors.New("digest: no content in response")

// Entry is one digest in a listing. The backend is loose about the entry
// shape, so only the fields the client acts on are decoded.
type Entry struct {
	ID      json.Number `json:"id"`
	Title   string      `json:"title"`
	Tags    string      `json:"tags"`
	Content string      `json:"content"`
	Created string      `json:"created_at"`
}

// listTimeFormat is the backend's expected start_date format (UTC, no zone).
const listTimeFormat = "2006-01-02T15:04:05"

// Config holds digest client configuration.
type Config struct {
	// Domain is the platform domain the probe URL template expands against.
	Domain string

	// Timeout is the HTTP timeout per read.
	Timeout time.Duration

	// Transport overrides the HTTP transport. Nil uses the default.
	Transport http.RoundTripper
}

// Client fetches and lists digests through read probes.
type Client struct {
	client *http.Client
	config Config
	logger *slog.Logger
	now    func() time.Time
}

// NewClient creates a digest client. A nil clock uses time.Now.
func NewClient(cfg Config, logger *slog.Logger, clock func() time.Time) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Client{
		client: &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		config: cfg,
		logger: logger,
		now:    clock,
	}
}

// Fetch retrieves the content of a single digest by id.
//
// The content is extracted from whichever of the known response shapes the
// backend used: output.content, output.data.content, or a top-level content
// field. ErrNoContent is returned when none carry a non-empty value.
func (c *Client) Fetch(ctx context.Context, probe endpoint.Probe, digestID string) (string, error) {
	body := map[string]any{
		"method":    http.MethodGet,
		"endpoint":  "/digests/" + digestID,
		"digest_id": digestID,
	}

	raw, err := c.run(ctx, probe, body)
	if err != nil {
		return "", err
	}

	var resp struct {
		Content string `json:"content"`
		Output  struct {
			Content string `json:"content"`
			Data    struct {
				Content string `json:"content"`
			} `json:"data"`
		} `json:"output"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode digest response: %w", err)
	}

	for _, content := range []string{resp.Output.Content, resp.Output.Data.Content, resp.Content} {
		if content != "" {
			return content, nil
		}
	}
	return "", ErrNoContent
}

// List returns digests tagged with tag, created within the lookback window
// ending now. Entries are folded from the feedentries, digests and output
// collections of the response, whichever the backend populated.
func (c *Client) List(ctx context.Context, probe endpoint.Probe, tag string, lookback time.Duration) ([]Entry, error) {
	start := c.now().UTC().Add(-lookback)
	body := map[string]any{
		"method":   http.MethodGet,
		"endpoint": "/digests",
		"params": map[string]any{
			"tags":       tag,
			"start_date": start.Format(listTimeFormat),
			"per_page":   1000,
		},
	}

	raw, err := c.run(ctx, probe, body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		FeedEntries []Entry         `json:"feedentries"`
		Digests     []Entry         `json:"digests"`
		Output      json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode digest listing: %w", err)
	}

	entries := append(resp.FeedEntries, resp.Digests...)
	if len(resp.Output) > 0 {
		var fromOutput []Entry
		if err := json.Unmarshal(resp.Output, &fromOutput); err == nil {
			entries = append(entries, fromOutput...)
		}
	}
	return entries, nil
}

// run POSTs a read descriptor to the probe's run URL and returns the raw
// response body. The probe key travels only in the request header.
func (c *Client) run(ctx context.Context, probe endpoint.Probe, body map[string]any) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode probe request: %w", err)
	}

	url := probe.URL(c.config.Domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("create probe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-PROBE-KEY", probe.ProbeKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read probe response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "digest read failed",
			"node", probe.NodeName, "probe_id", probe.ProbeID, "status", resp.StatusCode)
		return nil, fmt.Errorf("digest: unexpected status %d", resp.StatusCode)
	}
	return raw, nil
}
