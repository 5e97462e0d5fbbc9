// Package kashfiles is a client for Kash Files instances, the companion
// file-storage service. Unlike probe ingest, Kash Files speaks plain
// multipart uploads and key-authenticated reads against a base URL.
package kashfiles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

// Instance describes one Kash Files deployment.
type Instance struct {
	// Name is the display label.
	Name string `json:"name"`

	// URL is the instance base URL, without a trailing slash.
	URL string `json:"url"`

	// Key is the API key ("kf_..." format). Sent as x-upload-key on
	// uploads and as a bearer token on reads; never logged.
	Key string `json:"key"`
}

// FileInfo describes one stored file in a search result.
type FileInfo struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Tags        string `json:"tags"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// Client talks to a single Kash Files instance.
type Client struct {
	instance Instance
	client   *http.Client
	logger   *slog.Logger
}

// NewClient creates a client for the given instance. A trailing slash on
// the instance URL is tolerated.
func NewClient(instance Instance, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	instance.URL = strings.TrimRight(instance.URL, "/")
	return &Client{
		instance: instance,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Instance returns the instance this client talks to.
func (c *Client) Instance() Instance { return c.instance }

// Upload stores a file with its tags and description. The response body is
// decoded into a generic map so instance-specific fields survive.
func (c *Client) Upload(ctx context.Context, filename string, data []byte, contentType, tags, description string) (map[string]any, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write multipart file: %w", err)
	}
	if err := w.WriteField("tags", tags); err != nil {
		return nil, fmt.Errorf("write tags field: %w", err)
	}
	if err := w.WriteField("description", description); err != nil {
		return nil, fmt.Errorf("write description field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.instance.URL+"/api/files/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("x-upload-key", c.instance.Key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload to %s: %w", c.instance.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "file upload rejected",
			"instance", c.instance.Name, "status", resp.StatusCode)
		return nil, fmt.Errorf("kashfiles: unexpected status %d", resp.StatusCode)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return out, nil
}

// Search returns files matching the tag filter and/or free-text query.
func (c *Client) Search(ctx context.Context, tags, query string) ([]FileInfo, error) {
	params := url.Values{}
	if tags != "" {
		params.Set("tags", tags)
	}
	if query != "" {
		params.Set("q", query)
	}

	u := c.instance.URL + "/api/search"
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}

	raw, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Files []FileInfo `json:"files"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return resp.Files, nil
}

// Get downloads a file's raw content by id.
func (c *Client) Get(ctx context.Context, fileID string) ([]byte, error) {
	return c.get(ctx, c.instance.URL+"/api/files/"+fileID)
}

// Health reports whether the instance answers its health check.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.instance.URL+"/api/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.instance.Key)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.instance.Key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", c.instance.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kashfiles: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
