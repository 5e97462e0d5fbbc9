package digest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/kashstash/stash/digest"
	"github.com/kashstash/stash/endpoint"
)

type rewriteTransport struct {
	target *url.URL
	host   string
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.host = req.URL.Host
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func testProbe() endpoint.Probe {
	return endpoint.Probe{NodeName: "reader", ProbeID: "99", ProbeKey: "read-key"}
}

func newClient(t *testing.T, handler http.HandlerFunc) (*digest.Client, *rewriteTransport) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	target, _ := url.Parse(srv.URL)
	rt := &rewriteTransport{target: target}
	c := digest.NewClient(digest.Config{
		Domain:    "xyzpulseinfra.com",
		Timeout:   5 * time.Second,
		Transport: rt,
	}, nil, func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) })
	return c, rt
}

func TestFetchRequestShape(t *testing.T) {
	var gotKey string
	var gotBody map[string]any

	c, rt := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-PROBE-KEY")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"content":"hello"}`))
	})

	content, err := c.Fetch(context.Background(), testProbe(), "d-123")
	if err != nil {
		t.Fatal(err)
	}
	if content != "hello" {
		t.Fatalf("content = %q", content)
	}
	if rt.host != "probes-reader.xyzpulseinfra.com" {
		t.Fatalf("host = %q", rt.host)
	}
	if gotKey != "read-key" {
		t.Fatalf("X-PROBE-KEY = %q", gotKey)
	}
	if gotBody["method"] != "GET" || gotBody["endpoint"] != "/digests/d-123" || gotBody["digest_id"] != "d-123" {
		t.Fatalf("body = %v", gotBody)
	}
}

func TestFetchContentExtraction(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"output.content", `{"output":{"content":"from output"}}`, "from output"},
		{"output.data.content", `{"output":{"data":{"content":"nested"}}}`, "nested"},
		{"top-level content", `{"content":"flat"}`, "flat"},
		{"output.content wins over top-level", `{"content":"flat","output":{"content":"from output"}}`, "from output"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})
			got, err := c.Fetch(context.Background(), testProbe(), "d-1")
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("content = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFetchNoContent(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":{"data":{}}}`))
	})
	_, err := c.Fetch(context.Background(), testProbe(), "d-1")
	if !errors.Is(err, digest.ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestFetchNon200(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	if _, err := c.Fetch(context.Background(), testProbe(), "d-1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestListRequestShape(t *testing.T) {
	var gotBody map[string]any
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"feedentries":[]}`))
	})

	if _, err := c.List(context.Background(), testProbe(), "queue", 24*time.Hour); err != nil {
		t.Fatal(err)
	}

	if gotBody["method"] != "GET" || gotBody["endpoint"] != "/digests" {
		t.Fatalf("body = %v", gotBody)
	}
	params, ok := gotBody["params"].(map[string]any)
	if !ok {
		t.Fatalf("missing params: %v", gotBody)
	}
	if params["tags"] != "queue" {
		t.Fatalf("tags = %v", params["tags"])
	}
	// Clock is 2024-03-01T12:00:00Z; 24h lookback.
	if params["start_date"] != "2024-02-29T12:00:00" {
		t.Fatalf("start_date = %v", params["start_date"])
	}
	if params["per_page"] != float64(1000) {
		t.Fatalf("per_page = %v", params["per_page"])
	}
}

func TestListFoldsCollections(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"feedentries": [{"id": 1, "title": "a", "tags": "queue"}],
			"digests":     [{"id": "2", "title": "b"}],
			"output":      [{"id": 3, "title": "c"}]
		}`))
	})

	entries, err := c.List(context.Background(), testProbe(), "queue", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Title != "a" || entries[1].Title != "b" || entries[2].Title != "c" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].ID.String() != "1" || entries[1].ID.String() != "2" {
		t.Fatalf("ids = %v, %v", entries[0].ID, entries[1].ID)
	}
}

func TestListObjectOutputIgnored(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output": {"status": "ok"}}`))
	})
	entries, err := c.List(context.Background(), testProbe(), "queue", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries", len(entries))
	}
}
