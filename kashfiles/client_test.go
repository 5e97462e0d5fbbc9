package kashfiles_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kashstash/stash/kashfiles"
)

func newClient(srvURL string) *kashfiles.Client {
	return kashfiles.NewClient(kashfiles.Instance{
		Name: "test",
		URL:  srvURL + "/", // trailing slash must be tolerated
		Key:  "kf_testkey",
	}, 5*time.Second, nil)
}

func TestUpload(t *testing.T) {
	var gotPath, gotKey, gotTags, gotDescription, gotFilename, gotContentType string
	var gotFile []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-upload-key")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart: %v", err)
			return
		}
		gotTags = r.FormValue("tags")
		gotDescription = r.FormValue("description")

		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			return
		}
		defer f.Close()
		gotFilename = hdr.Filename
		gotContentType = hdr.Header.Get("Content-Type")
		gotFile, _ = io.ReadAll(f)

		w.Write([]byte(`{"success": true, "id": "f-1"}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL)
	out, err := c.Upload(context.Background(), "notes.txt", []byte("hello"), "text/plain", "work,laptop", "a note")
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/api/files/upload" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "kf_testkey" {
		t.Fatalf("x-upload-key = %q", gotKey)
	}
	if gotFilename != "notes.txt" || gotContentType != "text/plain" {
		t.Fatalf("file part = %q %q", gotFilename, gotContentType)
	}
	if string(gotFile) != "hello" {
		t.Fatalf("file bytes = %q", gotFile)
	}
	if gotTags != "work,laptop" || gotDescription != "a note" {
		t.Fatalf("fields = %q %q", gotTags, gotDescription)
	}
	if out["success"] != true {
		t.Fatalf("response = %v", out)
	}
}

func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newClient(srv.URL)
	if _, err := c.Upload(context.Background(), "a.txt", []byte("x"), "text/plain", "", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer kf_testkey" {
			t.Errorf("auth = %q", got)
		}
		if r.URL.Query().Get("tags") != "work" || r.URL.Query().Get("q") != "notes" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"files":[{"id":"f-1","filename":"notes.txt","tags":"work"}]}`))
	}))
	defer srv.Close()

	files, err := newClient(srv.URL).Search(context.Background(), "work", "notes")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].ID != "f-1" || files[0].Filename != "notes.txt" {
		t.Fatalf("files = %+v", files)
	}
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/files/f-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte("raw bytes"))
	}))
	defer srv.Close()

	data, err := newClient(srv.URL).Get(context.Background(), "f-1")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "raw bytes" {
		t.Fatalf("data = %q", data)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if !newClient(srv.URL).Health(context.Background()) {
		t.Fatal("expected healthy")
	}

	srv.Close()
	if newClient(srv.URL).Health(context.Background()) {
		t.Fatal("expected unhealthy after close")
	}
}
