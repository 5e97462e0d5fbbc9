package payload_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/kashstash/stash/payload"
)

func fixedClock() func() time.Time {
	at := time.Unix(1700000000, 0).UTC()
	return func() time.Time { return at }
}

func TestBuildText(t *testing.T) {
	b := payload.NewBuilder(fixedClock())

	p := b.Text("hello world", "work", "laptop")

	if p.File.Filename != "note_1700000000.txt" {
		t.Fatalf("filename = %q", p.File.Filename)
	}
	if p.File.ContentType != "text/plain" {
		t.Fatalf("content type = %q", p.File.ContentType)
	}
	decoded, err := base64.StdEncoding.DecodeString(p.File.Content)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "hello world" {
		t.Fatalf("decoded content = %q", decoded)
	}
	if p.Tags != "work,laptop" {
		t.Fatalf("tags = %q", p.Tags)
	}
	if p.Device != "laptop" {
		t.Fatalf("device = %q", p.Device)
	}
	if p.ContextPrompt != "" {
		t.Fatalf("unexpected context prompt %q", p.ContextPrompt)
	}
}

func TestBuildImageKinds(t *testing.T) {
	b := payload.NewBuilder(fixedClock())
	data := []byte{0x89, 0x50, 0x4e, 0x47}

	img := b.Image(data, payload.KindImage, "", "  look at this  ", "phone")
	if img.File.Filename != "image_1700000000.jpg" {
		t.Fatalf("filename = %q", img.File.Filename)
	}
	if img.File.ContentType != "image/jpeg" {
		t.Fatalf("content type = %q", img.File.ContentType)
	}
	if img.ContextPrompt != "look at this" {
		t.Fatalf("context prompt = %q", img.ContextPrompt)
	}

	shot := b.Image(data, payload.KindScreenshot, "bug", "", "laptop")
	if shot.File.Filename != "screenshot_1700000000.png" {
		t.Fatalf("filename = %q", shot.File.Filename)
	}
	if shot.File.ContentType != "image/png" {
		t.Fatalf("content type = %q", shot.File.ContentType)
	}
	if shot.Tags != "bug,laptop" {
		t.Fatalf("tags = %q", shot.Tags)
	}

	decoded, _ := base64.StdEncoding.DecodeString(shot.File.Content)
	if len(decoded) != len(data) || decoded[0] != 0x89 {
		t.Fatalf("image bytes mangled: %v", decoded)
	}
}

func TestWireShape(t *testing.T) {
	b := payload.NewBuilder(fixedClock())
	p := b.Image([]byte("img"), payload.KindScreenshot, "work", "ctx", "laptop")

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	file, ok := got["file"].(map[string]any)
	if !ok {
		t.Fatalf("missing file object in %s", raw)
	}
	for _, key := range []string{"content", "filename", "content_type"} {
		if _, ok := file[key]; !ok {
			t.Fatalf("file object missing %q: %s", key, raw)
		}
	}
	for _, key := range []string{"tags", "device", "context_prompt"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("payload missing %q: %s", key, raw)
		}
	}
}

func TestContextPromptOmittedWhenEmpty(t *testing.T) {
	b := payload.NewBuilder(fixedClock())
	raw, err := json.Marshal(b.Text("note", "", "laptop"))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got["context_prompt"]; ok {
		t.Fatalf("context_prompt should be omitted: %s", raw)
	}
}

func TestWithFilenameTags(t *testing.T) {
	b := payload.NewBuilder(fixedClock())
	p := b.Text("note", "work", "laptop").WithFilenameTags()

	if p.Tags != "work,laptop,note_1700000000,note" {
		t.Fatalf("tags = %q", p.Tags)
	}

	// Folding twice must not duplicate.
	p.WithFilenameTags()
	if p.Tags != "work,laptop,note_1700000000,note" {
		t.Fatalf("tags after refold = %q", p.Tags)
	}
}
