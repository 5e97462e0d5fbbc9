// Package payload constructs the canonical upload document sent to a probe.
package payload

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/kashstash/stash/tags"
)

// Kind selects the filename prefix, extension and MIME type of an upload.
type Kind string

// Upload kinds. The prefix shows up in the synthesized filename and doubles
// as a server-side classification tag.
const (
	KindNote       Kind = "note"
	KindImage      Kind = "image"
	KindScreenshot Kind = "screenshot"
)

// Ext returns the filename extension for this kind.
func (k Kind) Ext() string {
	switch k {
	case KindImage:
		return ".jpg"
	case KindScreenshot:
		return ".png"
	default:
		return ".txt"
	}
}

// ContentType returns the MIME type matching this kind's encoding.
func (k Kind) ContentType() string {
	switch k {
	case KindImage:
		return "image/jpeg"
	case KindScreenshot:
		return "image/png"
	default:
		return "text/plain"
	}
}

// File is the encoded file member of a Payload.
type File struct {
	Content     string `json:"content"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// Payload is the upload request body. Field names are a fixed wire contract
// with the remote probe service. Payloads are ephemeral: built per upload,
// never persisted.
type Payload struct {
	File          File   `json:"file"`
	Tags          string `json:"tags"`
	Device        string `json:"device"`
	ContextPrompt string `json:"context_prompt,omitempty"`
}

// Builder constructs payloads. The clock is injectable so tests get stable
// filenames; filenames use second granularity, matching the platform's
// existing uploads. Two uploads within the same second from the same device
// therefore share a filename (a known limitation, kept as-is).
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a Builder. A nil clock means time.Now.
func NewBuilder(clock func() time.Time) *Builder {
	if clock == nil {
		clock = time.Now
	}
	return &Builder{now: clock}
}

// Text builds a text/plain payload from a note. The text is UTF-8 encoded
// and base64 wrapped; tags merge the user tags with the device tag. Empty
// text is the caller's problem: the builder does not validate emptiness.
func (b *Builder) Text(text, userTags, device string) *Payload {
	return &Payload{
		File: File{
			Content:     base64.StdEncoding.EncodeToString([]byte(text)),
			Filename:    b.filename(KindNote),
			ContentType: KindNote.ContentType(),
		},
		Tags:   tags.Merge(userTags, device),
		Device: device,
	}
}

// Image builds an image payload from raw encoded bytes. The bytes must
// already be in the format the kind declares (JPEG for KindImage, PNG for
// KindScreenshot); the builder encodes them as given. The trimmed context
// becomes the context prompt.
func (b *Builder) Image(data []byte, kind Kind, userTags, context, device string) *Payload {
	return &Payload{
		File: File{
			Content:     base64.StdEncoding.EncodeToString(data),
			Filename:    b.filename(kind),
			ContentType: kind.ContentType(),
		},
		Tags:          tags.Merge(userTags, device),
		Device:        device,
		ContextPrompt: strings.TrimSpace(context),
	}
}

// WithFilenameTags returns the payload with filename-derived tags folded in:
// the filename stem and the kind tag, de-duplicated against existing tags.
func (p *Payload) WithFilenameTags() *Payload {
	p.Tags = tags.MergeAll(p.Tags, tags.ForFilename(p.File.Filename))
	return p
}

func (b *Builder) filename(kind Kind) string {
	return fmt.Sprintf("%s_%d%s", kind, b.now().Unix(), kind.Ext())
}
