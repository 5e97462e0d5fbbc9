package endpoint

import "strings"

// Input is the creation/update payload for endpoints.
type Input struct {
	// Name is the display label. Required.
	Name string `json:"name"`

	// Device identifies the physical device or install. May be empty.
	Device string `json:"device"`

	// ProbeKey is the secret credential for the ingest probe. Required.
	ProbeKey string `json:"probeKey"`

	// NodeName derives the base URL of the ingest probe. Required.
	NodeName string `json:"nodeName"`

	// ProbeID derives the path of the ingest probe. Required.
	ProbeID string `json:"probeId"`

	// KeepScreenshots enables archiving screenshot uploads locally.
	KeepScreenshots bool `json:"keepScreenshots"`

	// ScreenshotFolder is where archived screenshots go.
	ScreenshotFolder string `json:"screenshotFolder,omitempty"`

	// DigestProbe is the optional single-digest read probe.
	DigestProbe *Probe `json:"digestProbe,omitempty"`

	// ListProbe is the optional digest-listing read probe.
	ListProbe *Probe `json:"listProbe,omitempty"`

	// ConfigDigestID names the digest holding the agent config.
	ConfigDigestID string `json:"configDigestId,omitempty"`

	// ConfigDigestNode overrides the node for the config digest fetch.
	ConfigDigestNode string `json:"configDigestNode,omitempty"`
}

// Validate checks that all required fields are non-blank after trimming.
// An endpoint is never partially persisted: validation runs before any write.
func (in Input) Validate() error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", in.Name},
		{"nodeName", in.NodeName},
		{"probeKey", in.ProbeKey},
		{"probeId", in.ProbeID},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Message: "required"}
		}
	}
	return nil
}

// ValidationError indicates invalid endpoint input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "endpoint validation: " + e.Field + ": " + e.Message
}
