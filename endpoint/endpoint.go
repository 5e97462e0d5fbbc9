package endpoint

import (
	"github.com/kashstash/stash/id"
	"github.com/kashstash/stash/internal/entity"
)

// Endpoint represents one named remote destination content can be uploaded to.
type Endpoint struct {
	entity.Entity

	// ID is the unique TypeID for this endpoint. Immutable once created.
	ID id.ID `json:"id"`

	// Name is the display label.
	Name string `json:"name"`

	// Device identifies the physical device or install. It is merged into
	// the tags of every upload sent through this endpoint. May be empty.
	Device string `json:"device"`

	// ProbeKey is the secret credential sent as the X-PROBE-KEY header.
	// It is persisted in the configuration document but must never be logged.
	ProbeKey string `json:"probeKey"`

	// NodeName derives the base URL of the ingest probe.
	NodeName string `json:"nodeName"`

	// ProbeID derives the path of the ingest probe.
	ProbeID string `json:"probeId"`

	// KeepScreenshots enables archiving screenshot uploads locally.
	KeepScreenshots bool `json:"keepScreenshots"`

	// ScreenshotFolder is where archived screenshots are written when
	// KeepScreenshots is set.
	ScreenshotFolder string `json:"screenshotFolder,omitempty"`

	// DigestProbe is the optional read probe for fetching a single digest.
	DigestProbe *Probe `json:"digestProbe,omitempty"`

	// ListProbe is the optional read probe for listing digests.
	ListProbe *Probe `json:"listProbe,omitempty"`

	// ConfigDigestID names the digest holding this device's agent config.
	ConfigDigestID string `json:"configDigestId,omitempty"`

	// ConfigDigestNode overrides the node for the config digest fetch.
	// Empty means the ingest NodeName.
	ConfigDigestNode string `json:"configDigestNode,omitempty"`
}

// Probe addresses one remote probe: a node, a probe path and its key.
type Probe struct {
	NodeName string `json:"nodeName,omitempty"`
	ProbeID  string `json:"probeId,omitempty"`
	ProbeKey string `json:"probeKey,omitempty"`
}

// URL returns the run URL for this probe on the given platform domain.
// The template is a fixed external contract:
//
//	https://probes-<nodeName>.<domain>/api/probes/<probeId>/run
func (p Probe) URL(domain string) string {
	return "https://probes-" + p.NodeName + "." + domain + "/api/probes/" + p.ProbeID + "/run"
}

// IngestProbe returns the endpoint's primary upload probe.
func (e *Endpoint) IngestProbe() Probe {
	return Probe{NodeName: e.NodeName, ProbeID: e.ProbeID, ProbeKey: e.ProbeKey}
}

// DigestFetchProbe returns the single-digest read probe, if configured.
// A missing node name falls back to the ingest node.
func (e *Endpoint) DigestFetchProbe() (Probe, bool) {
	return e.optionalProbe(e.DigestProbe)
}

// ListDigestsProbe returns the digest-listing read probe, if configured.
// A missing node name falls back to the ingest node.
func (e *Endpoint) ListDigestsProbe() (Probe, bool) {
	return e.optionalProbe(e.ListProbe)
}

func (e *Endpoint) optionalProbe(p *Probe) (Probe, bool) {
	if p == nil || p.ProbeID == "" || p.ProbeKey == "" {
		return Probe{}, false
	}
	out := *p
	if out.NodeName == "" {
		out.NodeName = e.NodeName
	}
	return out, true
}
