// Package observability provides metric and tracing instruments for uploads.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for upload activity.
type Metrics struct {
	UploadsTotal    *prometheus.CounterVec
	UploadLatency   prometheus.Histogram
	ShareItemsTotal *prometheus.CounterVec
	ShareBatches    prometheus.Counter
}

// NewMetrics creates and registers the instruments on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stash_uploads_total",
			Help: "Upload attempts by outcome.",
		}, []string{"status"}),
		UploadLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "stash_upload_latency_seconds",
			Help: "Upload round-trip latency.",
		}),
		ShareItemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stash_share_items_total",
			Help: "Shared attachments by terminal state.",
		}, []string{"state"}),
		ShareBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stash_share_batches_total",
			Help: "Share fan-out invocations.",
		}),
	}
	reg.MustRegister(m.UploadsTotal, m.UploadLatency, m.ShareItemsTotal, m.ShareBatches)
	return m
}

// RecordUpload records one upload attempt with its outcome and latency.
func (m *Metrics) RecordUpload(status string, latencySeconds float64) {
	m.UploadsTotal.WithLabelValues(status).Inc()
	m.UploadLatency.Observe(latencySeconds)
}

// RecordShareItem records the terminal state of one shared attachment
// ("uploaded", "failed", "dropped", "ignored").
func (m *Metrics) RecordShareItem(state string) {
	m.ShareItemsTotal.WithLabelValues(state).Inc()
}
