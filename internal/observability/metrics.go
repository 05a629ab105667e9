package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	votesTotal            *prometheus.CounterVec
	evaluationsTotal      *prometheus.CounterVec
	galleryLatencySeconds prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the ranking
// and evaluation services.
func RegisterMetrics() {
	registerOnce.Do(func() {
		votesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "project_votes_total",
			Help: "Total number of votes recorded, labelled by star rating.",
		}, []string{"stars"})

		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "project_evaluations_total",
			Help: "Total number of evaluations created, labelled by type.",
		}, []string{"type"})

		galleryLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gallery_latency_seconds",
			Help:    "Latency distribution for public gallery listings.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		})

		prometheus.MustRegister(votesTotal, evaluationsTotal, galleryLatencySeconds)
	})
}

// Votes exposes the counter for recorded votes.
func Votes() *prometheus.CounterVec {
	RegisterMetrics()
	return votesTotal
}

// Evaluations exposes the counter for created evaluations.
func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// GalleryLatency exposes the latency histogram for gallery listings.
func GalleryLatency() prometheus.Histogram {
	RegisterMetrics()
	return galleryLatencySeconds
}
