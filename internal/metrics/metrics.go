// Package metrics provides Prometheus metrics for the chat pipeline and its stores.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors of the service.
type Metrics struct {
	// Pipeline
	ChatRequestsTotal      *prometheus.CounterVec
	CrisisDetectionsTotal  prometheus.Counter
	GenerationFailures     prometheus.Counter
	ClassificationFallback prometheus.Counter
	PipelineDuration       prometheus.Histogram

	// Retrieval
	RetrievalFailuresTotal *prometheus.CounterVec
	RetrievedPassages      prometheus.Histogram

	// Sessions and ingestion
	ActiveSessions      prometheus.Gauge
	IngestedChunksTotal *prometheus.CounterVec
	IngestFailuresTotal *prometheus.CounterVec
}

// New registers every collector on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ChatRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mindcare_chat_requests_total",
				Help: "Chat messages processed, by resolved intent",
			},
			[]string{"intent"},
		),
		CrisisDetectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mindcare_crisis_detections_total",
			Help: "Messages answered with the crisis response",
		}),
		GenerationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "mindcare_generation_failures_total",
			Help: "Generation calls that failed and produced the fallback reply",
		}),
		ClassificationFallback: factory.NewCounter(prometheus.CounterOpts{
			Name: "mindcare_classification_fallbacks_total",
			Help: "Delegated classifications that fell back to keywords",
		}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mindcare_pipeline_duration_seconds",
			Help:    "End-to-end duration of one processed message",
			Buckets: prometheus.DefBuckets,
		}),
		RetrievalFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mindcare_retrieval_failures_total",
				Help: "Collection queries that failed and were skipped",
			},
			[]string{"collection"},
		),
		RetrievedPassages: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mindcare_retrieved_passages",
			Help:    "Passages returned by one merged retrieval",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mindcare_active_sessions",
			Help: "Sessions currently held by the session store",
		}),
		IngestedChunksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mindcare_ingested_chunks_total",
				Help: "Chunks embedded and stored, by collection",
			},
			[]string{"collection"},
		),
		IngestFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mindcare_ingest_failures_total",
				Help: "Chunk batches that could not be stored, by collection",
			},
			[]string{"collection"},
		),
	}
}

// NewNop returns collectors registered nowhere.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
