package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	RecognitionsTotal   *prometheus.CounterVec
	RecognitionDuration prometheus.Histogram
	HistoryQueries      prometheus.Counter
	RecordsSaved        prometheus.Counter
	SaveFailures        prometheus.Counter
}

// New creates and registers the collectors on the given registry.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecognitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lpr_recognitions_total",
			Help: "Recognition backend calls by source and outcome",
		}, []string{"source", "outcome"}),
		RecognitionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lpr_recognition_duration_seconds",
			Help:    "End-to-end recognition backend call duration",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		HistoryQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lpr_history_queries_total",
			Help: "History page queries served",
		}),
		RecordsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lpr_records_saved_total",
			Help: "Plate records persisted",
		}),
		SaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lpr_record_save_failures_total",
			Help: "Failed persistence attempts after a successful recognition",
		}),
	}

	registry.MustRegister(
		m.RecognitionsTotal,
		m.RecognitionDuration,
		m.HistoryQueries,
		m.RecordsSaved,
		m.SaveFailures,
	)

	return m
}
