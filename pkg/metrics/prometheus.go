package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics for the extraction pipeline
type Metrics struct {
	EmailsProcessed       prometheus.Counter
	SegmentsExtracted     prometheus.Counter
	RecordsMerged         prometheus.Counter
	NormalizationFailures *prometheus.CounterVec
	BatchProcessingTime   prometheus.Histogram
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		EmailsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_processed_total",
			Help:      "The total number of processed emails",
		}),
		SegmentsExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_extracted_total",
			Help:      "The total number of raw flight segments extracted",
		}),
		RecordsMerged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_merged_total",
			Help:      "The total number of flight records in merged output",
		}),
		NormalizationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalization_failures_total",
			Help:      "The total number of segments dropped during normalization",
		}, []string{"reason"}),
		BatchProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_time_seconds",
			Help:      "Time taken to process one email batch",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
