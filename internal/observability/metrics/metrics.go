// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "calendar_speech"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Pipeline metrics
	TranscriptsReceived *prometheus.CounterVec
	TranscriptsRejected *prometheus.CounterVec
	CorrectionsApplied  *prometheus.CounterVec
	EventsExtracted     *prometheus.CounterVec
	EventsNotFound      prometheus.Counter
	ConfidenceOriginal  prometheus.Histogram
	ConfidenceFinal     prometheus.Histogram
	PipelineLatency     prometheus.Histogram

	// Proposal metrics
	ProposalTransitions *prometheus.CounterVec
	ProposalsPending    prometheus.Gauge

	// Kafka metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
	KafkaConsumeTotal   *prometheus.CounterVec
	KafkaConsumeErrors  *prometheus.CounterVec

	// STT metrics
	STTLatency *prometheus.HistogramVec
	STTErrors  *prometheus.CounterVec

	// API metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	FeedSubscribers prometheus.Gauge
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	confidenceBuckets := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

	return &Metrics{
		// Pipeline metrics
		TranscriptsReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_received_total",
			Help:      "Total number of transcripts received for post-processing",
		}, []string{"source"}),
		TranscriptsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_rejected_total",
			Help:      "Total number of transcripts rejected before processing",
		}, []string{"reason"}),
		CorrectionsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrections_applied_total",
			Help:      "Total number of corrections applied, by correction type",
		}, []string{"type"}),
		EventsExtracted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_extracted_total",
			Help:      "Total number of event proposals extracted, by category",
		}, []string{"category"}),
		EventsNotFound: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_not_found_total",
			Help:      "Total number of transcripts without temporal signal",
		}),
		ConfidenceOriginal: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confidence_original",
			Help:      "Recognizer confidence of processed transcripts",
			Buckets:   confidenceBuckets,
		}),
		ConfidenceFinal: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confidence_final",
			Help:      "Recalculated confidence of processed transcripts",
			Buckets:   confidenceBuckets,
		}),
		PipelineLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_latency_seconds",
			Help:      "Post-processing pipeline latency in seconds",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}),

		// Proposal metrics
		ProposalTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposal_transitions_total",
			Help:      "Total number of proposal state transitions, by target state",
		}, []string{"state"}),
		ProposalsPending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "proposals_pending",
			Help:      "Number of proposals awaiting confirmation",
		}),

		// Kafka metrics
		KafkaPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
		KafkaConsumeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_consume_total",
			Help:      "Total number of Kafka messages consumed",
		}, []string{"topic"}),
		KafkaConsumeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_consume_errors_total",
			Help:      "Total number of Kafka read or decode errors",
		}, []string{"topic", "error_type"}),

		// STT metrics
		STTLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stt_latency_seconds",
			Help:      "Speech-to-text recognition latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"provider"}),
		STTErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stt_errors_total",
			Help:      "Total number of STT errors",
		}, []string{"provider", "error_type"}),

		// API metrics
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of API requests",
		}, []string{"transport", "method", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"transport", "method"}),
		FeedSubscribers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_subscribers",
			Help:      "Number of connected live feed subscribers",
		}),
	}
}

// RecordTranscriptReceived records a transcript entering the pipeline.
func (m *Metrics) RecordTranscriptReceived(source string) {
	m.TranscriptsReceived.WithLabelValues(source).Inc()
}

// RecordTranscriptRejected records a transcript dropped before processing.
func (m *Metrics) RecordTranscriptRejected(reason string) {
	m.TranscriptsRejected.WithLabelValues(reason).Inc()
}

// RecordPipelineRun records the outcome of one pipeline run. category is
// empty when no event was extracted.
func (m *Metrics) RecordPipelineRun(corrections map[string]int, extracted bool, category string, original, final, latencySeconds float64) {
	for typ, n := range corrections {
		m.CorrectionsApplied.WithLabelValues(typ).Add(float64(n))
	}
	if extracted {
		if category == "" {
			category = "none"
		}
		m.EventsExtracted.WithLabelValues(category).Inc()
	} else {
		m.EventsNotFound.Inc()
	}
	m.ConfidenceOriginal.Observe(original)
	m.ConfidenceFinal.Observe(final)
	m.PipelineLatency.Observe(latencySeconds)
}

// RecordProposalTransition records a proposal moving to state.
func (m *Metrics) RecordProposalTransition(state string) {
	m.ProposalTransitions.WithLabelValues(state).Inc()
}

// SetProposalsPending sets the number of pending proposals.
func (m *Metrics) SetProposalsPending(n int) {
	m.ProposalsPending.Set(float64(n))
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordKafkaConsume records a consumed message.
func (m *Metrics) RecordKafkaConsume(topic string) {
	m.KafkaConsumeTotal.WithLabelValues(topic).Inc()
}

// RecordKafkaConsumeError records a read or decode failure.
func (m *Metrics) RecordKafkaConsumeError(topic, errorType string) {
	m.KafkaConsumeErrors.WithLabelValues(topic, errorType).Inc()
}

// RecordSTT records a recognition call.
func (m *Metrics) RecordSTT(provider string, err error, latencySeconds float64) {
	m.STTLatency.WithLabelValues(provider).Observe(latencySeconds)
	if err != nil {
		m.STTErrors.WithLabelValues(provider, "recognize").Inc()
	}
}

// RecordRequest records an API call.
func (m *Metrics) RecordRequest(transport, method, code string, durationSeconds float64) {
	m.RequestsTotal.WithLabelValues(transport, method, code).Inc()
	m.RequestDuration.WithLabelValues(transport, method).Observe(durationSeconds)
}

// RecordFeedSubscriber adjusts the live feed subscriber gauge.
func (m *Metrics) RecordFeedSubscriber(connected bool) {
	if connected {
		m.FeedSubscribers.Inc()
	} else {
		m.FeedSubscribers.Dec()
	}
}
