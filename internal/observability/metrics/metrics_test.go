package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPipelineRun(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordPipelineRun(map[string]int{"time": 2, "date": 1}, true, "meeting", 0.8, 0.7, 0.0001)
	m.RecordPipelineRun(map[string]int{"time": 1}, true, "", 0.8, 0.7, 0.0001)
	m.RecordPipelineRun(nil, false, "", 0.5, 0.5, 0.0001)

	if got := testutil.ToFloat64(m.CorrectionsApplied.WithLabelValues("time")); got != 3 {
		t.Errorf("expected 3 time corrections, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsExtracted.WithLabelValues("meeting")); got != 1 {
		t.Errorf("expected 1 meeting event, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsExtracted.WithLabelValues("none")); got != 1 {
		t.Errorf("expected 1 uncategorized event, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsNotFound); got != 1 {
		t.Errorf("expected 1 transcript without event, got %v", got)
	}
}

func TestRecordKafkaPublish(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordKafkaPublish("topic-a", "processed", nil, 0.01)
	m.RecordKafkaPublish("topic-a", "processed", errors.New("boom"), 0.01)

	if got := testutil.ToFloat64(m.KafkaPublishTotal.WithLabelValues("topic-a", "processed")); got != 2 {
		t.Errorf("expected 2 publishes, got %v", got)
	}
	if got := testutil.ToFloat64(m.KafkaPublishErrors.WithLabelValues("topic-a", "processed")); got != 1 {
		t.Errorf("expected 1 publish error, got %v", got)
	}
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	// registering twice on distinct registries must not panic
	NewMetrics(prometheus.NewRegistry())
	NewMetrics(prometheus.NewRegistry())
}
