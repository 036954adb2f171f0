package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"

	"github.com/wanghonghua666/AI-CALENDAR/internal/models"
	"github.com/wanghonghua666/AI-CALENDAR/internal/observability/metrics"
)

type fakeReader struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func newFakeReader(values ...string) *fakeReader {
	r := &fakeReader{msgs: make(chan kafka.Message, len(values))}
	for i, v := range values {
		r.msgs <- kafka.Message{Offset: int64(i), Value: []byte(v)}
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func TestConsumer_Run(t *testing.T) {
	reader := newFakeReader(
		`{"eventType":"interaction.transcript.final","interactionId":"int-1","text":"明天下午3点开会","confidence":0.8}`,
		`not json`,
		`{"eventType":"interaction.transcript.final","interactionId":"int-2","text":"fail","confidence":0.8}`,
	)
	m := metrics.NewMetrics(prometheus.NewRegistry())

	var mu sync.Mutex
	var seen []string
	handler := func(ctx context.Context, e *models.TranscriptFinal) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.InteractionID)
		if e.Text == "fail" {
			return errors.New("boom")
		}
		return nil
	}

	c := newConsumer(reader, "transcripts", handler, m)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for reader.committedCount() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected 3 commits, got %d", reader.committedCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Errorf("expected nil on cancellation, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "int-1" || seen[1] != "int-2" {
		t.Errorf("expected handler calls for int-1 and int-2, got %v", seen)
	}
	if got := testutil.ToFloat64(m.KafkaConsumeTotal.WithLabelValues("transcripts")); got != 3 {
		t.Errorf("expected 3 consumed messages, got %v", got)
	}
	if got := testutil.ToFloat64(m.KafkaConsumeErrors.WithLabelValues("transcripts", "decode")); got != 1 {
		t.Errorf("expected 1 decode error, got %v", got)
	}
	if got := testutil.ToFloat64(m.KafkaConsumeErrors.WithLabelValues("transcripts", "handler")); got != 1 {
		t.Errorf("expected 1 handler error, got %v", got)
	}
}

func TestConsumer_Close(t *testing.T) {
	reader := newFakeReader()
	c := newConsumer(reader, "transcripts", nil, metrics.NewMetrics(prometheus.NewRegistry()))

	if err := c.Close(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !reader.closed {
		t.Error("expected reader to be closed")
	}
}
