// Package events publishes post-processing outcomes to Kafka and consumes
// final transcripts from the speech ingress service.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/wanghonghua666/AI-CALENDAR/internal/observability/metrics"
)

// Publisher publishes processed transcripts and confirmed events to
// separate Kafka topics.
type Publisher struct {
	writerProcessed *kafka.Writer
	writerConfirmed *kafka.Writer
	principal       string
	topicProcessed  string
	topicConfirmed  string
	enabled         bool
	metrics         *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers        []string
	TopicProcessed string
	TopicConfirmed string
	Principal      string
	Enabled        bool
	// Metrics defaults to metrics.DefaultMetrics.
	Metrics *metrics.Metrics
}

// New creates a new Kafka event publisher. Without brokers, or when
// disabled, the publisher only logs.
func New(cfg *Config) *Publisher {
	// Handle nil config case
	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: metrics.DefaultMetrics,
		}
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.DefaultMetrics
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:      cfg.Principal,
			topicProcessed: cfg.TopicProcessed,
			topicConfirmed: cfg.TopicConfirmed,
			enabled:        false,
			metrics:        m,
		}
	}

	transport := &kafka.Transport{
		Dial: newDialer().DialFunc,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicProcessed", cfg.TopicProcessed).
		Str("topicConfirmed", cfg.TopicConfirmed).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerProcessed: newWriter(cfg.Brokers, cfg.TopicProcessed, transport),
		writerConfirmed: newWriter(cfg.Brokers, cfg.TopicConfirmed, transport),
		principal:       cfg.Principal,
		topicProcessed:  cfg.TopicProcessed,
		topicConfirmed:  cfg.TopicConfirmed,
		enabled:         true,
		metrics:         m,
	}
}

// newDialer uses long timeouts for DNS resolution in Kubernetes.
func newDialer() *kafka.Dialer {
	return &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
}

func newWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
}

// PublishProcessed publishes a post-processing result. Keying by
// interaction keeps one conversation on one partition.
func (p *Publisher) PublishProcessed(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerProcessed, p.topicProcessed, "processed", key, event)
}

// PublishConfirmed publishes a confirmed calendar event.
func (p *Publisher) PublishConfirmed(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerConfirmed, p.topicConfirmed, "confirmed", key, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Enabled reports whether messages reach Kafka.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerProcessed != nil {
		if e := p.writerProcessed.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing processed writer")
			err = e
		}
	}
	if p.writerConfirmed != nil {
		if e := p.writerConfirmed.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing confirmed writer")
			err = e
		}
	}
	return err
}
