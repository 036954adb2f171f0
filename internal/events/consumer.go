package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/wanghonghua666/AI-CALENDAR/internal/models"
	"github.com/wanghonghua666/AI-CALENDAR/internal/observability/metrics"
)

// TranscriptHandler processes one final transcript. A returned error is
// logged; the message is committed either way so a poison message cannot
// stall the partition.
type TranscriptHandler func(ctx context.Context, event *models.TranscriptFinal) error

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topic   string
	// Metrics defaults to metrics.DefaultMetrics.
	Metrics *metrics.Metrics
}

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads final transcripts from Kafka in a consumer group.
type Consumer struct {
	reader  messageReader
	topic   string
	handler TranscriptHandler
	metrics *metrics.Metrics
	backoff time.Duration
}

// NewConsumer creates a consumer group reader for cfg.Topic.
func NewConsumer(cfg ConsumerConfig, handler TranscriptHandler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		Dialer:   newDialer(),
	})

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("groupId", cfg.GroupID).
		Str("topic", cfg.Topic).
		Msg("Kafka consumer initialized")

	return newConsumer(reader, cfg.Topic, handler, cfg.Metrics)
}

func newConsumer(reader messageReader, topic string, handler TranscriptHandler, m *metrics.Metrics) *Consumer {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Consumer{
		reader:  reader,
		topic:   topic,
		handler: handler,
		metrics: m,
		backoff: time.Second,
	}
}

// Run consumes until ctx is cancelled. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
	log.Info().Str("topic", c.topic).Msg("Consuming final transcripts")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			log.Error().Err(err).Str("topic", c.topic).Msg("Kafka read error")
			c.metrics.RecordKafkaConsumeError(c.topic, "read")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}

		c.metrics.RecordKafkaConsume(c.topic)
		c.dispatch(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("topic", c.topic).Int64("offset", msg.Offset).Msg("Failed to commit offset")
			c.metrics.RecordKafkaConsumeError(c.topic, "commit")
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg kafka.Message) {
	var event models.TranscriptFinal
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Warn().
			Err(err).
			Str("topic", c.topic).
			Int64("offset", msg.Offset).
			Msg("Dropping undecodable transcript")
		c.metrics.RecordKafkaConsumeError(c.topic, "decode")
		return
	}

	if err := c.handler(ctx, &event); err != nil {
		log.Error().
			Err(err).
			Str("interactionId", event.InteractionID).
			Str("segmentId", event.SegmentID).
			Msg("Transcript handler failed")
		c.metrics.RecordKafkaConsumeError(c.topic, "handler")
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
