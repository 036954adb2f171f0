// Package transcript runs transcripts through the post-processing pipeline
// and coordinates the proposal registry, the event publisher and the live
// feed.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wanghonghua666/AI-CALENDAR/internal/events"
	"github.com/wanghonghua666/AI-CALENDAR/internal/models"
	"github.com/wanghonghua666/AI-CALENDAR/internal/observability/metrics"
	"github.com/wanghonghua666/AI-CALENDAR/internal/postprocess"
	"github.com/wanghonghua666/AI-CALENDAR/internal/schema"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/proposal"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/stt"
)

// Sources label where a transcript came from.
const (
	SourceKafka = "kafka"
	SourceHTTP  = "http"
	SourceGRPC  = "grpc"
	SourceAudio = "audio"
)

// Errors returned to the API layers.
var (
	ErrTextTooLong     = errors.New("transcript too long")
	ErrAudioTooLarge   = errors.New("audio too large")
	ErrNoRecognizer    = errors.New("speech recognition not configured")
	ErrRecognizeFailed = errors.New("speech recognition failed")
)

// Limits defines safety guardrails for inbound payloads.
type Limits struct {
	MaxTextRunes  int   // Max transcript length in characters
	MaxAudioBytes int64 // Max recorded audio per request
}

// DefaultLimits returns sensible default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxTextRunes:  2000,
		MaxAudioBytes: 5 * 1024 * 1024, // 5MB (~160 seconds at 16kHz 16-bit mono)
	}
}

// Broadcaster fans messages out to live subscribers.
type Broadcaster interface {
	Broadcast(msg FeedMessage)
}

// FeedMessage is one live feed update.
type FeedMessage struct {
	Type string `json:"type"` // "processed", "confirmed", "rejected"
	Data any    `json:"data"`
}

// Request is a transcript to post-process.
type Request struct {
	InteractionID string
	TenantID      string
	SegmentID     string
	Text          string
	Confidence    float64
	// Reference anchors relative dates; zero means now.
	Reference time.Time
	Source    string
}

// Config wires the handler's collaborators. Recognizer and Feed are
// optional.
type Config struct {
	Processor  *postprocess.Processor
	Registry   *proposal.Registry
	Publisher  *events.Publisher
	Validator  *schema.Validator
	Recognizer stt.Recognizer
	Feed       Broadcaster
	Limits     Limits
	// Metrics defaults to metrics.DefaultMetrics.
	Metrics *metrics.Metrics
}

// Handler is safe for concurrent use.
type Handler struct {
	processor  *postprocess.Processor
	registry   *proposal.Registry
	publisher  *events.Publisher
	validator  *schema.Validator
	recognizer stt.Recognizer
	feed       Broadcaster
	limits     Limits
	metrics    *metrics.Metrics
}

// NewHandler creates a transcript handler.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		processor:  cfg.Processor,
		registry:   cfg.Registry,
		publisher:  cfg.Publisher,
		validator:  cfg.Validator,
		recognizer: cfg.Recognizer,
		feed:       cfg.Feed,
		limits:     cfg.Limits,
		metrics:    cfg.Metrics,
	}
	if h.validator == nil {
		h.validator = schema.New()
	}
	if h.metrics == nil {
		h.metrics = metrics.DefaultMetrics
	}
	return h
}

// Limits returns the payload limits the handler enforces.
func (h *Handler) Limits() Limits {
	return h.limits
}

// Process runs one transcript through the pipeline. An extracted event is
// registered as a pending proposal. The outcome is published and broadcast;
// a publish failure is logged and does not fail the call.
func (h *Handler) Process(ctx context.Context, req Request) (*models.TranscriptProcessed, error) {
	if req.Source == "" {
		req.Source = SourceHTTP
	}
	if h.limits.MaxTextRunes > 0 && utf8.RuneCountInString(req.Text) > h.limits.MaxTextRunes {
		h.metrics.RecordTranscriptRejected("too_long")
		return nil, fmt.Errorf("%w: more than %d characters", ErrTextTooLong, h.limits.MaxTextRunes)
	}
	if req.InteractionID == "" {
		req.InteractionID = uuid.NewString()
	}
	h.metrics.RecordTranscriptReceived(req.Source)

	start := time.Now()
	res := h.processor.Process(req.Text, req.Confidence, req.Reference)
	h.recordRun(req, res, time.Since(start))

	out := &models.TranscriptProcessed{
		EventType:     models.EventTypeTranscriptProcessed,
		InteractionID: req.InteractionID,
		TenantID:      req.TenantID,
		SegmentID:     req.SegmentID,
		Timestamp:     time.Now().UnixMilli(),
		Locale:        h.processor.Locale(),
		Result:        res,
	}
	if res.EventInfo != nil {
		p := h.registry.Create(req.InteractionID, req.TenantID, res.CorrectedText, *res.EventInfo)
		out.ProposalID = p.ID
	}

	log.Info().
		Str("interactionId", req.InteractionID).
		Str("segmentId", req.SegmentID).
		Str("source", req.Source).
		Int("corrections", len(res.Corrections)).
		Float64("confidence", res.Confidence).
		Str("proposalId", out.ProposalID).
		Msg("Transcript processed")

	if err := h.publisher.PublishProcessed(ctx, req.InteractionID, out); err != nil {
		log.Error().Err(err).Str("interactionId", req.InteractionID).Msg("Failed to publish processed transcript")
	}
	h.broadcast("processed", out)
	return out, nil
}

func (h *Handler) recordRun(req Request, res *postprocess.Result, latency time.Duration) {
	byType := make(map[string]int)
	for typ, n := range res.CorrectionsByType() {
		byType[string(typ)] = n
	}
	category := ""
	if res.EventInfo != nil {
		category = res.EventInfo.Category
	}
	h.metrics.RecordPipelineRun(byType, res.EventInfo != nil, category, req.Confidence, res.Confidence, latency.Seconds())
}

// HandleFinal processes a final transcript consumed from Kafka. The
// transcript's own timestamp anchors relative dates.
func (h *Handler) HandleFinal(ctx context.Context, ev *models.TranscriptFinal) error {
	if err := h.validator.Validate(ev); err != nil {
		h.metrics.RecordTranscriptRejected("invalid")
		return err
	}

	var ref time.Time
	if ev.Timestamp > 0 {
		ref = time.UnixMilli(ev.Timestamp)
	}
	_, err := h.Process(ctx, Request{
		InteractionID: ev.InteractionID,
		TenantID:      ev.TenantID,
		SegmentID:     ev.SegmentID,
		Text:          ev.Text,
		Confidence:    ev.Confidence,
		Reference:     ref,
		Source:        SourceKafka,
	})
	return err
}

// Recognize transcribes recorded audio and processes the transcript.
func (h *Handler) Recognize(ctx context.Context, interactionId, tenantId string, audio []byte) (*models.TranscriptProcessed, error) {
	if h.recognizer == nil {
		return nil, ErrNoRecognizer
	}
	if h.limits.MaxAudioBytes > 0 && int64(len(audio)) > h.limits.MaxAudioBytes {
		h.metrics.RecordTranscriptRejected("audio_too_large")
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrAudioTooLarge, len(audio), h.limits.MaxAudioBytes)
	}

	start := time.Now()
	t, err := h.recognizer.Recognize(ctx, audio)
	h.metrics.RecordSTT(h.recognizer.Name(), err, time.Since(start).Seconds())
	if err != nil {
		log.Error().
			Err(err).
			Str("provider", h.recognizer.Name()).
			Str("interactionId", interactionId).
			Int("audioBytes", len(audio)).
			Msg("Recognition failed")
		return nil, fmt.Errorf("%w: %w", ErrRecognizeFailed, err)
	}

	return h.Process(ctx, Request{
		InteractionID: interactionId,
		TenantID:      tenantId,
		Text:          t.Text,
		Confidence:    t.Confidence,
		Source:        SourceAudio,
	})
}

// Proposal returns a proposal by id.
func (h *Handler) Proposal(id string) (proposal.Proposal, error) {
	return h.registry.Get(id)
}

// Confirm accepts a proposal and hands the event to the calendar store by
// publishing it.
func (h *Handler) Confirm(ctx context.Context, id string) (proposal.Proposal, error) {
	p, err := h.registry.Confirm(id)
	if err != nil {
		return p, err
	}

	ev := models.EventConfirmed{
		EventType:     models.EventTypeEventConfirmed,
		ProposalID:    p.ID,
		InteractionID: p.InteractionID,
		TenantID:      p.TenantID,
		Timestamp:     p.ResolvedAt.UnixMilli(),
		Event:         p.Event,
	}
	if err := h.publisher.PublishConfirmed(ctx, p.InteractionID, ev); err != nil {
		log.Error().Err(err).Str("proposalId", p.ID).Msg("Failed to publish confirmed event")
	}
	h.broadcast("confirmed", p)
	return p, nil
}

// Reject discards a proposal.
func (h *Handler) Reject(ctx context.Context, id string) (proposal.Proposal, error) {
	p, err := h.registry.Reject(id)
	if err != nil {
		return p, err
	}
	h.broadcast("rejected", p)
	return p, nil
}

func (h *Handler) broadcast(kind string, data any) {
	if h.feed != nil {
		h.feed.Broadcast(FeedMessage{Type: kind, Data: data})
	}
}
