// Package app assembles the service components from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wanghonghua666/AI-CALENDAR/internal/config"
	"github.com/wanghonghua666/AI-CALENDAR/internal/events"
	"github.com/wanghonghua666/AI-CALENDAR/internal/feed"
	"github.com/wanghonghua666/AI-CALENDAR/internal/observability/logging"
	"github.com/wanghonghua666/AI-CALENDAR/internal/observability/metrics"
	"github.com/wanghonghua666/AI-CALENDAR/internal/postprocess"
	"github.com/wanghonghua666/AI-CALENDAR/internal/schema"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/proposal"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/stt"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/stt/google"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/stt/mock"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/transcript"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config
	Metrics     *metrics.Metrics

	Processor   *postprocess.Processor
	Proposals   *proposal.Registry
	Publisher   *events.Publisher
	Recognizer  stt.Recognizer
	Feed        *feed.Hub
	Transcripts *transcript.Handler
}

// Option adjusts an Application before its components are built.
type Option func(*options)

type options struct {
	metrics    *metrics.Metrics
	recognizer stt.Recognizer
	clock      func() time.Time
}

// WithMetrics registers metrics somewhere other than the default registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRecognizer bypasses the configured STT provider.
func WithRecognizer(r stt.Recognizer) Option {
	return func(o *options) { o.recognizer = r }
}

// WithClock sets the pipeline and proposal clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// New constructs a new Application from the provided configuration.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	o := options{metrics: metrics.DefaultMetrics, clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	a := &Application{
		Cfg:     cfg,
		Metrics: o.metrics,
	}
	a.setupLogger()

	appLogger := a.Logger.With().
		Str("method", "New").
		Logger()

	processor, err := newProcessor(cfg.PostProcess, o.clock)
	if err != nil {
		return nil, err
	}
	a.Processor = processor

	a.Recognizer = o.recognizer
	if a.Recognizer == nil {
		if a.Recognizer, err = newRecognizer(ctx, cfg.STT); err != nil {
			return nil, err
		}
	}

	a.Proposals = proposal.NewRegistry(proposal.Config{
		TTL:        cfg.Proposals.TTL,
		MaxPending: cfg.Proposals.MaxPending,
		Metrics:    o.metrics,
		Now:        o.clock,
	})
	a.Publisher = events.New(&events.Config{
		Enabled:        cfg.Kafka.Enabled,
		Brokers:        cfg.Kafka.Brokers,
		TopicProcessed: cfg.Kafka.TopicProcessed,
		TopicConfirmed: cfg.Kafka.TopicConfirmed,
		Principal:      cfg.Kafka.Principal,
		Metrics:        o.metrics,
	})
	a.Feed = feed.NewHub(o.metrics)
	a.Transcripts = transcript.NewHandler(transcript.Config{
		Processor:  a.Processor,
		Registry:   a.Proposals,
		Publisher:  a.Publisher,
		Validator:  schema.New(),
		Recognizer: a.Recognizer,
		Feed:       a.Feed,
		Limits:     transcript.DefaultLimits(),
		Metrics:    o.metrics,
	})

	appLogger.Info().
		Str("locale", a.Processor.Locale()).
		Str("sttProvider", a.Recognizer.Name()).
		Bool("kafkaEnabled", a.Publisher.Enabled()).
		Msg("Speech post-processing application created")
	return a, nil
}

// setupLogger configures zerolog for the service.
func (a *Application) setupLogger() {
	logging.Init(logging.Config{
		Level:      a.Cfg.Observability.LogLevel,
		Format:     a.Cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	a.Logger = logging.WithComponent("application").With().
		Str("service", a.Cfg.Service.Principal).
		Logger()

	a.Logger.Info().
		Str("logLevel", zerolog.GlobalLevel().String()).
		Str("logFormat", a.Cfg.Observability.LogFormat).
		Msg("Logger setup completed")
}

func newProcessor(cfg config.PostProcessConfig, clock func() time.Time) (*postprocess.Processor, error) {
	opts := []postprocess.Option{postprocess.WithClock(clock)}

	if cfg.TablesFile != "" {
		tables, err := postprocess.LoadTables(cfg.TablesFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, postprocess.WithTables(tables))
	}
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("app: timezone %q: %w", cfg.Timezone, err)
		}
		opts = append(opts, postprocess.WithLocation(loc))
	}

	return postprocess.New(opts...)
}

func newRecognizer(ctx context.Context, cfg config.STTConfig) (stt.Recognizer, error) {
	switch cfg.Provider {
	case "mock", "":
		return mock.New(), nil
	case "google":
		r, err := google.New(ctx, google.Config{
			LanguageCode:  cfg.LanguageCode,
			SampleRateHz:  int32(cfg.SampleRateHz),
			AudioEncoding: cfg.AudioEncoding,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("app: unknown STT provider %q", cfg.Provider)
	}
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Str("method", "Start").
		Time("startupTime", a.StartupTime).
		Msg("Speech post-processing service starting")
	return nil
}

// Shutdown releases the publisher and recognizer.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	if err := a.Publisher.Close(); err != nil {
		shutdownLogger.Error().Err(err).Msg("Error closing publisher")
	}
	if err := a.Recognizer.Close(); err != nil {
		shutdownLogger.Error().Err(err).Msg("Error closing recognizer")
	}
	shutdownLogger.Info().Msg("Speech post-processing service shut down")
}
