// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Service       ServiceConfig
	Kafka         KafkaConfig
	STT           STTConfig
	PostProcess   PostProcessConfig
	Proposals     ProposalConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds identity and listener settings.
type ServiceConfig struct {
	Principal string
	GRPCPort  string
	HTTPPort  string
}

// KafkaConfig holds consumer and publisher settings.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	GroupID string

	// TopicFinal is consumed; the others are produced.
	TopicFinal     string
	TopicProcessed string
	TopicConfirmed string

	Principal string
}

// STTConfig selects and configures the server-side recognizer.
type STTConfig struct {
	Provider      string // mock, google
	LanguageCode  string
	SampleRateHz  int
	AudioEncoding string
}

// PostProcessConfig configures the post-processing pipeline.
type PostProcessConfig struct {
	// TablesFile is an optional YAML locale table set; empty means the
	// built-in zh-CN tables.
	TablesFile string
	// Timezone relative dates are resolved in.
	Timezone string
}

// ProposalConfig bounds how long event proposals wait for confirmation.
type ProposalConfig struct {
	TTL        time.Duration
	MaxPending int
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsPort string
}

// Load reads the configuration from the environment. Invalid values fall
// back to defaults.
func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-speech-postprocess")

	return &Config{
		Service: ServiceConfig{
			Principal: principal,
			GRPCPort:  envOrDefault("GRPC_PORT", "50052"),
			HTTPPort:  envOrDefault("HTTP_PORT", "8080"),
		},
		Kafka: KafkaConfig{
			Enabled:        envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:        envOrDefaultList("KAFKA_BROKERS", nil),
			GroupID:        envOrDefault("KAFKA_GROUP_ID", "speech-postprocess"),
			TopicFinal:     envOrDefault("KAFKA_TOPIC_FINAL", "interaction.transcript.final"),
			TopicProcessed: envOrDefault("KAFKA_TOPIC_PROCESSED", "calendar.speech.processed"),
			TopicConfirmed: envOrDefault("KAFKA_TOPIC_CONFIRMED", "calendar.event.confirmed"),
			Principal:      envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		STT: STTConfig{
			Provider:      envOrDefault("STT_PROVIDER", "mock"),
			LanguageCode:  envOrDefault("STT_LANGUAGE_CODE", "zh-CN"),
			SampleRateHz:  envOrDefaultInt("STT_SAMPLE_RATE_HZ", 16000),
			AudioEncoding: envOrDefault("STT_AUDIO_ENCODING", "LINEAR16"),
		},
		PostProcess: PostProcessConfig{
			TablesFile: envOrDefault("POSTPROCESS_TABLES_FILE", ""),
			Timezone:   envOrDefault("POSTPROCESS_TIMEZONE", "Asia/Shanghai"),
		},
		Proposals: ProposalConfig{
			TTL:        envOrDefaultDuration("PROPOSAL_TTL", 30*time.Minute),
			MaxPending: envOrDefaultInt("PROPOSAL_MAX_PENDING", 10000),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
