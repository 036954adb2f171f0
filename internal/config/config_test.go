package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

var envVars = []string{
	"SERVICE_PRINCIPAL", "GRPC_PORT", "HTTP_PORT",
	"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_GROUP_ID", "KAFKA_PRINCIPAL",
	"KAFKA_TOPIC_FINAL", "KAFKA_TOPIC_PROCESSED", "KAFKA_TOPIC_CONFIRMED",
	"STT_PROVIDER", "STT_LANGUAGE_CODE", "STT_SAMPLE_RATE_HZ", "STT_AUDIO_ENCODING",
	"POSTPROCESS_TABLES_FILE", "POSTPROCESS_TIMEZONE",
	"PROPOSAL_TTL", "PROPOSAL_MAX_PENDING",
	"LOG_LEVEL", "LOG_FORMAT", "METRICS_PORT",
}

func clearEnv() {
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv()

	cfg := Load()

	// Service defaults
	if cfg.Service.Principal != "svc-speech-postprocess" {
		t.Errorf("expected default principal 'svc-speech-postprocess', got %s", cfg.Service.Principal)
	}
	if cfg.Service.GRPCPort != "50052" {
		t.Errorf("expected default gRPC port '50052', got %s", cfg.Service.GRPCPort)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default HTTP port '8080', got %s", cfg.Service.HTTPPort)
	}

	// Kafka defaults
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("expected no brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.TopicFinal != "interaction.transcript.final" {
		t.Errorf("unexpected final topic %s", cfg.Kafka.TopicFinal)
	}
	if cfg.Kafka.TopicProcessed != "calendar.speech.processed" {
		t.Errorf("unexpected processed topic %s", cfg.Kafka.TopicProcessed)
	}

	// STT defaults
	if cfg.STT.Provider != "mock" {
		t.Errorf("expected default STT provider 'mock', got %s", cfg.STT.Provider)
	}
	if cfg.STT.LanguageCode != "zh-CN" {
		t.Errorf("expected default language 'zh-CN', got %s", cfg.STT.LanguageCode)
	}
	if cfg.STT.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.STT.SampleRateHz)
	}

	// Pipeline defaults
	if cfg.PostProcess.TablesFile != "" {
		t.Errorf("expected built-in tables by default, got %s", cfg.PostProcess.TablesFile)
	}
	if cfg.PostProcess.Timezone != "Asia/Shanghai" {
		t.Errorf("expected default timezone Asia/Shanghai, got %s", cfg.PostProcess.Timezone)
	}
	if cfg.Proposals.TTL != 30*time.Minute {
		t.Errorf("expected default proposal TTL 30m, got %v", cfg.Proposals.TTL)
	}

	// Observability defaults
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.MetricsPort != "9090" {
		t.Errorf("expected default metrics port '9090', got %s", cfg.Observability.MetricsPort)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv()
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("GRPC_PORT", "9999")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "kafka-0:9092, kafka-1:9092,")
	os.Setenv("STT_PROVIDER", "google")
	os.Setenv("STT_SAMPLE_RATE_HZ", "8000")
	os.Setenv("POSTPROCESS_TABLES_FILE", "/etc/tables/en-US.yaml")
	os.Setenv("PROPOSAL_TTL", "2h")
	os.Setenv("LOG_LEVEL", "debug")
	defer clearEnv()

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.GRPCPort != "9999" {
		t.Errorf("expected port '9999', got %s", cfg.Service.GRPCPort)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if want := []string{"kafka-0:9092", "kafka-1:9092"}; !reflect.DeepEqual(cfg.Kafka.Brokers, want) {
		t.Errorf("expected brokers %v, got %v", want, cfg.Kafka.Brokers)
	}
	if cfg.STT.Provider != "google" {
		t.Errorf("expected STT provider 'google', got %s", cfg.STT.Provider)
	}
	if cfg.STT.SampleRateHz != 8000 {
		t.Errorf("expected sample rate 8000, got %d", cfg.STT.SampleRateHz)
	}
	if cfg.PostProcess.TablesFile != "/etc/tables/en-US.yaml" {
		t.Errorf("unexpected tables file %s", cfg.PostProcess.TablesFile)
	}
	if cfg.Proposals.TTL != 2*time.Hour {
		t.Errorf("expected proposal TTL 2h, got %v", cfg.Proposals.TTL)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	clearEnv()
	os.Setenv("STT_SAMPLE_RATE_HZ", "not-a-number")
	os.Setenv("KAFKA_ENABLED", "invalid")
	os.Setenv("PROPOSAL_TTL", "invalid")
	os.Setenv("PROPOSAL_MAX_PENDING", "invalid")
	defer clearEnv()

	cfg := Load()

	if cfg.STT.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate on invalid input, got %d", cfg.STT.SampleRateHz)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected default Kafka enabled=false on invalid input")
	}
	if cfg.Proposals.TTL != 30*time.Minute {
		t.Errorf("expected default TTL on invalid input, got %v", cfg.Proposals.TTL)
	}
	if cfg.Proposals.MaxPending != 10000 {
		t.Errorf("expected default max pending on invalid input, got %d", cfg.Proposals.MaxPending)
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	clearEnv()
	os.Setenv("SERVICE_PRINCIPAL", "my-service")
	defer clearEnv()

	cfg := Load()

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service principal, got %s", cfg.Kafka.Principal)
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}
