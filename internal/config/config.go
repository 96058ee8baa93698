// Package config provides the configuration structure for the ai-router.
package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/spf13/viper"
)

// Backend names.
const (
	QueueBackendSQS        = "sqs"
	QueueBackendNATS       = "nats"
	AuditBackendS3         = "s3"
	AuditBackendNATS       = "nats"
	SentimentBackendAWS    = "comprehend"
	SentimentBackendOpenAI = "openai"
	SpeechBackendPolly     = "polly"
	SpeechBackendHTTP      = "http"
	defaultThreshold       = 0.7
	defaultLanguageCode    = "pt"
	defaultMediaLanguage   = "pt-BR"
	defaultVoiceID         = "Camila"
	defaultHTTPAddr        = ":8080"
	defaultNATSURL         = "nats://127.0.0.1:4222"
	defaultNATSStream      = "AI_ROUTER_PRIORITY"
	defaultRequestSubject  = "ai-router.requests"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultTTSTimeout      = 60
)

var (
	// ErrThresholdRange indicates that a threshold is outside [0.0, 1.0].
	ErrThresholdRange = errors.New("threshold must be between 0.0 and 1.0")
	// ErrQueueMissing indicates that a priority queue identifier is not configured.
	ErrQueueMissing = errors.New("queue identifier is required")
	// ErrUnknownBackend indicates an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrOpenAIKeyMissing indicates that the openai sentiment backend has no API key.
	ErrOpenAIKeyMissing = errors.New("openai api key is required for the openai sentiment backend")
	// ErrTTSServiceURLMissing indicates that the http speech backend has no service URL.
	ErrTTSServiceURLMissing = errors.New("tts service url is required for the http speech backend")
)

// RoutingConfig holds the priority routing thresholds and queue identifiers.
type RoutingConfig struct {
	NegativeThreshold float64 `toml:"negative_threshold"`
	PositiveThreshold float64 `toml:"positive_threshold"`
	HighQueue         string  `toml:"high_queue"`
	NormalQueue       string  `toml:"normal_queue"`
	LowQueue          string  `toml:"low_queue"`
	QueueBackend      string  `toml:"queue_backend"`
}

// LanguageConfig holds the language codes passed to the AI capabilities.
type LanguageConfig struct {
	SentimentLanguageCode  string `toml:"sentiment_language_code"`
	TranscribeLanguageCode string `toml:"transcribe_language_code"`
	SpeechLanguageCode     string `toml:"speech_language_code"`
	VoiceID                string `toml:"voice_id"`
}

// StorageConfig holds bucket names. An empty audit bucket disables auditing.
type StorageConfig struct {
	AuditBucket     string `toml:"audit_bucket"`
	AuditBackend    string `toml:"audit_backend"`
	DocumentsBucket string `toml:"documents_bucket"`
}

// ProvidersConfig selects and configures the capability implementations.
type ProvidersConfig struct {
	AWSRegion         string `toml:"aws_region"`
	SentimentBackend  string `toml:"sentiment_backend"`
	SpeechBackend     string `toml:"speech_backend"`
	OpenAIAPIKey      string `toml:"openai_api_key"`
	OpenAIModel       string `toml:"openai_model"`
	OpenAIBaseURL     string `toml:"openai_base_url"`
	TTSServiceURL     string `toml:"tts_service_url"`
	TTSTimeoutSeconds int    `toml:"tts_timeout_seconds"`
}

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL            string `toml:"url"`
	PriorityStream string `toml:"priority_stream"`
	RequestSubject string `toml:"request_subject"`
}

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure. It is built once at start-up
// and only read afterwards.
type Config struct {
	Routing   RoutingConfig   `toml:"routing"`
	Language  LanguageConfig  `toml:"language"`
	Storage   StorageConfig   `toml:"storage"`
	Providers ProvidersConfig `toml:"providers"`
	NATS      NATSConfig      `toml:"nats"`
	Server    ServerConfig    `toml:"server"`
	Paths     PathsConfig     `toml:"paths"`
}

// Default returns a Config with every optional value set.
func Default() Config {
	return Config{
		Routing: RoutingConfig{
			NegativeThreshold: defaultThreshold,
			PositiveThreshold: defaultThreshold,
			QueueBackend:      QueueBackendSQS,
		},
		Language: LanguageConfig{
			SentimentLanguageCode:  defaultLanguageCode,
			TranscribeLanguageCode: defaultMediaLanguage,
			SpeechLanguageCode:     defaultMediaLanguage,
			VoiceID:                defaultVoiceID,
		},
		Storage: StorageConfig{
			AuditBackend: AuditBackendS3,
		},
		Providers: ProvidersConfig{
			SentimentBackend:  SentimentBackendAWS,
			SpeechBackend:     SpeechBackendPolly,
			OpenAIModel:       defaultOpenAIModel,
			TTSTimeoutSeconds: defaultTTSTimeout,
		},
		NATS: NATSConfig{
			URL:            defaultNATSURL,
			PriorityStream: defaultNATSStream,
			RequestSubject: defaultRequestSubject,
		},
		Server: ServerConfig{Addr: defaultHTTPAddr},
	}
}

// Load builds the configuration: defaults, then the central TOML served by
// the configurator, then the process environment.
func Load(log *logger.Logger) (*Config, error) {
	cfg := Default()

	err := configurator.Load(&cfg, log)
	if err != nil {
		log.Warn("Central configuration unavailable, using defaults and environment: %v", err)
	}

	err = ApplyEnv(&cfg, viper.New())
	if err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

type stringBinding struct {
	env    string
	target *string
}

type floatBinding struct {
	env    string
	target *float64
}

// ApplyEnv overlays environment variables onto cfg. Unset variables leave
// the current value in place.
func ApplyEnv(cfg *Config, v *viper.Viper) error {
	textBindings := []stringBinding{
		{"HIGH_QUEUE_URL", &cfg.Routing.HighQueue},
		{"NORMAL_QUEUE_URL", &cfg.Routing.NormalQueue},
		{"LOW_QUEUE_URL", &cfg.Routing.LowQueue},
		{"QUEUE_BACKEND", &cfg.Routing.QueueBackend},
		{"LANGUAGE_CODE", &cfg.Language.SentimentLanguageCode},
		{"TRANSCRIBE_LANGUAGE_CODE", &cfg.Language.TranscribeLanguageCode},
		{"SPEECH_LANGUAGE_CODE", &cfg.Language.SpeechLanguageCode},
		{"VOICE_ID", &cfg.Language.VoiceID},
		{"AUDIT_BUCKET", &cfg.Storage.AuditBucket},
		{"AUDIT_BACKEND", &cfg.Storage.AuditBackend},
		{"DOCUMENTS_BUCKET", &cfg.Storage.DocumentsBucket},
		{"AWS_REGION", &cfg.Providers.AWSRegion},
		{"SENTIMENT_BACKEND", &cfg.Providers.SentimentBackend},
		{"SPEECH_BACKEND", &cfg.Providers.SpeechBackend},
		{"OPENAI_API_KEY", &cfg.Providers.OpenAIAPIKey},
		{"OPENAI_MODEL", &cfg.Providers.OpenAIModel},
		{"OPENAI_BASE_URL", &cfg.Providers.OpenAIBaseURL},
		{"TTS_SERVICE_URL", &cfg.Providers.TTSServiceURL},
		{"NATS_URL", &cfg.NATS.URL},
		{"NATS_STREAM", &cfg.NATS.PriorityStream},
		{"NATS_REQUEST_SUBJECT", &cfg.NATS.RequestSubject},
		{"HTTP_ADDR", &cfg.Server.Addr},
		{"LOG_DIR", &cfg.Paths.BaseLogsDir},
	}

	for _, binding := range textBindings {
		err := v.BindEnv(binding.env)
		if err != nil {
			return fmt.Errorf("failed to bind %s: %w", binding.env, err)
		}

		if value := v.GetString(binding.env); value != "" {
			*binding.target = value
		}
	}

	floats := []floatBinding{
		{"NEGATIVE_THRESHOLD", &cfg.Routing.NegativeThreshold},
		{"POSITIVE_THRESHOLD", &cfg.Routing.PositiveThreshold},
	}

	for _, binding := range floats {
		err := v.BindEnv(binding.env)
		if err != nil {
			return fmt.Errorf("failed to bind %s: %w", binding.env, err)
		}

		value := v.GetString(binding.env)
		if value == "" {
			continue
		}

		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("failed to parse %s=%q: %w", binding.env, value, err)
		}

		*binding.target = parsed
	}

	return nil
}

// Validate checks the values the router cannot start without.
func (c *Config) Validate() error {
	if c.Routing.NegativeThreshold < 0 || c.Routing.NegativeThreshold > 1 {
		return fmt.Errorf("%w: negative threshold %f", ErrThresholdRange, c.Routing.NegativeThreshold)
	}

	if c.Routing.PositiveThreshold < 0 || c.Routing.PositiveThreshold > 1 {
		return fmt.Errorf("%w: positive threshold %f", ErrThresholdRange, c.Routing.PositiveThreshold)
	}

	for name, queue := range map[string]string{
		"HIGH_QUEUE_URL":   c.Routing.HighQueue,
		"NORMAL_QUEUE_URL": c.Routing.NormalQueue,
		"LOW_QUEUE_URL":    c.Routing.LowQueue,
	} {
		if queue == "" {
			return fmt.Errorf("%w: %s", ErrQueueMissing, name)
		}
	}

	err := validateBackends(c)
	if err != nil {
		return err
	}

	if c.Providers.SentimentBackend == SentimentBackendOpenAI && c.Providers.OpenAIAPIKey == "" {
		return ErrOpenAIKeyMissing
	}

	if c.Providers.SpeechBackend == SpeechBackendHTTP && c.Providers.TTSServiceURL == "" {
		return ErrTTSServiceURLMissing
	}

	return nil
}

// AuditEnabled reports whether envelopes are mirrored to an audit store.
// The audit bucket names an S3 bucket or a NATS object store bucket
// depending on the audit backend.
func (c *Config) AuditEnabled() bool {
	return c.Storage.AuditBucket != ""
}

func validateBackends(c *Config) error {
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"queue", c.Routing.QueueBackend, []string{QueueBackendSQS, QueueBackendNATS}},
		{"audit", c.Storage.AuditBackend, []string{AuditBackendS3, AuditBackendNATS}},
		{"sentiment", c.Providers.SentimentBackend, []string{SentimentBackendAWS, SentimentBackendOpenAI}},
		{"speech", c.Providers.SpeechBackend, []string{SpeechBackendPolly, SpeechBackendHTTP}},
	}

	for _, check := range checks {
		if !contains(check.allowed, check.value) {
			return fmt.Errorf("%w: %s backend %q", ErrUnknownBackend, check.name, check.value)
		}
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}

	return false
}
