// Package app wires configuration into a ready dispatcher.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/book-expert/ai-router/internal/api"
	"github.com/book-expert/ai-router/internal/config"
	"github.com/book-expert/ai-router/internal/core"
	"github.com/book-expert/ai-router/internal/envelope"
	"github.com/book-expert/ai-router/internal/metrics"
	"github.com/book-expert/ai-router/internal/objectstore"
	"github.com/book-expert/ai-router/internal/priority"
	"github.com/book-expert/ai-router/internal/provider/awsai"
	"github.com/book-expert/ai-router/internal/provider/llm"
	"github.com/book-expert/ai-router/internal/queue"
	"github.com/book-expert/ai-router/internal/tts"
	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
)

const healthCheckTimeout = 5 * time.Second

// ErrConfigNil is returned when Build is called without configuration.
var ErrConfigNil = errors.New("configuration cannot be nil")

// Options adjust what Build connects to.
type Options struct {
	// NeedNATS forces a NATS connection even when no backend uses it.
	NeedNATS bool
}

// App holds the built dispatcher and the shared clients behind it.
type App struct {
	Dispatcher *api.Dispatcher
	Registry   *prometheus.Registry
	NATS       *nats.Conn

	log *logger.Logger
}

type builder struct {
	cfg    *config.Config
	log    *logger.Logger
	awsCfg aws.Config
	nc     *nats.Conn
	js     jetstream.JetStream
	s3     *s3.Client
}

// Build creates every configured capability and the dispatcher over them.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	awsCfg, err := awsai.LoadConfig(ctx, cfg.Providers.AWSRegion)
	if err != nil {
		return nil, err
	}

	b := &builder{cfg: cfg, log: log, awsCfg: awsCfg, s3: s3.NewFromConfig(awsCfg)}

	if opts.NeedNATS || usesNATS(cfg) {
		err = b.connectNATS()
		if err != nil {
			return nil, err
		}
	}

	app, err := b.build(ctx)
	if err != nil {
		b.close()

		return nil, err
	}

	return app, nil
}

func usesNATS(cfg *config.Config) bool {
	return cfg.Routing.QueueBackend == config.QueueBackendNATS ||
		(cfg.AuditEnabled() && cfg.Storage.AuditBackend == config.AuditBackendNATS)
}

func (b *builder) connectNATS() error {
	nc, err := nats.Connect(b.cfg.NATS.URL, nats.Name("ai-router"))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", b.cfg.NATS.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	b.nc = nc
	b.js = js

	b.log.Info("Connected to NATS at %s", b.cfg.NATS.URL)

	return nil
}

func (b *builder) close() {
	if b.nc != nil {
		b.nc.Close()
	}
}

func (b *builder) build(ctx context.Context) (*App, error) {
	registry := metrics.NewRegistry()
	routerMetrics := metrics.New(registry)

	router, err := priority.NewRouter(
		priority.Thresholds{
			Negative: b.cfg.Routing.NegativeThreshold,
			Positive: b.cfg.Routing.PositiveThreshold,
		},
		priority.Queues{
			High:   b.cfg.Routing.HighQueue,
			Normal: b.cfg.Routing.NormalQueue,
			Low:    b.cfg.Routing.LowQueue,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create priority router: %w", err)
	}

	priorityQueue, err := b.queue(ctx)
	if err != nil {
		return nil, err
	}

	audit, err := b.auditStore(ctx)
	if err != nil {
		return nil, err
	}

	assembler, err := envelope.NewAssembler(priorityQueue, audit, routerMetrics, b.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create envelope assembler: %w", err)
	}

	deps, err := b.capabilities(ctx)
	if err != nil {
		return nil, err
	}

	deps.Router = router
	deps.Assembler = assembler
	deps.Metrics = routerMetrics
	deps.Log = b.log

	dispatcher, err := api.NewDispatcher(api.Settings{
		LanguageCode:           b.cfg.Language.SentimentLanguageCode,
		TranscribeLanguageCode: b.cfg.Language.TranscribeLanguageCode,
		DocumentsBucket:        b.cfg.Storage.DocumentsBucket,
		VoiceID:                b.cfg.Language.VoiceID,
		SpeechLanguageCode:     b.cfg.Language.SpeechLanguageCode,
	}, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	b.log.Info("Router ready: queue=%s audit=%t sentiment=%s speech=%s",
		b.cfg.Routing.QueueBackend, assembler.AuditEnabled(),
		b.cfg.Providers.SentimentBackend, b.cfg.Providers.SpeechBackend)

	return &App{Dispatcher: dispatcher, Registry: registry, NATS: b.nc, log: b.log}, nil
}

func (b *builder) queue(ctx context.Context) (core.Queue, error) {
	if b.cfg.Routing.QueueBackend == config.QueueBackendNATS {
		backend, err := queue.NewJetStream(ctx, b.js, b.cfg.NATS.PriorityStream, []string{
			b.cfg.Routing.HighQueue,
			b.cfg.Routing.NormalQueue,
			b.cfg.Routing.LowQueue,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream queue: %w", err)
		}

		return backend, nil
	}

	backend, err := queue.NewSQS(sqs.NewFromConfig(b.awsCfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create SQS queue: %w", err)
	}

	return backend, nil
}

// auditStore returns a nil interface, not a typed nil, when auditing is off.
func (b *builder) auditStore(ctx context.Context) (core.ObjectStore, error) {
	if !b.cfg.AuditEnabled() {
		return nil, nil
	}

	if b.cfg.Storage.AuditBackend == config.AuditBackendNATS {
		store, err := objectstore.NewNats(ctx, b.js, b.cfg.Storage.AuditBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS audit store: %w", err)
		}

		return store, nil
	}

	store, err := objectstore.NewS3(b.s3, b.cfg.Storage.AuditBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 audit store: %w", err)
	}

	return store, nil
}

func (b *builder) capabilities(ctx context.Context) (api.Deps, error) {
	var deps api.Deps

	sentimentAnalyzer, err := b.sentiment()
	if err != nil {
		return api.Deps{}, err
	}

	speech, err := b.speech(ctx)
	if err != nil {
		return api.Deps{}, err
	}

	deps.Sentiment = sentimentAnalyzer
	deps.Speech = speech

	deps.Translator, err = awsai.NewTranslate(translate.NewFromConfig(b.awsCfg))
	if err != nil {
		return api.Deps{}, fmt.Errorf("failed to create translator: %w", err)
	}

	deps.Extractor, err = awsai.NewTextract(textract.NewFromConfig(b.awsCfg))
	if err != nil {
		return api.Deps{}, fmt.Errorf("failed to create text extractor: %w", err)
	}

	deps.Transcriber, err = awsai.NewTranscribe(transcribe.NewFromConfig(b.awsCfg))
	if err != nil {
		return api.Deps{}, fmt.Errorf("failed to create transcriber: %w", err)
	}

	if b.cfg.Storage.DocumentsBucket == "" {
		b.log.Warn("DOCUMENTS_BUCKET not set: upload, document and speech routes will fail")

		return deps, nil
	}

	deps.Documents, err = objectstore.NewS3(b.s3, b.cfg.Storage.DocumentsBucket)
	if err != nil {
		return api.Deps{}, fmt.Errorf("failed to create documents store: %w", err)
	}

	deps.Signer, err = objectstore.NewPresigner(s3.NewPresignClient(b.s3), b.cfg.Storage.DocumentsBucket)
	if err != nil {
		return api.Deps{}, fmt.Errorf("failed to create presigner: %w", err)
	}

	return deps, nil
}

func (b *builder) sentiment() (core.SentimentAnalyzer, error) {
	if b.cfg.Providers.SentimentBackend == config.SentimentBackendOpenAI {
		client := llm.NewClient(b.cfg.Providers.OpenAIAPIKey, b.cfg.Providers.OpenAIBaseURL)

		analyzer, err := llm.NewSentiment(client, b.cfg.Providers.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat sentiment analyzer: %w", err)
		}

		return analyzer, nil
	}

	analyzer, err := awsai.NewComprehend(comprehend.NewFromConfig(b.awsCfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create comprehend analyzer: %w", err)
	}

	return analyzer, nil
}

func (b *builder) speech(ctx context.Context) (core.SpeechSynthesizer, error) {
	if b.cfg.Providers.SpeechBackend == config.SpeechBackendHTTP {
		timeout := time.Duration(b.cfg.Providers.TTSTimeoutSeconds) * time.Second
		client := tts.NewHTTPClient(b.cfg.Providers.TTSServiceURL, timeout)

		healthCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()

		err := client.HealthCheck(healthCtx)
		if err != nil {
			b.log.Warn("TTS service not healthy yet: %v", err)
		}

		return client, nil
	}

	synthesizer, err := awsai.NewPolly(polly.NewFromConfig(b.awsCfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create polly synthesizer: %w", err)
	}

	return synthesizer, nil
}

// Close releases the shared connections.
func (a *App) Close() {
	if a.NATS == nil {
		return
	}

	err := a.NATS.Drain()
	if err != nil {
		a.log.Warn("Failed to drain NATS connection: %v", err)
	}
}
