// Package api dispatches inbound requests to the capability handlers and
// builds the uniform JSON response envelope.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/book-expert/ai-router/internal/apperr"
	"github.com/book-expert/ai-router/internal/core"
	"github.com/book-expert/ai-router/internal/envelope"
	"github.com/book-expert/ai-router/internal/metrics"
	"github.com/book-expert/ai-router/internal/priority"
	"github.com/book-expert/logger"
)

// Route paths.
const (
	PathMessages             = "/messages"
	PathTranslate            = "/translate"
	PathDocumentUploadURL    = "/documents/upload-url"
	PathDocumentProcess      = "/documents/process"
	PathAudioUploadURL       = "/speech/transcribe/upload-url"
	PathTranscriptionProcess = "/speech/transcribe/process"
	PathSpeechSynthesize     = "/speech/synthesize"
	PathTranscriptionStatus  = "/speech/transcribe/status"
	PathHealth               = "/health"
)

// Signed URL lifetimes.
const (
	DocumentUploadTTL = 300 * time.Second
	AudioUploadTTL    = 900 * time.Second
	SpeechDownloadTTL = 900 * time.Second
)

var (
	// ErrRouterNil indicates that no priority router was supplied.
	ErrRouterNil = errors.New("priority router cannot be nil")
	// ErrAssemblerNil indicates that no envelope assembler was supplied.
	ErrAssemblerNil = errors.New("envelope assembler cannot be nil")
	// ErrMetricsNil indicates that no metrics were supplied.
	ErrMetricsNil = errors.New("metrics cannot be nil")
	// ErrCapabilityUnavailable indicates that a route's capability is not configured.
	ErrCapabilityUnavailable = errors.New("capability not configured")
	// ErrDocumentsBucketUnset indicates that a storage route ran without a documents bucket.
	ErrDocumentsBucketUnset = errors.New("documents bucket not configured")
	errHandlerPanic         = errors.New("handler panicked")
)

// Settings are the read-only values handlers need from configuration.
type Settings struct {
	LanguageCode           string
	TranscribeLanguageCode string
	DocumentsBucket        string
	VoiceID                string
	SpeechLanguageCode     string
}

// Deps are the collaborators injected into the dispatcher. Capabilities left
// nil make their routes fail with an internal error.
type Deps struct {
	Sentiment   core.SentimentAnalyzer
	Translator  core.Translator
	Extractor   core.TextExtractor
	Transcriber core.Transcriber
	Speech      core.SpeechSynthesizer
	Documents   core.ObjectStore
	Signer      core.URLSigner
	Router      *priority.Router
	Assembler   *envelope.Assembler
	Metrics     *metrics.Metrics
	Log         *logger.Logger
}

type handlerFunc func(ctx context.Context, req Request) (any, error)

// Dispatcher maps request paths to handlers.
type Dispatcher struct {
	settings Settings
	deps     Deps
	routes   map[string]handlerFunc
}

// NewDispatcher creates a Dispatcher with the full routing table.
func NewDispatcher(settings Settings, deps Deps) (*Dispatcher, error) {
	if deps.Router == nil {
		return nil, ErrRouterNil
	}

	if deps.Assembler == nil {
		return nil, ErrAssemblerNil
	}

	if deps.Metrics == nil {
		return nil, ErrMetricsNil
	}

	dispatcher := &Dispatcher{settings: settings, deps: deps}
	dispatcher.routes = map[string]handlerFunc{
		PathMessages:             dispatcher.handleMessage,
		PathTranslate:            dispatcher.handleTranslate,
		PathDocumentUploadURL:    dispatcher.handleDocumentUploadURL,
		PathDocumentProcess:      dispatcher.handleDocumentProcess,
		PathAudioUploadURL:       dispatcher.handleAudioUploadURL,
		PathTranscriptionProcess: dispatcher.handleTranscriptionStart,
		PathSpeechSynthesize:     dispatcher.handleSpeechSynthesize,
		PathTranscriptionStatus:  dispatcher.handleTranscriptionStatus,
		PathHealth:               dispatcher.handleHealth,
	}

	return dispatcher, nil
}

// Dispatch handles one request. It never returns an error: every failure is
// turned into a response, and causes of 500s only reach the log.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	start := time.Now()

	handler, ok := d.routes[req.Path]
	if !ok {
		response := Error(http.StatusNotFound, msgRouteNotFound)
		d.deps.Metrics.ObserveRequest(metrics.RouteUnmatched, response.StatusCode, time.Since(start))

		return response
	}

	payload, err := d.invoke(ctx, handler, req)

	var response Response
	if err != nil {
		response = d.failure(ctx, req, err)
	} else {
		response = JSON(http.StatusOK, payload)
	}

	d.deps.Metrics.ObserveRequest(req.Path, response.StatusCode, time.Since(start))

	return response
}

// invoke runs a handler and converts a panic into an internal error.
func (d *Dispatcher) invoke(ctx context.Context, handler handlerFunc, req Request) (payload any, err error) {
	defer func() {
		recovered := recover()
		if recovered != nil {
			payload = nil
			err = apperr.Internal(fmt.Errorf("%w: %v", errHandlerPanic, recovered))
		}
	}()

	return handler(ctx, req)
}

func (d *Dispatcher) failure(ctx context.Context, req Request, err error) Response {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && (appErr.Kind == apperr.KindValidation || appErr.Kind == apperr.KindNotFound) {
		return Error(appErr.HTTPStatus(), appErr.Message)
	}

	d.deps.Log.Error("Request %s on %s failed (%s): %v",
		RequestIDFrom(ctx), req.Path, apperr.KindOf(err), err)

	return Error(apperr.StatusOf(err), msgInternalError)
}

func (d *Dispatcher) handleHealth(_ context.Context, _ Request) (any, error) {
	return healthResponse{Status: "ok", AuditEnabled: d.deps.Assembler.AuditEnabled()}, nil
}

type healthResponse struct {
	Status       string `json:"status"`
	AuditEnabled bool   `json:"audit_enabled"`
}
