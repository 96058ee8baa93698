// Package core defines the capability interfaces the router depends on.
// Each capability is a single synchronous call into a managed service.
package core

import (
	"context"
	"time"

	"github.com/book-expert/ai-router/internal/sentiment"
)

// BlockTypeLine marks a text block that holds one line of recognised text.
const BlockTypeLine = "LINE"

// Transcription job statuses reported by the provider.
const (
	TranscriptionQueued     = "QUEUED"
	TranscriptionInProgress = "IN_PROGRESS"
	TranscriptionCompleted  = "COMPLETED"
	TranscriptionFailed     = "FAILED"
)

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// URLSigner issues time-limited URLs for a single bucket.
type URLSigner interface {
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Queue delivers an encoded payload to the queue identified by queueID.
type Queue interface {
	Enqueue(ctx context.Context, queueID string, payload []byte) error
}

// SentimentAnalyzer scores a text.
type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, text, languageCode string) (sentiment.Result, error)
}

// Translation is the result of a translation call.
type Translation struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
}

// Translator translates text. An empty or "auto" source language asks the
// provider to detect it.
type Translator interface {
	Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (Translation, error)
}

// TextBlock is one block of a document OCR result.
type TextBlock struct {
	Type string
	Text string
}

// TextExtractor runs OCR over a stored document.
type TextExtractor interface {
	ExtractBlocks(ctx context.Context, bucket, key string) ([]TextBlock, error)
}

// TranscriptionJob describes an asynchronous transcription request.
type TranscriptionJob struct {
	Name         string
	MediaURI     string
	MediaFormat  string
	LanguageCode string
	OutputBucket string
	OutputKey    string
}

// TranscriptionStatus is the provider's view of a transcription job.
type TranscriptionStatus struct {
	Status        string
	TranscriptURI string
}

// Transcriber starts and polls transcription jobs. The provider owns job state.
type Transcriber interface {
	StartTranscription(ctx context.Context, job TranscriptionJob) error
	TranscriptionStatus(ctx context.Context, jobName string) (TranscriptionStatus, error)
}

// SpeechSynthesizer converts text into encoded audio.
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, text, voice, languageCode string) ([]byte, error)
}
