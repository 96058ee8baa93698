package api_test

import (
	"context"
	"errors"
	"time"

	"github.com/book-expert/ai-router/internal/core"
	"github.com/book-expert/ai-router/internal/sentiment"
)

var (
	errMockProvider = errors.New("mock provider error")
	errMockEnqueue  = errors.New("mock enqueue error")
	errMockUpload   = errors.New("mock upload error")
)

// mockSentiment is a mock implementation of the SentimentAnalyzer interface.
type mockSentiment struct {
	analyzeShouldFail bool
	result            sentiment.Result
	calls             int
	analyzedText      string
	analyzedLanguage  string
}

func (m *mockSentiment) AnalyzeSentiment(_ context.Context, text, languageCode string) (sentiment.Result, error) {
	m.calls++

	if m.analyzeShouldFail {
		return sentiment.Result{}, errMockProvider
	}

	m.analyzedText = text
	m.analyzedLanguage = languageCode

	return m.result, nil
}

// mockTranslator is a mock implementation of the Translator interface.
type mockTranslator struct {
	translateShouldFail bool
	sourceLanguage      string
	targetLanguage      string
}

func (m *mockTranslator) Translate(_ context.Context, text, sourceLanguage, targetLanguage string) (core.Translation, error) {
	if m.translateShouldFail {
		return core.Translation{}, errMockProvider
	}

	m.sourceLanguage = sourceLanguage
	m.targetLanguage = targetLanguage

	return core.Translation{Text: "Hello (" + text + ")", SourceLanguage: "pt", TargetLanguage: targetLanguage}, nil
}

// mockExtractor is a mock implementation of the TextExtractor interface.
type mockExtractor struct {
	extractShouldFail bool
	blocks            []core.TextBlock
	bucket            string
	key               string
}

func (m *mockExtractor) ExtractBlocks(_ context.Context, bucket, key string) ([]core.TextBlock, error) {
	if m.extractShouldFail {
		return nil, errMockProvider
	}

	m.bucket = bucket
	m.key = key

	return m.blocks, nil
}

// mockTranscriber is a mock implementation of the Transcriber interface.
type mockTranscriber struct {
	startShouldFail bool
	startedJob      core.TranscriptionJob
	status          core.TranscriptionStatus
}

func (m *mockTranscriber) StartTranscription(_ context.Context, job core.TranscriptionJob) error {
	if m.startShouldFail {
		return errMockProvider
	}

	m.startedJob = job

	return nil
}

func (m *mockTranscriber) TranscriptionStatus(_ context.Context, _ string) (core.TranscriptionStatus, error) {
	return m.status, nil
}

// mockSpeech is a mock implementation of the SpeechSynthesizer interface.
type mockSpeech struct {
	voice        string
	languageCode string
	audio        []byte
}

func (m *mockSpeech) SynthesizeSpeech(_ context.Context, _, voice, languageCode string) ([]byte, error) {
	m.voice = voice
	m.languageCode = languageCode

	return m.audio, nil
}

type enqueuedMessage struct {
	queueID string
	payload []byte
}

// mockQueue is a mock implementation of the Queue interface.
type mockQueue struct {
	enqueueShouldFail bool
	messages          []enqueuedMessage
}

func (m *mockQueue) Enqueue(_ context.Context, queueID string, payload []byte) error {
	if m.enqueueShouldFail {
		return errMockEnqueue
	}

	m.messages = append(m.messages, enqueuedMessage{queueID: queueID, payload: payload})

	return nil
}

// mockObjectStore is a mock implementation of the ObjectStore interface.
type mockObjectStore struct {
	uploadShouldFail bool
	uploads          map[string][]byte
	contentTypes     map[string]string
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{
		uploadShouldFail: false,
		uploads:          make(map[string][]byte),
		contentTypes:     make(map[string]string),
	}
}

func (m *mockObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	return m.uploads[key], nil
}

func (m *mockObjectStore) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if m.uploadShouldFail {
		return errMockUpload
	}

	m.uploads[key] = data
	m.contentTypes[key] = contentType

	return nil
}

// mockSigner is a mock implementation of the URLSigner interface.
type mockSigner struct {
	uploadKey         string
	uploadContentType string
	uploadTTL         time.Duration
	downloadKey       string
	downloadTTL       time.Duration
}

func (m *mockSigner) PresignUpload(_ context.Context, key, contentType string, ttl time.Duration) (string, error) {
	m.uploadKey = key
	m.uploadContentType = contentType
	m.uploadTTL = ttl

	return "https://signed.example/put/" + key, nil
}

func (m *mockSigner) PresignDownload(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.downloadKey = key
	m.downloadTTL = ttl

	return "https://signed.example/get/" + key, nil
}
