// Package llm implements sentiment analysis on an OpenAI-compatible chat
// completion API as an alternative to Comprehend.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/book-expert/ai-router/internal/sentiment"
	"github.com/sashabaranov/go-openai"
)

const (
	maxResponseTokens = 200
	promptTemplate    = `Classify the sentiment of the following text written in language '%s'.

Return only a JSON object with this structure:
{
    "sentiment": "POSITIVE" | "NEGATIVE" | "NEUTRAL" | "MIXED",
    "scores": {"Positive": 0.0, "Negative": 0.0, "Neutral": 0.0, "Mixed": 0.0}
}

Scores are confidences between 0 and 1.

Text: %s`
)

var (
	// ErrClientNil is returned when no chat client is supplied.
	ErrClientNil = errors.New("chat completion client cannot be nil")
	// ErrModelEmpty is returned when no model name is supplied.
	ErrModelEmpty = errors.New("model name cannot be empty")
	// ErrNoChoices is returned when the completion carries no message.
	ErrNoChoices = errors.New("chat completion returned no choices")
)

// ChatCompleter is the subset of *openai.Client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type classification struct {
	Sentiment string           `json:"sentiment"`
	Scores    sentiment.Scores `json:"scores"`
}

// Sentiment implements core.SentimentAnalyzer with a chat model.
type Sentiment struct {
	client ChatCompleter
	model  string
}

// NewClient builds an OpenAI client. An empty baseURL keeps the public endpoint.
func NewClient(apiKey, baseURL string) *openai.Client {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return openai.NewClientWithConfig(clientConfig)
}

// NewSentiment creates a chat-model sentiment analyzer.
func NewSentiment(client ChatCompleter, model string) (*Sentiment, error) {
	if client == nil {
		return nil, ErrClientNil
	}

	if model == "" {
		return nil, ErrModelEmpty
	}

	return &Sentiment{client: client, model: model}, nil
}

// AnalyzeSentiment asks the model for a label and per-label scores.
// Unknown labels map to NEUTRAL and scores are clamped to [0, 1].
func (s *Sentiment) AnalyzeSentiment(ctx context.Context, text, languageCode string) (sentiment.Result, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(promptTemplate, languageCode, text),
			},
		},
		MaxTokens:      maxResponseTokens,
		Temperature:    0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return sentiment.Result{}, fmt.Errorf("failed to get chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return sentiment.Result{}, ErrNoChoices
	}

	var parsed classification

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	err = json.Unmarshal([]byte(content), &parsed)
	if err != nil {
		return sentiment.Result{}, fmt.Errorf("failed to parse classification %q: %w", content, err)
	}

	return sentiment.Result{
		Label: sentiment.ParseLabel(strings.ToUpper(strings.TrimSpace(parsed.Sentiment))),
		Scores: sentiment.Scores{
			Positive: clamp(parsed.Scores.Positive),
			Negative: clamp(parsed.Scores.Negative),
			Neutral:  clamp(parsed.Scores.Neutral),
			Mixed:    clamp(parsed.Scores.Mixed),
		},
	}, nil
}

func clamp(score float64) float64 {
	return min(max(score, 0), 1)
}
