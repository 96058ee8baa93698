package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/book-expert/ai-router/internal/provider/llm"
	"github.com/book-expert/ai-router/internal/sentiment"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMockCompletion = errors.New("mock completion error")

type mockChat struct {
	shouldFail bool
	content    string
	noChoices  bool
	request    openai.ChatCompletionRequest
}

func (m *mockChat) CreateChatCompletion(
	_ context.Context,
	request openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	m.request = request

	if m.shouldFail {
		return openai.ChatCompletionResponse{}, errMockCompletion
	}

	if m.noChoices {
		return openai.ChatCompletionResponse{}, nil
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.content}},
		},
	}, nil
}

func TestSentiment_AnalyzeSentiment(t *testing.T) {
	t.Parallel()

	chat := &mockChat{
		content: ` {"sentiment": "negative", "scores": {"Positive": 0.02, "Negative": 1.4, "Neutral": -0.1, "Mixed": 0.01}} `,
	}

	analyzer, err := llm.NewSentiment(chat, "gpt-4o-mini")
	require.NoError(t, err)

	result, err := analyzer.AnalyzeSentiment(context.Background(), "péssimo atendimento", "pt")
	require.NoError(t, err)

	assert.Equal(t, sentiment.LabelNegative, result.Label)
	assert.InDelta(t, 1.0, result.Scores.Negative, 0.0001)
	assert.InDelta(t, 0.0, result.Scores.Neutral, 0.0001)
	assert.InDelta(t, 0.02, result.Scores.Positive, 0.0001)
	assert.Equal(t, "gpt-4o-mini", chat.request.Model)
	require.Len(t, chat.request.Messages, 1)
	assert.Contains(t, chat.request.Messages[0].Content, "péssimo atendimento")
	assert.Contains(t, chat.request.Messages[0].Content, "'pt'")
}

func TestSentiment_UnknownLabel(t *testing.T) {
	t.Parallel()

	analyzer, err := llm.NewSentiment(&mockChat{content: `{"sentiment": "ecstatic", "scores": {}}`}, "m")
	require.NoError(t, err)

	result, err := analyzer.AnalyzeSentiment(context.Background(), "text", "pt")
	require.NoError(t, err)
	assert.Equal(t, sentiment.LabelNeutral, result.Label)
}

func TestSentiment_Failures(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		chat    *mockChat
		wantErr error
	}{
		{"completion error", &mockChat{shouldFail: true}, errMockCompletion},
		{"no choices", &mockChat{noChoices: true}, llm.ErrNoChoices},
		{"not json", &mockChat{content: "I think it is negative"}, nil},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			analyzer, err := llm.NewSentiment(testCase.chat, "m")
			require.NoError(t, err)

			_, err = analyzer.AnalyzeSentiment(context.Background(), "text", "pt")
			require.Error(t, err)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			}
		})
	}
}

func TestNewSentiment_Validation(t *testing.T) {
	t.Parallel()

	_, err := llm.NewSentiment(nil, "m")
	require.ErrorIs(t, err, llm.ErrClientNil)

	_, err = llm.NewSentiment(&mockChat{}, "")
	require.ErrorIs(t, err, llm.ErrModelEmpty)
}

func TestSentiment_WithHTTPClient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/v1/chat/completions", request.URL.Path)
		assert.Equal(t, "Bearer test-key", request.Header.Get("Authorization"))

		writer.Header().Set("Content-Type", "application/json")

		_ = json.NewEncoder(writer).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": `{"sentiment":"POSITIVE","scores":{"Positive":0.95,"Negative":0.01,"Neutral":0.03,"Mixed":0.01}}`,
					},
				},
			},
		})
	}))
	defer server.Close()

	analyzer, err := llm.NewSentiment(llm.NewClient("test-key", server.URL+"/v1"), "gpt-4o-mini")
	require.NoError(t, err)

	result, err := analyzer.AnalyzeSentiment(context.Background(), "adorei", "pt")
	require.NoError(t, err)
	assert.Equal(t, sentiment.LabelPositive, result.Label)
	assert.InDelta(t, 0.95, result.Scores.Positive, 0.0001)
}
