package awsai

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/book-expert/ai-router/internal/sentiment"
)

// ComprehendAPI is the subset of the Comprehend client used here.
type ComprehendAPI interface {
	DetectSentiment(
		ctx context.Context,
		params *comprehend.DetectSentimentInput,
		optFns ...func(*comprehend.Options),
	) (*comprehend.DetectSentimentOutput, error)
}

// Comprehend implements core.SentimentAnalyzer.
type Comprehend struct {
	api ComprehendAPI
}

// NewComprehend wraps a Comprehend client.
func NewComprehend(api ComprehendAPI) (*Comprehend, error) {
	if api == nil {
		return nil, ErrClientNil
	}

	return &Comprehend{api: api}, nil
}

// AnalyzeSentiment classifies text. Missing scores are reported as zero.
func (c *Comprehend) AnalyzeSentiment(ctx context.Context, text, languageCode string) (sentiment.Result, error) {
	out, err := c.api.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		Text:         aws.String(text),
		LanguageCode: types.LanguageCode(languageCode),
	})
	if err != nil {
		return sentiment.Result{}, fmt.Errorf("failed to detect sentiment: %w", err)
	}

	result := sentiment.Result{
		Label:  sentiment.ParseLabel(string(out.Sentiment)),
		Scores: sentiment.Scores{},
	}

	if score := out.SentimentScore; score != nil {
		result.Scores = sentiment.Scores{
			Positive: float64(aws.ToFloat32(score.Positive)),
			Negative: float64(aws.ToFloat32(score.Negative)),
			Neutral:  float64(aws.ToFloat32(score.Neutral)),
			Mixed:    float64(aws.ToFloat32(score.Mixed)),
		}
	}

	return result, nil
}
