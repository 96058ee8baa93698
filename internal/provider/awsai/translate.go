package awsai

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/book-expert/ai-router/internal/core"
)

// TranslateAPI is the subset of the Translate client used here.
type TranslateAPI interface {
	TranslateText(
		ctx context.Context,
		params *translate.TranslateTextInput,
		optFns ...func(*translate.Options),
	) (*translate.TranslateTextOutput, error)
}

// Translate implements core.Translator.
type Translate struct {
	api TranslateAPI
}

// NewTranslate wraps a Translate client.
func NewTranslate(api TranslateAPI) (*Translate, error) {
	if api == nil {
		return nil, ErrClientNil
	}

	return &Translate{api: api}, nil
}

// Translate converts text. A source language of "auto" lets the service
// detect it; the detected code is returned in the result.
func (t *Translate) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (core.Translation, error) {
	out, err := t.api.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(sourceLanguage),
		TargetLanguageCode: aws.String(targetLanguage),
	})
	if err != nil {
		return core.Translation{}, fmt.Errorf("failed to translate text to '%s': %w", targetLanguage, err)
	}

	return core.Translation{
		Text:           aws.ToString(out.TranslatedText),
		SourceLanguage: aws.ToString(out.SourceLanguageCode),
		TargetLanguage: aws.ToString(out.TargetLanguageCode),
	}, nil
}
