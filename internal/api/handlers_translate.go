package api

import (
	"context"
	"fmt"

	"github.com/book-expert/ai-router/internal/apperr"
)

const (
	fieldText           = "text"
	fieldSourceLanguage = "source_language"
	fieldTargetLanguage = "target_language"

	capabilityTranslate = "translate"
	autoDetectLanguage  = "auto"
)

type translateResponse struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// handleTranslate is a stateless passthrough: nothing is routed, queued or audited.
func (d *Dispatcher) handleTranslate(ctx context.Context, req Request) (any, error) {
	body, err := decodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	inputText, err := body.requireString(fieldText)
	if err != nil {
		return nil, err
	}

	targetLanguage, err := body.requireString(fieldTargetLanguage)
	if err != nil {
		return nil, err
	}

	sourceLanguage := body.optionalString(fieldSourceLanguage, autoDetectLanguage)

	if d.deps.Translator == nil {
		return nil, apperr.Internal(fmt.Errorf("%w: %s", ErrCapabilityUnavailable, capabilityTranslate))
	}

	translation, err := d.deps.Translator.Translate(ctx, inputText, sourceLanguage, targetLanguage)
	if err != nil {
		return nil, apperr.Provider(capabilityTranslate, err)
	}

	return translateResponse{
		OriginalText:   inputText,
		TranslatedText: translation.Text,
		SourceLanguage: translation.SourceLanguage,
		TargetLanguage: translation.TargetLanguage,
	}, nil
}
