package awsai

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
)

// PollyAPI is the subset of the Polly client used here.
type PollyAPI interface {
	SynthesizeSpeech(
		ctx context.Context,
		params *polly.SynthesizeSpeechInput,
		optFns ...func(*polly.Options),
	) (*polly.SynthesizeSpeechOutput, error)
}

// Polly implements core.SpeechSynthesizer producing MP3 audio.
type Polly struct {
	api PollyAPI
}

// NewPolly wraps a Polly client.
func NewPolly(api PollyAPI) (*Polly, error) {
	if api == nil {
		return nil, ErrClientNil
	}

	return &Polly{api: api}, nil
}

// SynthesizeSpeech returns the full MP3 stream for text.
func (p *Polly) SynthesizeSpeech(ctx context.Context, text, voice, languageCode string) ([]byte, error) {
	out, err := p.api.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		OutputFormat: types.OutputFormatMp3,
		VoiceId:      types.VoiceId(voice),
		LanguageCode: types.LanguageCode(languageCode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech with voice '%s': %w", voice, err)
	}

	if out.AudioStream == nil {
		return nil, nil
	}

	audio, readErr := io.ReadAll(out.AudioStream)
	closeErr := out.AudioStream.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read audio stream: %w", readErr)
	}

	if closeErr != nil {
		return audio, fmt.Errorf("failed to close audio stream: %w", closeErr)
	}

	return audio, nil
}
