package awsai

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/book-expert/ai-router/internal/core"
)

// ErrJobMissing is returned when the service answers without a job.
var ErrJobMissing = errors.New("transcription job missing from response")

// TranscribeAPI is the subset of the Transcribe client used here.
type TranscribeAPI interface {
	StartTranscriptionJob(
		ctx context.Context,
		params *transcribe.StartTranscriptionJobInput,
		optFns ...func(*transcribe.Options),
	) (*transcribe.StartTranscriptionJobOutput, error)
	GetTranscriptionJob(
		ctx context.Context,
		params *transcribe.GetTranscriptionJobInput,
		optFns ...func(*transcribe.Options),
	) (*transcribe.GetTranscriptionJobOutput, error)
}

// Transcribe implements core.Transcriber.
type Transcribe struct {
	api TranscribeAPI
}

// NewTranscribe wraps a Transcribe client.
func NewTranscribe(api TranscribeAPI) (*Transcribe, error) {
	if api == nil {
		return nil, ErrClientNil
	}

	return &Transcribe{api: api}, nil
}

// StartTranscription submits an asynchronous job. The transcript is written
// by the service to job.OutputBucket/job.OutputKey.
func (t *Transcribe) StartTranscription(ctx context.Context, job core.TranscriptionJob) error {
	_, err := t.api.StartTranscriptionJob(ctx, &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(job.Name),
		Media:                &types.Media{MediaFileUri: aws.String(job.MediaURI)},
		MediaFormat:          types.MediaFormat(job.MediaFormat),
		LanguageCode:         types.LanguageCode(job.LanguageCode),
		OutputBucketName:     aws.String(job.OutputBucket),
		OutputKey:            aws.String(job.OutputKey),
	})
	if err != nil {
		return fmt.Errorf("failed to start transcription job '%s': %w", job.Name, err)
	}

	return nil
}

// TranscriptionStatus reports the provider-side state of a job.
func (t *Transcribe) TranscriptionStatus(ctx context.Context, jobName string) (core.TranscriptionStatus, error) {
	out, err := t.api.GetTranscriptionJob(ctx, &transcribe.GetTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
	})
	if err != nil {
		return core.TranscriptionStatus{}, fmt.Errorf("failed to get transcription job '%s': %w", jobName, err)
	}

	if out.TranscriptionJob == nil {
		return core.TranscriptionStatus{}, fmt.Errorf("%w: %s", ErrJobMissing, jobName)
	}

	status := core.TranscriptionStatus{
		Status:        string(out.TranscriptionJob.TranscriptionJobStatus),
		TranscriptURI: "",
	}

	if transcript := out.TranscriptionJob.Transcript; transcript != nil {
		status.TranscriptURI = aws.ToString(transcript.TranscriptFileUri)
	}

	return status, nil
}
