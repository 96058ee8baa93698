package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/book-expert/ai-router/internal/apperr"
	"github.com/book-expert/ai-router/internal/core"
	"github.com/book-expert/ai-router/internal/storagekey"
)

const (
	fieldVoice   = "voice"
	queryJobName = "job_name"

	capabilityTranscribe = "transcribe"
	capabilitySpeech     = "speech"
	capabilityStorage    = "storage"

	contentTypeMP3 = "audio/mpeg"

	msgMissingJobName = "Missing 'job_name' query parameter"
	msgBadMediaFormat = "Unsupported or missing media format in 'key'"
)

var errEmptyAudio = errors.New("synthesizer returned no audio")

type transcriptionStartResponse struct {
	JobName string `json:"job_name"`
	Status  string `json:"status"`
}

type transcriptionStatusResponse struct {
	JobName       string `json:"job_name"`
	Status        string `json:"status"`
	TranscriptURI string `json:"transcript_uri,omitempty"`
}

type speechResponse struct {
	AudioURL  string `json:"audio_url"`
	ExpiresIn int    `json:"expires_in"`
}

// handleTranscriptionStart starts an asynchronous job and returns without
// waiting for it. The provider is the only holder of job state.
func (d *Dispatcher) handleTranscriptionStart(ctx context.Context, req Request) (any, error) {
	body, err := decodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	bucket, err := body.requireString(fieldBucket)
	if err != nil {
		return nil, err
	}

	key, err := body.requireString(fieldKey)
	if err != nil {
		return nil, err
	}

	mediaFormat, err := storagekey.MediaFormat(key)
	if err != nil {
		return nil, apperr.Validation(msgBadMediaFormat)
	}

	if d.deps.Transcriber == nil {
		return nil, apperr.Internal(fmt.Errorf("%w: %s", ErrCapabilityUnavailable, capabilityTranscribe))
	}

	jobName := storagekey.TranscriptionJobName()

	err = d.deps.Transcriber.StartTranscription(ctx, core.TranscriptionJob{
		Name:         jobName,
		MediaURI:     storagekey.S3URI(bucket, key),
		MediaFormat:  mediaFormat,
		LanguageCode: d.settings.TranscribeLanguageCode,
		OutputBucket: bucket,
		OutputKey:    storagekey.TranscriptionOutputKey(jobName),
	})
	if err != nil {
		return nil, apperr.Provider(capabilityTranscribe, err)
	}

	d.deps.Log.Info("Started transcription job %s for %s", jobName, storagekey.S3URI(bucket, key))

	return transcriptionStartResponse{JobName: jobName, Status: core.TranscriptionInProgress}, nil
}

func (d *Dispatcher) handleTranscriptionStatus(ctx context.Context, req Request) (any, error) {
	jobName := req.Query[queryJobName]
	if jobName == "" {
		return nil, apperr.Validation(msgMissingJobName)
	}

	if d.deps.Transcriber == nil {
		return nil, apperr.Internal(fmt.Errorf("%w: %s", ErrCapabilityUnavailable, capabilityTranscribe))
	}

	status, err := d.deps.Transcriber.TranscriptionStatus(ctx, jobName)
	if err != nil {
		return nil, apperr.Provider(capabilityTranscribe, err)
	}

	response := transcriptionStatusResponse{JobName: jobName, Status: status.Status}
	if status.Status == core.TranscriptionCompleted {
		response.TranscriptURI = status.TranscriptURI
	}

	return response, nil
}

// handleSpeechSynthesize stores the audio and returns a download URL; audio
// is never returned inline.
func (d *Dispatcher) handleSpeechSynthesize(ctx context.Context, req Request) (any, error) {
	body, err := decodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	inputText, err := body.requireString(fieldText)
	if err != nil {
		return nil, err
	}

	voice := body.optionalString(fieldVoice, d.settings.VoiceID)

	err = d.requireStorage()
	if err != nil {
		return nil, err
	}

	if d.deps.Speech == nil || d.deps.Documents == nil {
		return nil, apperr.Internal(fmt.Errorf("%w: %s", ErrCapabilityUnavailable, capabilitySpeech))
	}

	audio, err := d.deps.Speech.SynthesizeSpeech(ctx, inputText, voice, d.settings.SpeechLanguageCode)
	if err != nil {
		return nil, apperr.Provider(capabilitySpeech, err)
	}

	if len(audio) == 0 {
		return nil, apperr.Provider(capabilitySpeech, errEmptyAudio)
	}

	key := storagekey.SpeechKey()

	err = d.deps.Documents.Upload(ctx, key, audio, contentTypeMP3)
	if err != nil {
		return nil, apperr.Provider(capabilityStorage, err)
	}

	url, err := d.deps.Signer.PresignDownload(ctx, key, SpeechDownloadTTL)
	if err != nil {
		return nil, apperr.Provider(capabilityPresign, err)
	}

	return speechResponse{AudioURL: url, ExpiresIn: int(SpeechDownloadTTL.Seconds())}, nil
}
