package api

import (
	"context"
	"fmt"
	"time"

	"github.com/book-expert/ai-router/internal/apperr"
	"github.com/book-expert/ai-router/internal/envelope"
	"github.com/book-expert/ai-router/internal/priority"
	"github.com/book-expert/ai-router/internal/sentiment"
	"github.com/book-expert/ai-router/internal/storagekey"
	"github.com/book-expert/ai-router/internal/text"
)

const (
	fieldFileName    = "file_name"
	fieldContentType = "content_type"
	fieldBucket      = "bucket"
	fieldKey         = "key"

	capabilityOCR     = "ocr"
	capabilityPresign = "presign"

	msgNoTextDetected = "No text detected in the document"
)

type uploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

type documentResponse struct {
	ID          string           `json:"id"`
	Sentiment   sentiment.Label  `json:"sentiment"`
	Priority    priority.Tier    `json:"priority"`
	Scores      sentiment.Scores `json:"scores"`
	TextPreview string           `json:"text_preview"`
}

func (d *Dispatcher) handleDocumentUploadURL(ctx context.Context, req Request) (any, error) {
	body, err := decodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	fileName, err := body.requireString(fieldFileName)
	if err != nil {
		return nil, err
	}

	contentType, err := body.requireString(fieldContentType)
	if err != nil {
		return nil, err
	}

	return d.issueUploadURL(ctx, storagekey.PrefixDocumentUploads, fileName, contentType, DocumentUploadTTL)
}

func (d *Dispatcher) handleAudioUploadURL(ctx context.Context, req Request) (any, error) {
	body, err := decodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	fileName, err := body.requireString(fieldFileName)
	if err != nil {
		return nil, err
	}

	contentType := body.optionalString(fieldContentType, "")

	return d.issueUploadURL(ctx, storagekey.PrefixAudioUploads, fileName, contentType, AudioUploadTTL)
}

// issueUploadURL signs a PUT for a fresh key under prefix in the documents bucket.
func (d *Dispatcher) issueUploadURL(
	ctx context.Context,
	prefix, fileName, contentType string,
	ttl time.Duration,
) (uploadURLResponse, error) {
	err := d.requireStorage()
	if err != nil {
		return uploadURLResponse{}, err
	}

	key := storagekey.UploadKey(prefix, fileName)

	url, err := d.deps.Signer.PresignUpload(ctx, key, contentType, ttl)
	if err != nil {
		return uploadURLResponse{}, apperr.Provider(capabilityPresign, err)
	}

	return uploadURLResponse{
		UploadURL: url,
		Bucket:    d.settings.DocumentsBucket,
		Key:       key,
		ExpiresIn: int(ttl.Seconds()),
	}, nil
}

func (d *Dispatcher) handleDocumentProcess(ctx context.Context, req Request) (any, error) {
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

	if d.deps.Extractor == nil {
		return nil, apperr.Internal(fmt.Errorf("%w: %s", ErrCapabilityUnavailable, capabilityOCR))
	}

	blocks, err := d.deps.Extractor.ExtractBlocks(ctx, bucket, key)
	if err != nil {
		return nil, apperr.Provider(capabilityOCR, err)
	}

	extracted := text.JoinLines(blocks)
	if text.IsBlank(extracted) {
		return nil, apperr.Validation(msgNoTextDetected)
	}

	result, err := d.analyze(ctx, text.Truncate(extracted, text.MaxAnalysisChars))
	if err != nil {
		return nil, err
	}

	env, err := d.routeAndPublish(ctx, envelope.SourceDocument, envelope.Content{
		Message: extracted,
		Bucket:  bucket,
		Key:     key,
	}, result)
	if err != nil {
		return nil, err
	}

	return documentResponse{
		ID:          env.ID,
		Sentiment:   env.Sentiment,
		Priority:    env.Priority,
		Scores:      env.Scores,
		TextPreview: text.Truncate(extracted, text.PreviewChars),
	}, nil
}

// requireStorage fails storage-backed routes when no documents bucket is configured.
func (d *Dispatcher) requireStorage() error {
	if d.settings.DocumentsBucket == "" {
		return apperr.Internal(ErrDocumentsBucketUnset)
	}

	if d.deps.Signer == nil {
		return apperr.Internal(fmt.Errorf("%w: %s", ErrCapabilityUnavailable, capabilityPresign))
	}

	return nil
}
