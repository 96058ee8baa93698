package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	// ErrClientNil is returned when a store is built without a client.
	ErrClientNil = errors.New("s3 client cannot be nil")
	// ErrBucketEmpty is returned when a store is built without a bucket.
	ErrBucketEmpty = errors.New("bucket name cannot be empty")
)

// S3API is the subset of the S3 client used here.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// PresignAPI is the subset of the S3 presign client used here.
type PresignAPI interface {
	PresignPutObject(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(
		ctx context.Context,
		params *s3.GetObjectInput,
		optFns ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error)
}

// S3Store implements core.ObjectStore for a single bucket.
type S3Store struct {
	api    S3API
	bucket string
}

// NewS3 creates a store bound to bucket.
func NewS3(api S3API, bucket string) (*S3Store, error) {
	if api == nil {
		return nil, ErrClientNil
	}

	if bucket == "" {
		return nil, ErrBucketEmpty
	}

	return &S3Store{api: api, bucket: bucket}, nil
}

// Download retrieves an object.
func (s *S3Store) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object '%s' from bucket '%s': %w", key, s.bucket, err)
	}

	data, readErr := io.ReadAll(out.Body)
	closeErr := out.Body.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read object '%s': %w", key, readErr)
	}

	if closeErr != nil {
		return data, fmt.Errorf("failed to close object '%s': %w", key, closeErr)
	}

	return data, nil
}

// Upload writes an object with the given content type.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	_, err := s.api.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to put object '%s' to bucket '%s': %w", key, s.bucket, err)
	}

	return nil
}

// Presigner implements core.URLSigner for a single bucket.
type Presigner struct {
	api    PresignAPI
	bucket string
}

// NewPresigner creates a signer bound to bucket.
func NewPresigner(api PresignAPI, bucket string) (*Presigner, error) {
	if api == nil {
		return nil, ErrClientNil
	}

	if bucket == "" {
		return nil, ErrBucketEmpty
	}

	return &Presigner{api: api, bucket: bucket}, nil
}

// PresignUpload returns a PUT URL. A non-empty content type is part of the
// signature, so the uploader must send the same header.
func (p *Presigner) PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := p.api.PresignPutObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for '%s': %w", key, err)
	}

	return req.URL, nil
}

// PresignDownload returns a GET URL.
func (p *Presigner) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := p.api.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign download for '%s': %w", key, err)
	}

	return req.URL, nil
}
