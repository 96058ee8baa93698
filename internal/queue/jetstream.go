package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// ErrNoSubjects is returned when a stream is requested without subjects.
var ErrNoSubjects = errors.New("at least one subject is required")

// JetStream publishes payloads to subjects captured by a single stream. The
// queue id is the subject.
type JetStream struct {
	js     jetstream.JetStream
	stream string
}

// NewJetStream creates or updates the stream that captures subjects.
func NewJetStream(ctx context.Context, js jetstream.JetStream, streamName string, subjects []string) (*JetStream, error) {
	if js == nil {
		return nil, ErrClientNil
	}

	if len(subjects) == 0 {
		return nil, ErrNoSubjects
	}

	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        streamName,
		Description: "Sentiment-prioritised envelopes.",
		Subjects:    subjects,
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.WorkQueuePolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stream '%s': %w", streamName, err)
	}

	return &JetStream{js: js, stream: streamName}, nil
}

// Enqueue publishes payload on subject and waits for the stream ack.
func (j *JetStream) Enqueue(ctx context.Context, subject string, payload []byte) error {
	_, err := j.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("failed to publish to '%s' on stream '%s': %w", subject, j.stream, err)
	}

	return nil
}
