// Package queue provides the priority queue backends: Amazon SQS and NATS
// JetStream. Both implement core.Queue.
package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// ErrClientNil is returned when a backend is built without a client.
var ErrClientNil = errors.New("queue client cannot be nil")

// SQSAPI is the subset of the SQS client used here.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQS sends each payload as one message to the queue URL given as queue id.
type SQS struct {
	api SQSAPI
}

// NewSQS wraps an SQS client.
func NewSQS(api SQSAPI) (*SQS, error) {
	if api == nil {
		return nil, ErrClientNil
	}

	return &SQS{api: api}, nil
}

// Enqueue sends payload to the queue at queueURL.
func (s *SQS) Enqueue(ctx context.Context, queueURL string, payload []byte) error {
	_, err := s.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to '%s': %w", queueURL, err)
	}

	return nil
}
