// Package awsai implements the router's AI capabilities on AWS managed
// services: Comprehend, Translate, Textract, Transcribe and Polly.
package awsai

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// ErrClientNil is returned when an adapter is built without an SDK client.
var ErrClientNil = errors.New("aws client cannot be nil")

// LoadConfig resolves credentials and region through the default AWS chain.
// An empty region leaves the chain's own resolution in place.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws configuration: %w", err)
	}

	return cfg, nil
}
