package awsai

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/book-expert/ai-router/internal/core"
)

// TextractAPI is the subset of the Textract client used here.
type TextractAPI interface {
	DetectDocumentText(
		ctx context.Context,
		params *textract.DetectDocumentTextInput,
		optFns ...func(*textract.Options),
	) (*textract.DetectDocumentTextOutput, error)
}

// Textract implements core.TextExtractor with synchronous text detection.
type Textract struct {
	api TextractAPI
}

// NewTextract wraps a Textract client.
func NewTextract(api TextractAPI) (*Textract, error) {
	if api == nil {
		return nil, ErrClientNil
	}

	return &Textract{api: api}, nil
}

// ExtractBlocks runs OCR over an object in S3 and returns blocks in
// provider order.
func (t *Textract) ExtractBlocks(ctx context.Context, bucket, key string) ([]core.TextBlock, error) {
	out, err := t.api.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect text in s3://%s/%s: %w", bucket, key, err)
	}

	blocks := make([]core.TextBlock, 0, len(out.Blocks))
	for _, block := range out.Blocks {
		blocks = append(blocks, core.TextBlock{
			Type: string(block.BlockType),
			Text: aws.ToString(block.Text),
		})
	}

	return blocks, nil
}
