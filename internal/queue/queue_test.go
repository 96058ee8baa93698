package queue_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/book-expert/ai-router/internal/queue"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMockSend = errors.New("mock send error")

type mockSQS struct {
	sendShouldFail bool
	inputs         []*sqs.SendMessageInput
}

func (m *mockSQS) SendMessage(
	_ context.Context,
	params *sqs.SendMessageInput,
	_ ...func(*sqs.Options),
) (*sqs.SendMessageOutput, error) {
	if m.sendShouldFail {
		return nil, errMockSend
	}

	m.inputs = append(m.inputs, params)

	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSQS_Enqueue(t *testing.T) {
	t.Parallel()

	api := &mockSQS{}

	backend, err := queue.NewSQS(api)
	require.NoError(t, err)

	err = backend.Enqueue(context.Background(), "https://sqs.example/high", []byte(`{"id":"1"}`))
	require.NoError(t, err)

	require.Len(t, api.inputs, 1)
	assert.Equal(t, "https://sqs.example/high", aws.ToString(api.inputs[0].QueueUrl))
	assert.JSONEq(t, `{"id":"1"}`, aws.ToString(api.inputs[0].MessageBody))
}

func TestSQS_EnqueueFailure(t *testing.T) {
	t.Parallel()

	backend, err := queue.NewSQS(&mockSQS{sendShouldFail: true})
	require.NoError(t, err)

	err = backend.Enqueue(context.Background(), "https://sqs.example/high", []byte("{}"))
	require.ErrorIs(t, err, errMockSend)
	assert.Contains(t, err.Error(), "https://sqs.example/high")
}

func TestNewSQS_NilClient(t *testing.T) {
	t.Parallel()

	_, err := queue.NewSQS(nil)
	require.ErrorIs(t, err, queue.ErrClientNil)
}

func startJetStream(t *testing.T) jetstream.JetStream {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	natsServer := test.RunServer(&opts)
	t.Cleanup(natsServer.Shutdown)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	require.NoError(t, err)
	t.Cleanup(natsConnection.Close)

	js, err := jetstream.New(natsConnection)
	require.NoError(t, err)

	return js
}

func TestJetStream_Enqueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	js := startJetStream(t)
	subjects := []string{"priority.high", "priority.normal", "priority.low"}

	backend, err := queue.NewJetStream(ctx, js, "PRIORITY", subjects)
	require.NoError(t, err)

	err = backend.Enqueue(ctx, "priority.high", []byte(`{"priority":"HIGH"}`))
	require.NoError(t, err)

	err = backend.Enqueue(ctx, "priority.low", []byte(`{"priority":"LOW"}`))
	require.NoError(t, err)

	stream, err := js.Stream(ctx, "PRIORITY")
	require.NoError(t, err)

	high, err := stream.GetLastMsgForSubject(ctx, "priority.high")
	require.NoError(t, err)
	assert.JSONEq(t, `{"priority":"HIGH"}`, string(high.Data))

	low, err := stream.GetLastMsgForSubject(ctx, "priority.low")
	require.NoError(t, err)
	assert.JSONEq(t, `{"priority":"LOW"}`, string(low.Data))

	_, err = stream.GetLastMsgForSubject(ctx, "priority.normal")
	require.Error(t, err)
}

func TestJetStream_EnqueueUnknownSubject(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	js := startJetStream(t)

	backend, err := queue.NewJetStream(ctx, js, "PRIORITY", []string{"priority.high"})
	require.NoError(t, err)

	err = backend.Enqueue(ctx, "elsewhere", []byte("{}"))
	require.Error(t, err)
}

func TestNewJetStream_Validation(t *testing.T) {
	t.Parallel()

	_, err := queue.NewJetStream(context.Background(), nil, "PRIORITY", []string{"a"})
	require.ErrorIs(t, err, queue.ErrClientNil)

	_, err = queue.NewJetStream(context.Background(), startJetStream(t), "PRIORITY", nil)
	require.ErrorIs(t, err, queue.ErrNoSubjects)
}
