package envelope_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/book-expert/ai-router/internal/envelope"
	"github.com/book-expert/ai-router/internal/metrics"
	"github.com/book-expert/ai-router/internal/priority"
	"github.com/book-expert/ai-router/internal/sentiment"
	"github.com/book-expert/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errMockEnqueue = errors.New("mock enqueue error")
	errMockUpload  = errors.New("mock upload error")
)

type enqueuedMessage struct {
	queueID string
	payload []byte
}

// mockQueue is a mock implementation of the Queue interface.
type mockQueue struct {
	enqueueShouldFail bool
	messages          []enqueuedMessage
}

func (m *mockQueue) Enqueue(_ context.Context, queueID string, payload []byte) error {
	if m.enqueueShouldFail {
		return errMockEnqueue
	}

	m.messages = append(m.messages, enqueuedMessage{queueID: queueID, payload: payload})

	return nil
}

// mockObjectStore is a mock implementation of the ObjectStore interface.
type mockObjectStore struct {
	uploadShouldFail bool
	uploads          map[string][]byte
	contentTypes     map[string]string
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{
		uploadShouldFail: false,
		uploads:          make(map[string][]byte),
		contentTypes:     make(map[string]string),
	}
}

func (m *mockObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	return m.uploads[key], nil
}

func (m *mockObjectStore) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if m.uploadShouldFail {
		return errMockUpload
	}

	m.uploads[key] = data
	m.contentTypes[key] = contentType

	return nil
}

var fixedTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.FixedZone("BRT", -3*60*60))

func newTestAssembler(
	t *testing.T,
	queue *mockQueue,
	audit *mockObjectStore,
) (*envelope.Assembler, *metrics.Metrics) {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "test-log.log")
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())

	var assembler *envelope.Assembler
	if audit == nil {
		assembler, err = envelope.NewAssembler(queue, nil, m, testLogger,
			envelope.WithClock(func() time.Time { return fixedTime }))
	} else {
		assembler, err = envelope.NewAssembler(queue, audit, m, testLogger,
			envelope.WithClock(func() time.Time { return fixedTime }))
	}

	require.NoError(t, err)

	return assembler, m
}

var negativeResult = sentiment.Result{
	Label:  sentiment.LabelNegative,
	Scores: sentiment.Scores{Negative: 0.9, Positive: 0.01, Neutral: 0.05, Mixed: 0.04},
}

func TestAssembler_Assemble(t *testing.T) {
	t.Parallel()

	assembler, _ := newTestAssembler(t, &mockQueue{}, nil)

	env := assembler.Assemble(
		envelope.SourceMessage,
		envelope.Content{Message: "I hate this"},
		negativeResult,
		priority.TierHigh,
	)

	assert.NotEmpty(t, env.ID)
	assert.Equal(t, envelope.SourceMessage, env.Source)
	assert.Equal(t, "I hate this", env.Message)
	assert.Equal(t, sentiment.LabelNegative, env.Sentiment)
	assert.Equal(t, negativeResult.Scores, env.Scores)
	assert.Equal(t, priority.TierHigh, env.Priority)
	assert.Equal(t, time.UTC, env.Timestamp.Location())
	assert.True(t, fixedTime.Equal(env.Timestamp))
}

func TestAssembler_AssembleGivesFreshIDs(t *testing.T) {
	t.Parallel()

	assembler, _ := newTestAssembler(t, &mockQueue{}, nil)
	content := envelope.Content{Message: "same text"}

	first := assembler.Assemble(envelope.SourceMessage, content, negativeResult, priority.TierHigh)
	second := assembler.Assemble(envelope.SourceMessage, content, negativeResult, priority.TierHigh)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestAssembler_PublishEnqueuesAndAuditsSameRecord(t *testing.T) {
	t.Parallel()

	queue := &mockQueue{}
	audit := newMockObjectStore()
	assembler, _ := newTestAssembler(t, queue, audit)

	env := assembler.Assemble(
		envelope.SourceDocument,
		envelope.Content{Message: "scanned text", Bucket: "docs", Key: "uploads/documents/a.pdf"},
		negativeResult,
		priority.TierHigh,
	)

	err := assembler.Publish(context.Background(), env, "queue-high")
	require.NoError(t, err)

	require.Len(t, queue.messages, 1)
	assert.Equal(t, "queue-high", queue.messages[0].queueID)

	auditKey := "audit/documents/" + env.ID + ".json"
	require.Contains(t, audit.uploads, auditKey)
	assert.Equal(t, queue.messages[0].payload, audit.uploads[auditKey])
	assert.Equal(t, "application/json", audit.contentTypes[auditKey])

	var decoded map[string]any

	require.NoError(t, json.Unmarshal(queue.messages[0].payload, &decoded))
	assert.Equal(t, env.ID, decoded["id"])
	assert.Equal(t, "document", decoded["source"])
	assert.Equal(t, "HIGH", decoded["priority"])
	assert.Equal(t, "NEGATIVE", decoded["sentiment"])
	assert.Equal(t, "2025-03-14T12:26:53Z", decoded["timestamp"])
	assert.NotContains(t, decoded, "job_name")
}

func TestAssembler_PublishWithoutAudit(t *testing.T) {
	t.Parallel()

	queue := &mockQueue{}
	assembler, _ := newTestAssembler(t, queue, nil)
	assert.False(t, assembler.AuditEnabled())

	env := assembler.Assemble(envelope.SourceMessage, envelope.Content{Message: "ok"}, negativeResult, priority.TierHigh)

	require.NoError(t, assembler.Publish(context.Background(), env, "queue-high"))
	assert.Len(t, queue.messages, 1)
}

func TestAssembler_PublishEnqueueFailureSkipsAudit(t *testing.T) {
	t.Parallel()

	queue := &mockQueue{enqueueShouldFail: true}
	audit := newMockObjectStore()
	assembler, _ := newTestAssembler(t, queue, audit)

	env := assembler.Assemble(envelope.SourceMessage, envelope.Content{Message: "x"}, negativeResult, priority.TierHigh)

	err := assembler.Publish(context.Background(), env, "queue-high")
	require.ErrorIs(t, err, errMockEnqueue)
	assert.Empty(t, audit.uploads)
}

func TestAssembler_PublishAuditFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	queue := &mockQueue{}
	audit := newMockObjectStore()
	audit.uploadShouldFail = true
	assembler, m := newTestAssembler(t, queue, audit)

	env := assembler.Assemble(envelope.SourceMessage, envelope.Content{Message: "x"}, negativeResult, priority.TierHigh)

	require.NoError(t, assembler.Publish(context.Background(), env, "queue-high"))
	assert.Len(t, queue.messages, 1)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AuditFailures), 0)
}

func TestAssembler_PublishRequiresQueueID(t *testing.T) {
	t.Parallel()

	queue := &mockQueue{}
	assembler, _ := newTestAssembler(t, queue, nil)

	env := assembler.Assemble(envelope.SourceMessage, envelope.Content{Message: "x"}, negativeResult, priority.TierHigh)

	err := assembler.Publish(context.Background(), env, "")
	require.ErrorIs(t, err, envelope.ErrQueueIDEmpty)
	assert.Empty(t, queue.messages)
}

func TestAuditKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "audit/abc.json", envelope.AuditKey(envelope.Envelope{ID: "abc", Source: envelope.SourceMessage}))
	assert.Equal(t, "audit/documents/abc.json",
		envelope.AuditKey(envelope.Envelope{ID: "abc", Source: envelope.SourceDocument}))
	assert.Equal(t, "audit/audio/abc.json", envelope.AuditKey(envelope.Envelope{ID: "abc", Source: envelope.SourceAudio}))
}

func TestNewAssembler_RequiresQueue(t *testing.T) {
	t.Parallel()

	_, err := envelope.NewAssembler(nil, nil, nil, nil)
	require.ErrorIs(t, err, envelope.ErrQueueNil)
}
