package envelope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/ai-router/internal/core"
	"github.com/book-expert/ai-router/internal/metrics"
	"github.com/book-expert/ai-router/internal/priority"
	"github.com/book-expert/ai-router/internal/sentiment"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
)

const contentTypeJSON = "application/json"

var (
	// ErrQueueNil indicates that no queue was supplied.
	ErrQueueNil = errors.New("queue cannot be nil")
	// ErrQueueIDEmpty indicates that an envelope was published without a target queue.
	ErrQueueIDEmpty = errors.New("queue identifier cannot be empty")
)

// Option customises an Assembler.
type Option func(*Assembler)

// WithClock overrides the time source used for envelope timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithIDGenerator overrides the envelope id generator.
func WithIDGenerator(newID func() string) Option {
	return func(a *Assembler) {
		a.newID = newID
	}
}

// Assembler builds envelopes, enqueues them and mirrors them to the audit store.
type Assembler struct {
	queue   core.Queue
	audit   core.ObjectStore
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
	newID   func() string
}

// NewAssembler creates an Assembler. A nil audit store disables auditing.
func NewAssembler(
	queue core.Queue,
	audit core.ObjectStore,
	m *metrics.Metrics,
	log *logger.Logger,
	opts ...Option,
) (*Assembler, error) {
	if queue == nil {
		return nil, ErrQueueNil
	}

	assembler := &Assembler{
		queue:   queue,
		audit:   audit,
		metrics: m,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(assembler)
	}

	return assembler, nil
}

// AuditEnabled reports whether envelopes are mirrored to an audit store.
func (a *Assembler) AuditEnabled() bool {
	return a.audit != nil
}

// Assemble builds a new Envelope with a fresh id and the current UTC time.
func (a *Assembler) Assemble(
	source Source,
	content Content,
	result sentiment.Result,
	tier priority.Tier,
) Envelope {
	return Envelope{
		ID:        a.newID(),
		Source:    source,
		Message:   content.Message,
		Bucket:    content.Bucket,
		Key:       content.Key,
		JobName:   content.JobName,
		Sentiment: result.Label,
		Scores:    result.Scores,
		Priority:  tier,
		Timestamp: a.now().UTC(),
	}
}

// Publish enqueues env on queueID and then audits it. The enqueued and the
// audited bytes are the same encoding. Only the enqueue can fail the call.
func (a *Assembler) Publish(ctx context.Context, env Envelope, queueID string) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope %s: %w", env.ID, err)
	}

	err = a.dispatch(ctx, env.ID, queueID, payload)
	if err != nil {
		return err
	}

	a.auditIfEnabled(ctx, env, payload)

	return nil
}

func (a *Assembler) dispatch(ctx context.Context, id, queueID string, payload []byte) error {
	if queueID == "" {
		return fmt.Errorf("%w: envelope %s", ErrQueueIDEmpty, id)
	}

	err := a.queue.Enqueue(ctx, queueID, payload)
	if err != nil {
		return fmt.Errorf("failed to enqueue envelope %s to '%s': %w", id, queueID, err)
	}

	return nil
}

// auditIfEnabled writes the audit copy. Failures are logged and counted; the
// envelope has already been enqueued at this point.
func (a *Assembler) auditIfEnabled(ctx context.Context, env Envelope, payload []byte) {
	if a.audit == nil {
		return
	}

	key := AuditKey(env)

	err := a.audit.Upload(ctx, key, payload, contentTypeJSON)
	if err != nil {
		a.metrics.AuditFailures.Inc()
		a.log.Error("Failed to write audit copy '%s' for envelope %s: %v", key, env.ID, err)
	}
}
