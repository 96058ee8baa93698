// Package worker provides a NATS worker that answers router requests sent
// over request/reply.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/ai-router/internal/api"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	handleMessageTimeout = 30 * time.Second

	// QueueGroup spreads requests across every running router instance.
	QueueGroup = "ai-router"
	// HeaderRequestID optionally carries the caller's request id.
	HeaderRequestID = "X-Request-ID"
)

var (
	// ErrConnectionNil indicates that no NATS connection was supplied.
	ErrConnectionNil = errors.New("nats connection cannot be nil")
	// ErrSubjectEmpty indicates that the request subject is empty.
	ErrSubjectEmpty = errors.New("subject cannot be empty")
	// ErrDispatcherNil indicates that no dispatcher was supplied.
	ErrDispatcherNil = errors.New("dispatcher cannot be nil")
)

// Dispatcher handles transport-neutral requests.
type Dispatcher interface {
	Dispatch(ctx context.Context, req api.Request) api.Response
}

// NatsWorker listens for {path, method, body, query} requests on a subject
// and replies with the {statusCode, headers, body} response.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	dispatcher     Dispatcher
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	dispatcher Dispatcher,
	log *logger.Logger,
) (*NatsWorker, error) {
	if natsConnection == nil {
		return nil, ErrConnectionNil
	}

	if subject == "" {
		return nil, ErrSubjectEmpty
	}

	if dispatcher == nil {
		return nil, ErrDispatcherNil
	}

	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		dispatcher:     dispatcher,
		log:            log,
	}, nil
}

// Run starts the worker and answers requests until ctx is cancelled.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.QueueSubscribe(w.subject, QueueGroup, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	w.log.Info("NATS worker listening on %s", w.subject)

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	ctx = api.WithRequestID(ctx, requestID(msg))

	var response api.Response

	req, err := parseRequest(msg)
	if err != nil {
		w.log.Error("Request %s: %v", api.RequestIDFrom(ctx), err)

		response = api.InternalError()
	} else {
		response = w.dispatcher.Dispatch(ctx, req)
	}

	err = w.publishReply(msg, response)
	if err != nil {
		w.log.Error("Request %s: failed to reply on %s: %v", api.RequestIDFrom(ctx), msg.Reply, err)
	}
}

func parseRequest(msg *nats.Msg) (api.Request, error) {
	var req api.Request

	err := json.Unmarshal(msg.Data, &req)
	if err != nil {
		return api.Request{}, fmt.Errorf("failed to unmarshal request: %w", err)
	}

	return req, nil
}

// publishReply marshals and responds with the dispatcher response.
func (w *NatsWorker) publishReply(msg *nats.Msg, response api.Response) error {
	if msg.Reply == "" {
		return nil
	}

	replyData, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply: %w", err)
	}

	return nil
}

func requestID(msg *nats.Msg) string {
	if msg.Header != nil {
		if value := msg.Header.Get(HeaderRequestID); value != "" {
			return value
		}
	}

	return uuid.NewString()
}
