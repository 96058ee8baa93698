package api

import (
	"context"
	"fmt"

	"github.com/book-expert/ai-router/internal/apperr"
	"github.com/book-expert/ai-router/internal/envelope"
	"github.com/book-expert/ai-router/internal/priority"
	"github.com/book-expert/ai-router/internal/sentiment"
)

const (
	fieldMessage = "message"

	capabilitySentiment = "sentiment"
	capabilityQueue     = "queue"
)

type messageSummary struct {
	Sentiment sentiment.Label `json:"sentiment"`
	Priority  priority.Tier   `json:"priority"`
	Message   string          `json:"message"`
}

type messageResponse struct {
	Summary messageSummary    `json:"summary"`
	Data    envelope.Envelope `json:"data"`
}

func (d *Dispatcher) handleMessage(ctx context.Context, req Request) (any, error) {
	body, err := decodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	message, err := body.requireString(fieldMessage)
	if err != nil {
		return nil, err
	}

	result, err := d.analyze(ctx, message)
	if err != nil {
		return nil, err
	}

	env, err := d.routeAndPublish(ctx, envelope.SourceMessage, envelope.Content{Message: message}, result)
	if err != nil {
		return nil, err
	}

	return messageResponse{
		Summary: messageSummary{
			Sentiment: env.Sentiment,
			Priority:  env.Priority,
			Message:   sentiment.FriendlyMessage(env.Sentiment),
		},
		Data: env,
	}, nil
}

// analyze runs the sentiment capability with the configured language.
func (d *Dispatcher) analyze(ctx context.Context, text string) (sentiment.Result, error) {
	if d.deps.Sentiment == nil {
		return sentiment.Result{}, apperr.Internal(fmt.Errorf("%w: %s", ErrCapabilityUnavailable, capabilitySentiment))
	}

	result, err := d.deps.Sentiment.AnalyzeSentiment(ctx, text, d.settings.LanguageCode)
	if err != nil {
		return sentiment.Result{}, apperr.Provider(capabilitySentiment, err)
	}

	return result, nil
}

// routeAndPublish is shared by every sentiment-bearing handler: it picks the
// tier, builds the envelope and hands it to the queue and audit store.
func (d *Dispatcher) routeAndPublish(
	ctx context.Context,
	source envelope.Source,
	content envelope.Content,
	result sentiment.Result,
) (envelope.Envelope, error) {
	tier, queueID := d.deps.Router.Route(result.Scores)
	d.deps.Metrics.RoutingDecisions.WithLabelValues(string(tier)).Inc()

	env := d.deps.Assembler.Assemble(source, content, result, tier)

	err := d.deps.Assembler.Publish(ctx, env, queueID)
	if err != nil {
		return envelope.Envelope{}, apperr.Provider(capabilityQueue, err)
	}

	d.deps.Log.Info("Routed %s envelope %s as %s", source, env.ID, tier)

	return env, nil
}
