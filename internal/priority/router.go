// Package priority maps sentiment scores onto a priority tier and the queue
// that serves it.
package priority

import (
	"errors"
	"fmt"

	"github.com/book-expert/ai-router/internal/sentiment"
)

// Tier is the priority classification of a routed request.
type Tier string

// Priority tiers.
const (
	TierHigh   Tier = "HIGH"
	TierNormal Tier = "NORMAL"
	TierLow    Tier = "LOW"
)

// DefaultThreshold is used for both thresholds when none is configured.
const DefaultThreshold = 0.7

var (
	// ErrThresholdRange indicates that a threshold is outside [0.0, 1.0].
	ErrThresholdRange = errors.New("threshold must be between 0.0 and 1.0")
	// ErrQueueEmpty indicates that a tier has no queue identifier.
	ErrQueueEmpty = errors.New("queue identifier cannot be empty")
)

// Thresholds are the inclusive score limits that trigger HIGH and LOW routing.
type Thresholds struct {
	Negative float64
	Positive float64
}

// DefaultThresholds returns the default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Negative: DefaultThreshold, Positive: DefaultThreshold}
}

// Queues holds one queue identifier per tier.
type Queues struct {
	High   string
	Normal string
	Low    string
}

// Router decides the tier and target queue for a score set.
type Router struct {
	thresholds Thresholds
	queues     Queues
}

// NewRouter validates the configuration and returns a Router.
func NewRouter(thresholds Thresholds, queues Queues) (*Router, error) {
	if thresholds.Negative < 0 || thresholds.Negative > 1 {
		return nil, fmt.Errorf("%w: negative threshold %f", ErrThresholdRange, thresholds.Negative)
	}

	if thresholds.Positive < 0 || thresholds.Positive > 1 {
		return nil, fmt.Errorf("%w: positive threshold %f", ErrThresholdRange, thresholds.Positive)
	}

	for tier, queue := range map[Tier]string{
		TierHigh:   queues.High,
		TierNormal: queues.Normal,
		TierLow:    queues.Low,
	} {
		if queue == "" {
			return nil, fmt.Errorf("%w: tier %s", ErrQueueEmpty, tier)
		}
	}

	return &Router{thresholds: thresholds, queues: queues}, nil
}

// Route returns the tier for scores and the queue serving that tier.
// The negative check runs first, so a text above both thresholds is HIGH.
func (r *Router) Route(scores sentiment.Scores) (Tier, string) {
	if scores.Negative >= r.thresholds.Negative {
		return TierHigh, r.queues.High
	}

	if scores.Positive >= r.thresholds.Positive {
		return TierLow, r.queues.Low
	}

	return TierNormal, r.queues.Normal
}

// QueueFor returns the queue identifier serving a tier.
func (r *Router) QueueFor(tier Tier) string {
	switch tier {
	case TierHigh:
		return r.queues.High
	case TierLow:
		return r.queues.Low
	default:
		return r.queues.Normal
	}
}
