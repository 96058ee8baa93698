// Package sentiment defines the sentiment labels and score sets produced by the
// sentiment capability.
package sentiment

// Label is the provider-assigned overall sentiment of a text.
type Label string

// Sentiment labels.
const (
	LabelPositive Label = "POSITIVE"
	LabelNegative Label = "NEGATIVE"
	LabelNeutral  Label = "NEUTRAL"
	LabelMixed    Label = "MIXED"
)

// Friendly messages returned to callers, selected by label.
const (
	friendlyNegative = "Thanks for your message. It sounds negative, " +
		"so it was marked as high priority for faster attention."
	friendlyPositive = "Thanks for your message! It sounds positive, " +
		"so it was routed as low priority."
	friendlyNeutral = "Thanks for your message. It seems neutral, " +
		"so it was routed with normal priority."
)

// Scores holds the per-label probabilities as reported by the provider.
// They are not renormalised and need not sum to one. A score the provider
// did not report is zero.
type Scores struct {
	Positive float64 `json:"Positive"`
	Negative float64 `json:"Negative"`
	Neutral  float64 `json:"Neutral"`
	Mixed    float64 `json:"Mixed"`
}

// Result is the outcome of a single sentiment analysis call.
type Result struct {
	Label  Label
	Scores Scores
}

// ParseLabel maps a provider label onto a Label. Unknown values map to NEUTRAL.
func ParseLabel(value string) Label {
	switch Label(value) {
	case LabelPositive, LabelNegative, LabelNeutral, LabelMixed:
		return Label(value)
	default:
		return LabelNeutral
	}
}

// FriendlyMessage returns the caller-facing summary for a label. The phrasing
// follows the label, not the computed priority.
func FriendlyMessage(label Label) string {
	switch label {
	case LabelNegative:
		return friendlyNegative
	case LabelPositive:
		return friendlyPositive
	default:
		return friendlyNeutral
	}
}
