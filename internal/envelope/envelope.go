// Package envelope builds the canonical record emitted for every routed
// request and hands it to the priority queue and the optional audit store.
package envelope

import (
	"time"

	"github.com/book-expert/ai-router/internal/priority"
	"github.com/book-expert/ai-router/internal/sentiment"
)

// Source identifies what kind of input produced an Envelope.
type Source string

// Envelope sources.
const (
	SourceMessage  Source = "message"
	SourceDocument Source = "document"
	SourceAudio    Source = "audio"
)

// Audit key prefixes, one per source.
const (
	auditPrefixMessage  = "audit/"
	auditPrefixDocument = "audit/documents/"
	auditPrefixAudio    = "audit/audio/"
	auditKeySuffix      = ".json"
)

// Content carries the source-specific fields of an Envelope. Only the fields
// relevant to the source are set.
type Content struct {
	Message string
	Bucket  string
	Key     string
	JobName string
}

// Envelope is the record enqueued for one successfully handled request.
// It is not modified after Assemble returns it.
type Envelope struct {
	ID        string           `json:"id"`
	Source    Source           `json:"source"`
	Message   string           `json:"message,omitempty"`
	Bucket    string           `json:"bucket,omitempty"`
	Key       string           `json:"key,omitempty"`
	JobName   string           `json:"job_name,omitempty"`
	Sentiment sentiment.Label  `json:"sentiment"`
	Scores    sentiment.Scores `json:"scores"`
	Priority  priority.Tier    `json:"priority"`
	Timestamp time.Time        `json:"timestamp"`
}

// AuditKey returns the object key under which the audit copy of env is stored.
func AuditKey(env Envelope) string {
	switch env.Source {
	case SourceDocument:
		return auditPrefixDocument + env.ID + auditKeySuffix
	case SourceAudio:
		return auditPrefixAudio + env.ID + auditKeySuffix
	default:
		return auditPrefixMessage + env.ID + auditKeySuffix
	}
}
