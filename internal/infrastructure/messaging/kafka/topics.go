// Package kafka publishes reaction domain events to Kafka.
package kafka

import (
	"encoding/json"
	"strings"
	"time"
)

// Topic Constants
const (
	TopicReactionCreated     = "reaction.created"
	TopicMultiplicityAssumed = "reaction.multiplicity_assumed"
	TopicBalanceFailed       = "reaction.balance_failed"
	TopicAtomMapComputed     = "reaction.atom_map_computed"

	// defaultTopicSegment is the leading topic segment that a configured
	// prefix replaces, so deployments can namespace topics per environment.
	defaultTopicSegment = "reaction"
)

// EventEnvelope standardizes event messages on the wire.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// TopicFor maps a domain event type onto its topic name.  The event type's
// leading "reaction" segment is swapped for the configured prefix; an empty
// prefix keeps the canonical names.
func TopicFor(prefix, eventType string) string {
	if prefix == "" || prefix == defaultTopicSegment {
		return eventType
	}
	return prefix + strings.TrimPrefix(eventType, defaultTopicSegment)
}
