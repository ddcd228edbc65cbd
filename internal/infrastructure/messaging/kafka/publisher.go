package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ChemRxn-Core/internal/domain/reaction"
	appErrors "github.com/turtacn/ChemRxn-Core/pkg/errors"
)

const (
	eventSource        = "chemrxn-core"
	eventSchemaVersion = "1"
)

// ─────────────────────────────────────────────────────────────────────────────
// EventPublisher
// ─────────────────────────────────────────────────────────────────────────────

// EventPublisher adapts the Producer to the reaction domain's publisher
// port.  Events are wrapped in an EventEnvelope and keyed by reaction ID, so
// all events of one reaction land on the same partition in order.
type EventPublisher struct {
	producer    *Producer
	topicPrefix string
}

// NewEventPublisher wires a producer with the configured topic prefix.
func NewEventPublisher(producer *Producer, topicPrefix string) *EventPublisher {
	return &EventPublisher{producer: producer, topicPrefix: topicPrefix}
}

// Publish serializes one domain event and sends it to its topic.
func (p *EventPublisher) Publish(ctx context.Context, event reaction.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal domain event")
	}

	envelope := EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     event.EventType(),
		Source:        eventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: eventSchemaVersion,
		Payload:       payload,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal event envelope")
	}

	return p.producer.Publish(ctx, &ProducerMessage{
		Topic: TopicFor(p.topicPrefix, event.EventType()),
		Key:   eventKey(event),
		Value: value,
	})
}

// eventKey extracts the partitioning key, the reaction's ID.
func eventKey(event reaction.DomainEvent) []byte {
	switch e := event.(type) {
	case reaction.ReactionCreatedEvent:
		return []byte(e.ReactionID)
	case reaction.MultiplicityAssumedEvent:
		return []byte(e.ReactionID)
	case reaction.BalanceFailedEvent:
		return []byte(e.ReactionID)
	case reaction.AtomMapComputedEvent:
		return []byte(e.ReactionID)
	default:
		return nil
	}
}
