package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type EventType string

const (
	EventItemCreated   EventType = "item.created"
	EventItemUpdated   EventType = "item.updated"
	EventItemDeleted   EventType = "item.deleted"
	EventItemCommented EventType = "item.commented"
	EventItemRated     EventType = "item.rated"
)

// Event describes one mutation of an item. ActorID is empty for
// unauthenticated interactions.
type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	ItemID     string          `json:"item_id"`
	ActorID    string          `json:"actor_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewEvent(eventType EventType, itemID, actorID string, payload interface{}) Event {
	evt := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ItemID:     itemID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			logrus.WithError(err).WithField("event_type", eventType).Warn("Dropping unserializable event payload")
		} else {
			evt.Payload = data
		}
	}

	return evt
}

func (t EventType) Valid() bool {
	switch t {
	case EventItemCreated, EventItemUpdated, EventItemDeleted, EventItemCommented, EventItemRated:
		return true
	}
	return false
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NopPublisher discards events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
