package activity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	evt := NewEvent(EventItemCommented, "item-1", "", map[string]string{"comment": "nice"})

	_, err := uuid.Parse(evt.ID)
	require.NoError(t, err)
	assert.Equal(t, EventItemCommented, evt.Type)
	assert.Equal(t, "item-1", evt.ItemID)
	assert.Empty(t, evt.ActorID)
	assert.JSONEq(t, `{"comment":"nice"}`, string(evt.Payload))
	assert.False(t, evt.OccurredAt.IsZero())
}

func TestNewEvent_NilPayload(t *testing.T) {
	evt := NewEvent(EventItemDeleted, "item-1", "user-1", nil)

	assert.Nil(t, evt.Payload)
	assert.Equal(t, "user-1", evt.ActorID)
}

func TestNewEvent_UnserializablePayload(t *testing.T) {
	evt := NewEvent(EventItemRated, "item-1", "", map[string]interface{}{"bad": make(chan int)})

	assert.Nil(t, evt.Payload)
}

func TestEventType_Valid(t *testing.T) {
	for _, et := range []EventType{EventItemCreated, EventItemUpdated, EventItemDeleted, EventItemCommented, EventItemRated} {
		assert.True(t, et.Valid(), string(et))
	}
	assert.False(t, EventType("item.exploded").Valid())
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), NewEvent(EventItemCreated, "i", "u", nil)))
}
