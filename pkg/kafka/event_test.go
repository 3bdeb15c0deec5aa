package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent("cart.updated", "user-1", "cart", "cart-service", testPayload{UserID: "user-1", Count: 3})

	require.NoError(t, err)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "cart.updated", ev.EventType)
	assert.Equal(t, "user-1", ev.AggregateID)
	assert.Equal(t, "cart", ev.AggregateType)
	assert.Equal(t, 1, ev.Version)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestEvent_MarshalDecodeData(t *testing.T) {
	ev, err := NewEvent("cart.updated", "user-1", "cart", "cart-service", testPayload{UserID: "user-1", Count: 3})
	require.NoError(t, err)
	ev.WithCorrelationID("corr-5")

	raw, err := ev.Marshal()
	require.NoError(t, err)

	var back Event
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "corr-5", back.CorrelationID)

	var payload testPayload
	require.NoError(t, back.DecodeData(&payload))
	assert.Equal(t, 3, payload.Count)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("cart.updated", "user-1", "cart", "cart-service", make(chan int))
	assert.Error(t, err)
}
