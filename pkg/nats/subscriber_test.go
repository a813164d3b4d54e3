package nats

import (
	"testing"
	"time"

	"mindcare-rag-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	ev, err := decode("events.CRISIS_DETECTED", []byte(`{"session_id":"ab12cd34","occurred_at":"2024-05-01T10:00:00Z"}`))
	require.NoError(t, err)

	assert.Equal(t, events.TypeCrisisDetected, ev.EventType())
	assert.Equal(t, "ab12cd34", ev.Payload()["session_id"])
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), ev.Timestamp().UTC())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := decode("events.X", []byte("not json"))
	assert.Error(t, err)
}
