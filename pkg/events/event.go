package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_EXCHANGE").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypeChatExchange   = "CHAT_EXCHANGE"
	TypeCrisisDetected = "CRISIS_DETECTED"
	TypeSessionCleared = "SESSION_CLEARED"
)

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewChatExchange records one answered message. Message text is left out.
func NewChatExchange(sessionID, intent string, isCrisis bool, sourceCount int) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: TypeChatExchange,
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"intent":       intent,
			"is_crisis":    isCrisis,
			"source_count": sourceCount,
			"occurred_at":  now.Format(time.RFC3339),
		},
		OccurredAt: now,
	}
}

func NewCrisisDetected(sessionID string) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: TypeCrisisDetected,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"occurred_at": now.Format(time.RFC3339),
		},
		OccurredAt: now,
	}
}

func NewSessionCleared(sessionID string) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: TypeSessionCleared,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"occurred_at": now.Format(time.RFC3339),
		},
		OccurredAt: now,
	}
}
