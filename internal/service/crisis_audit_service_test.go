package service

import (
	"context"
	"testing"

	"mindcare-rag-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditEntry struct {
	message string
	details map[string]interface{}
}

type recordingLogger struct {
	entries []auditEntry
}

func (l *recordingLogger) record(message string, details map[string]interface{}) {
	l.entries = append(l.entries, auditEntry{message: message, details: details})
}

func (l *recordingLogger) Debug(_, message string, details map[string]interface{}) {
	l.record(message, details)
}
func (l *recordingLogger) Info(_, message string, details map[string]interface{}) {
	l.record(message, details)
}
func (l *recordingLogger) Warn(_, message string, details map[string]interface{}) {
	l.record(message, details)
}
func (l *recordingLogger) Error(_, message string, details map[string]interface{}) {
	l.record(message, details)
}
func (l *recordingLogger) Sync() error { return nil }

type stubSubscriber struct {
	eventType string
	durable   string
	handler   events.Handler
}

func (s *stubSubscriber) Subscribe(_ context.Context, eventType, durable string, handler events.Handler) error {
	s.eventType, s.durable, s.handler = eventType, durable, handler
	return nil
}

func TestCrisisAuditService(t *testing.T) {
	sub := &stubSubscriber{}
	audit := &recordingLogger{}

	require.NoError(t, NewCrisisAuditService(sub, audit).Start(context.Background()))
	assert.Equal(t, events.TypeCrisisDetected, sub.eventType)
	assert.Equal(t, crisisAuditDurable, sub.durable)

	require.NoError(t, sub.handler(context.Background(), events.NewCrisisDetected("abcd1234")))
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "abcd1234", audit.entries[0].details["session_id"])
}
