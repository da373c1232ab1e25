package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	keys   []string
	events []any
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func TestAuditEmitterPublishesEnvelope(t *testing.T) {
	pub := &recordingPublisher{}
	emitter := NewAuditEmitter(pub, AuditRoutingKey, "roommate-service", "test")
	emitter.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	uid := int64(42)
	emitter.Emit(context.Background(), "INFO", "conversation started", "req-1", &uid)

	require.Len(t, pub.events, 1)
	assert.Equal(t, AuditRoutingKey, pub.keys[0])
	env, ok := pub.events[0].(AuditEnvelope)
	require.True(t, ok)
	assert.Equal(t, "audit_log", env.EventType)
	assert.Equal(t, "roommate-service", env.Service)
	assert.Equal(t, "test", env.Environment)
	assert.Equal(t, "req-1", env.RequestID)
	assert.Equal(t, "2024-03-01T12:00:00Z", env.OccurredAt)
	require.NotNil(t, env.UserID)
	assert.Equal(t, "42", *env.UserID)
	assert.Equal(t, AuditPayload{Level: "INFO", Text: "conversation started"}, env.Payload)
}

func TestAuditEmitterToleratesNilAndErrors(t *testing.T) {
	var nilEmitter *AuditEmitter
	assert.NotPanics(t, func() {
		nilEmitter.Emit(context.Background(), "INFO", "x", "r", nil)
	})

	pub := &recordingPublisher{err: errors.New("broker down")}
	emitter := NewAuditEmitter(pub, AuditRoutingKey, "svc", "dev")
	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), "WARN", "x", "r", nil)
	})
	require.Len(t, pub.events, 1)
	assert.Nil(t, pub.events[0].(AuditEnvelope).UserID)
}

func TestTraceIDFromContextWithoutSpan(t *testing.T) {
	assert.Equal(t, "", TraceIDFromContext(context.Background()))
}
