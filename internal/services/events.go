package services

import (
	"context"
	"time"

	"roommate-service/internal/observability"
)

const eventTypeDomain = "domain"

type ConversationStartedEvent struct {
	ConversationID int64     `json:"conversation_id"`
	InitiatorID    int64     `json:"initiator_id"`
	RecipientID    int64     `json:"recipient_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageSentEvent deliberately omits the message body.
type MessageSentEvent struct {
	MessageID      int64     `json:"message_id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	RecipientID    int64     `json:"recipient_id"`
	SentAt         time.Time `json:"sent_at"`
}

type MessagesReadEvent struct {
	ConversationID int64     `json:"conversation_id"`
	ReaderID       int64     `json:"reader_id"`
	Count          int64     `json:"count"`
	ReadAt         time.Time `json:"read_at"`
}

type PreferencesUpdatedEvent struct {
	UserID    int64     `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// publish emits a domain event. Delivery failures are logged and counted by
// observability and never fail the request.
func publish(ctx context.Context, routingKey string, payload interface{}) {
	_ = observability.PublishEvent(ctx, routingKey, observability.EventEnvelope{
		EventType: eventTypeDomain,
		EventName: routingKey,
		Payload:   payload,
	}, observability.HeadersFromContext(ctx))
}
