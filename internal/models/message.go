package models

import "time"

// Message is an immutable chat message. Only IsRead/ReadAt ever change, and only once.
type Message struct {
	ID             int64      `db:"id" json:"message_id"`
	ConversationID int64      `db:"conversation_id" json:"conversation"`
	SenderID       int64      `db:"sender_id" json:"sender"`
	Text           string     `db:"message_text" json:"message_text"`
	SentAt         time.Time  `db:"sent_at" json:"sent_at"`
	IsRead         bool       `db:"is_read" json:"is_read"`
	ReadAt         *time.Time `db:"read_at" json:"read_at,omitempty"`
}

// ChatEvent is broadcast through websockets.
type ChatEvent struct {
	Type           string   `json:"type"`
	ConversationID int64    `json:"conversation"`
	Message        *Message `json:"message,omitempty"`
	ReaderID       int64    `json:"reader,omitempty"`
}

// Chat event types.
const (
	ChatEventMessage = "message"
	ChatEventRead    = "read"
)

// MessageView is a message as seen by one participant.
type MessageView struct {
	Message
	IsMe bool `json:"is_me"`
}

// ViewFor marks whether viewerID sent the message.
func (m Message) ViewFor(viewerID int64) MessageView {
	return MessageView{Message: m, IsMe: m.SenderID == viewerID}
}
