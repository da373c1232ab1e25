package models

import "time"

// Conversation is a 1:1 thread. The pair is stored canonically with UserLow < UserHigh.
type Conversation struct {
	ID            int64      `db:"id" json:"conversation_id"`
	UserLow       int64      `db:"user_low" json:"-"`
	UserHigh      int64      `db:"user_high" json:"-"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	LastMessageAt *time.Time `db:"last_message_at" json:"last_message_at"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c Conversation) HasParticipant(userID int64) bool {
	return c.UserLow == userID || c.UserHigh == userID
}

// OtherParticipant returns the participant that is not userID.
func (c Conversation) OtherParticipant(userID int64) int64 {
	if c.UserLow == userID {
		return c.UserHigh
	}
	return c.UserLow
}

// CanonicalPair orders two user ids into the (low, high) storage key.
func CanonicalPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// ConversationSummary is one row of a user's inbox.
type ConversationSummary struct {
	Conversation Conversation
	OtherUserID  int64
	LastMessage  *Message
	Unread       bool
}

// LastMessageView is the compact form of the latest message in an inbox row.
type LastMessageView struct {
	MessageID int64     `json:"message_id"`
	SenderID  int64     `json:"sender_id"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sent_at"`
	IsRead    bool      `json:"is_read"`
}

// ConversationView is an inbox row as returned to the caller.
type ConversationView struct {
	ConversationID int64            `json:"conversation_id"`
	OtherUser      PublicUser       `json:"other_user"`
	LastMessage    *LastMessageView `json:"last_message"`
	Unread         bool             `json:"unread"`
	CreatedAt      time.Time        `json:"created_at"`
	LastMessageAt  *time.Time       `json:"last_message_at"`
}

// View renders the summary for its owner. other is the counterpart's profile;
// a zero value falls back to the bare id.
func (s ConversationSummary) View(other PublicUser) ConversationView {
	if other.ID == 0 {
		other.ID = s.OtherUserID
	}
	view := ConversationView{
		ConversationID: s.Conversation.ID,
		OtherUser:      other,
		Unread:         s.Unread,
		CreatedAt:      s.Conversation.CreatedAt,
		LastMessageAt:  s.Conversation.LastMessageAt,
	}
	if m := s.LastMessage; m != nil {
		view.LastMessage = &LastMessageView{
			MessageID: m.ID,
			SenderID:  m.SenderID,
			Text:      m.Text,
			SentAt:    m.SentAt,
			IsRead:    m.IsRead,
		}
	}
	return view
}
