package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"roommate-service/internal/models"
)

const messageColumns = `id, conversation_id, sender_id, message_text, sent_at, is_read, read_at`

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, conversationID int64, senderID int64, text string) (models.Message, error)
	ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID int64, readerID int64) (int64, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage appends a message. The conversation row is locked for the
// duration of the insert so concurrent senders are serialized, and sent_at
// never moves backwards even if the database clock does.
func (r *MessageRepo) CreateMessage(ctx context.Context, conversationID int64, senderID int64, text string) (msg models.Message, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var locked int64
	if err = tx.GetContext(ctx, &locked, `SELECT id FROM conversations WHERE id=$1 FOR UPDATE`, conversationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrConversationNotFound
		}
		return models.Message{}, err
	}

	if err = tx.GetContext(ctx, &msg, `INSERT INTO messages (conversation_id, sender_id, message_text, sent_at)
        SELECT $1, $2, $3, GREATEST(clock_timestamp(), COALESCE(c.last_message_at, '-infinity'::timestamptz))
        FROM conversations c WHERE c.id = $1
        RETURNING `+messageColumns, conversationID, senderID, text); err != nil {
		return models.Message{}, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE conversations SET last_message_at = $2 WHERE id=$1`, conversationID, msg.SentAt); err != nil {
		return models.Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessages returns the conversation's messages oldest first. The id is
// the tiebreaker for messages sharing a timestamp.
func (r *MessageRepo) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages
        WHERE conversation_id=$1
        ORDER BY sent_at ASC, id ASC`, conversationID)
	return msgs, err
}

// MarkRead flags every unread message not sent by readerID and returns how
// many changed. Repeating the call changes nothing.
func (r *MessageRepo) MarkRead(ctx context.Context, conversationID int64, readerID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE, read_at = NOW()
        WHERE conversation_id=$1 AND sender_id<>$2 AND NOT is_read`, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
