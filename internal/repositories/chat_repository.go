package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"roommate-service/internal/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrSelfConversation     = errors.New("cannot start a conversation with yourself")
)

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	CreateOrGetConversation(ctx context.Context, userID int64, otherID int64) (models.Conversation, bool, error)
	GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]models.ConversationSummary, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// CreateOrGetConversation returns the conversation for the unordered pair,
// creating it if needed, and reports whether this call created it. The
// no-op DO UPDATE makes RETURNING yield the existing row on conflict, so
// concurrent callers for the same pair all converge on one row.
func (r *ConversationRepo) CreateOrGetConversation(ctx context.Context, userID int64, otherID int64) (models.Conversation, bool, error) {
	if userID == otherID {
		return models.Conversation{}, false, ErrSelfConversation
	}
	low, high := models.CanonicalPair(userID, otherID)

	var row struct {
		models.Conversation
		Created bool `db:"created"`
	}
	err := r.db.GetContext(ctx, &row, `INSERT INTO conversations (user_low, user_high) VALUES ($1, $2)
        ON CONFLICT (user_low, user_high) DO UPDATE SET user_low = EXCLUDED.user_low
        RETURNING id, user_low, user_high, created_at, last_message_at, (xmax = 0) AS created`, low, high)
	if err != nil {
		return models.Conversation{}, false, err
	}
	return row.Conversation, row.Created, nil
}

// GetConversation fetches a conversation by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, user_low, user_high, created_at, last_message_at FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

type summaryRow struct {
	models.Conversation
	LastID       sql.NullInt64  `db:"last_id"`
	LastSenderID sql.NullInt64  `db:"last_sender_id"`
	LastText     sql.NullString `db:"last_text"`
	LastSentAt   sql.NullTime   `db:"last_sent_at"`
	LastIsRead   sql.NullBool   `db:"last_is_read"`
}

// ListConversations returns the user's conversations with their latest
// message, most recently active first.
func (r *ConversationRepo) ListConversations(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	query := `SELECT c.id, c.user_low, c.user_high, c.created_at, c.last_message_at,
            m.id AS last_id, m.sender_id AS last_sender_id, m.message_text AS last_text,
            m.sent_at AS last_sent_at, m.is_read AS last_is_read
        FROM conversations c
        LEFT JOIN LATERAL (
            SELECT id, sender_id, message_text, sent_at, is_read FROM messages
            WHERE conversation_id = c.id
            ORDER BY sent_at DESC, id DESC
            LIMIT 1
        ) m ON TRUE
        WHERE c.user_low=$1 OR c.user_high=$1
        ORDER BY COALESCE(c.last_message_at, c.created_at) DESC, c.id DESC`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.ConversationSummary{}
	for rows.Next() {
		var row summaryRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		summary := models.ConversationSummary{
			Conversation: row.Conversation,
			OtherUserID:  row.Conversation.OtherParticipant(userID),
		}
		if row.LastID.Valid {
			summary.LastMessage = &models.Message{
				ID:             row.LastID.Int64,
				ConversationID: row.Conversation.ID,
				SenderID:       row.LastSenderID.Int64,
				Text:           row.LastText.String,
				SentAt:         row.LastSentAt.Time,
				IsRead:         row.LastIsRead.Bool,
			}
			summary.Unread = summary.LastMessage.SenderID != userID && !summary.LastMessage.IsRead
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}
