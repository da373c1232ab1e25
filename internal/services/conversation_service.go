package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/models"
	"roommate-service/internal/observability"
	"roommate-service/internal/repositories"
)

// MaxMessageLength bounds message_text in characters.
const MaxMessageLength = 4000

var tracer = otel.Tracer("roommate-service/services")

// Broadcaster pushes conversation events to connected clients.
type Broadcaster interface {
	BroadcastMessage(msg models.Message)
	BroadcastRead(conversationID, readerID int64)
}

// ConversationService implements the conversation store on top of the repositories.
type ConversationService struct {
	convRepo repositories.ConversationRepository
	msgRepo  repositories.MessageRepository
	userRepo repositories.UserRepository
	hub      Broadcaster
	now      func() time.Time
}

func NewConversationService(convRepo repositories.ConversationRepository, msgRepo repositories.MessageRepository, userRepo repositories.UserRepository, hub Broadcaster) *ConversationService {
	return &ConversationService{convRepo: convRepo, msgRepo: msgRepo, userRepo: userRepo, hub: hub, now: time.Now}
}

// StartConversation returns the conversation between userID and otherID,
// creating it on first contact. created reports whether this call created it.
func (s *ConversationService) StartConversation(ctx context.Context, userID, otherID int64) (models.Conversation, bool, error) {
	ctx, span := tracer.Start(ctx, "conversations.start")
	defer span.End()

	if otherID <= 0 {
		return models.Conversation{}, false, apperrors.InvalidInput("user_id is required", nil)
	}
	if otherID == userID {
		return models.Conversation{}, false, apperrors.InvalidInput(repositories.ErrSelfConversation.Error(), repositories.ErrSelfConversation)
	}
	if err := s.activeActor(ctx, userID); err != nil {
		return models.Conversation{}, false, err
	}
	if _, err := s.userRepo.GetUser(ctx, otherID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.Conversation{}, false, apperrors.NotFound("user", err)
		}
		return models.Conversation{}, false, apperrors.Internal("failed to load user", err)
	}

	conv, created, err := s.convRepo.CreateOrGetConversation(ctx, userID, otherID)
	if errors.Is(err, repositories.ErrSelfConversation) {
		return models.Conversation{}, false, apperrors.InvalidInput(err.Error(), err)
	}
	if err != nil {
		return models.Conversation{}, false, apperrors.Internal("failed to start conversation", err)
	}
	span.SetAttributes(attribute.Int64("conversation.id", conv.ID), attribute.Bool("conversation.created", created))

	if created {
		observability.IncConversationStarted()
		publish(ctx, observability.RouteConversationStarted, ConversationStartedEvent{
			ConversationID: conv.ID,
			InitiatorID:    userID,
			RecipientID:    otherID,
			CreatedAt:      conv.CreatedAt,
		})
	}
	return conv, created, nil
}

// ListConversations returns the caller's inbox, most recently active first.
func (s *ConversationService) ListConversations(ctx context.Context, userID int64) ([]models.ConversationView, error) {
	summaries, err := s.convRepo.ListConversations(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list conversations", err)
	}

	ids := make([]int64, 0, len(summaries))
	for _, summary := range summaries {
		ids = append(ids, summary.OtherUserID)
	}
	users := map[int64]models.PublicUser{}
	if len(ids) > 0 {
		found, err := s.userRepo.BulkUsers(ctx, ids)
		if err != nil {
			return nil, apperrors.Internal("failed to load participants", err)
		}
		for _, u := range found {
			users[u.ID] = u.Public()
		}
	}

	views := make([]models.ConversationView, 0, len(summaries))
	for _, summary := range summaries {
		views = append(views, summary.View(users[summary.OtherUserID]))
	}
	return views, nil
}

// SendMessage appends text to the conversation on behalf of senderID.
func (s *ConversationService) SendMessage(ctx context.Context, conversationID, senderID int64, text string) (models.Message, error) {
	ctx, span := tracer.Start(ctx, "messages.send")
	defer span.End()
	span.SetAttributes(attribute.Int64("conversation.id", conversationID))

	if err := s.activeActor(ctx, senderID); err != nil {
		return models.Message{}, err
	}
	conv, err := s.participantConversation(ctx, conversationID, senderID)
	if err != nil {
		return models.Message{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, apperrors.InvalidInput("message_text must not be blank", nil)
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return models.Message{}, apperrors.InvalidInput("message_text is too long", nil)
	}

	msg, err := s.msgRepo.CreateMessage(ctx, conversationID, senderID, text)
	if errors.Is(err, repositories.ErrConversationNotFound) {
		return models.Message{}, apperrors.NotFound("conversation", err)
	}
	if err != nil {
		return models.Message{}, apperrors.Internal("failed to send message", err)
	}

	observability.IncMessageSent()
	if s.hub != nil {
		s.hub.BroadcastMessage(msg)
	}
	publish(ctx, observability.RouteMessageSent, MessageSentEvent{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       senderID,
		RecipientID:    conv.OtherParticipant(senderID),
		SentAt:         msg.SentAt,
	})
	return msg, nil
}

// ListMessages returns the conversation's messages oldest first, marked for requesterID.
func (s *ConversationService) ListMessages(ctx context.Context, conversationID, requesterID int64) ([]models.MessageView, error) {
	if _, err := s.participantConversation(ctx, conversationID, requesterID); err != nil {
		return nil, err
	}

	msgs, err := s.msgRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, apperrors.Internal("failed to load messages", err)
	}
	views := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, m.ViewFor(requesterID))
	}
	return views, nil
}

// MarkRead marks every message readerID received in the conversation as read
// and returns how many were newly marked.
func (s *ConversationService) MarkRead(ctx context.Context, conversationID, readerID int64) (int64, error) {
	if err := s.activeActor(ctx, readerID); err != nil {
		return 0, err
	}
	if _, err := s.participantConversation(ctx, conversationID, readerID); err != nil {
		return 0, err
	}

	count, err := s.msgRepo.MarkRead(ctx, conversationID, readerID)
	if err != nil {
		return 0, apperrors.Internal("failed to mark messages read", err)
	}
	if count > 0 {
		if s.hub != nil {
			s.hub.BroadcastRead(conversationID, readerID)
		}
		publish(ctx, observability.RouteMessagesRead, MessagesReadEvent{
			ConversationID: conversationID,
			ReaderID:       readerID,
			Count:          count,
			ReadAt:         s.now().UTC(),
		})
	}
	return count, nil
}

func (s *ConversationService) participantConversation(ctx context.Context, conversationID, userID int64) (models.Conversation, error) {
	if conversationID <= 0 {
		return models.Conversation{}, apperrors.InvalidInput("invalid conversation id", nil)
	}
	conv, err := s.convRepo.GetConversation(ctx, conversationID)
	if errors.Is(err, repositories.ErrConversationNotFound) {
		return models.Conversation{}, apperrors.NotFound("conversation", err)
	}
	if err != nil {
		return models.Conversation{}, apperrors.Internal("failed to load conversation", err)
	}
	if !conv.HasParticipant(userID) {
		return models.Conversation{}, apperrors.Forbidden("not a participant of this conversation")
	}
	return conv, nil
}

// activeActor rejects writes from accounts deactivated after their token was issued.
func (s *ConversationService) activeActor(ctx context.Context, userID int64) error {
	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.Unauthorized("account is not active")
		}
		return apperrors.Internal("failed to load account", err)
	}
	return nil
}
