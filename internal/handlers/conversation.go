package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/services"
)

// ConversationHandler manages conversation and message endpoints.
type ConversationHandler struct {
	svc *services.ConversationService
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(svc *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// ListConversations returns the caller's inbox.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	views, err := h.svc.ListConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// StartConversation gets or creates the conversation with another user.
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	conv, created, err := h.svc.StartConversation(c.Request.Context(), currentUserID(c), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"conversation_id": conv.ID,
		"user_id":         conv.OtherParticipant(currentUserID(c)),
		"created_at":      conv.CreatedAt,
		"created":         created,
	})
}

// MarkRead marks the caller's received messages in a conversation as read.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	conversationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	count, err := h.svc.MarkRead(c.Request.Context(), conversationID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation_id": conversationID, "marked_read": count})
}

// ListMessages returns ?conversation=<id>'s messages oldest first.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Query("conversation"), 10, 64)
	if err != nil || conversationID <= 0 {
		respondError(c, apperrors.InvalidInput("conversation query parameter is required", err))
		return
	}

	msgs, err := h.svc.ListMessages(c.Request.Context(), conversationID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// SendMessage appends a message to a conversation.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var req struct {
		Conversation int64  `json:"conversation" binding:"required"`
		MessageText  string `json:"message_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	userID := currentUserID(c)
	msg, err := h.svc.SendMessage(c.Request.Context(), req.Conversation, userID, req.MessageText)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg.ViewFor(userID))
}
