package ws

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/auth"
	"roommate-service/internal/middleware"
	"roommate-service/internal/observability"
	"roommate-service/internal/repositories"
)

// ConversationWebSocketHandler handles conversation websocket connections.
type ConversationWebSocketHandler struct {
	hub      *Hub
	convRepo repositories.ConversationRepository
	verifier auth.Verifier
	accounts middleware.AccountLookup
}

// NewConversationWebSocketHandler constructs a ConversationWebSocketHandler.
func NewConversationWebSocketHandler(hub *Hub, convRepo repositories.ConversationRepository, verifier auth.Verifier, accounts middleware.AccountLookup) *ConversationWebSocketHandler {
	return &ConversationWebSocketHandler{hub: hub, convRepo: convRepo, verifier: verifier, accounts: accounts}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the caller, checks participation and upgrades the connection.
func (h *ConversationWebSocketHandler) Handle(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || conversationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.CodeInvalidInput, "message": "invalid conversation id"})
		return
	}

	ctx, span := otel.Tracer("roommate-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		token = c.Query("token")
	}
	userID, err := h.verifier.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperrors.CodeUnauthorized, "message": "invalid token"})
		return
	}
	if err := middleware.ActiveAccount(ctx, h.accounts, userID); err != nil {
		appErr := apperrors.From(err)
		c.JSON(appErr.Status, gin.H{"error": appErr.Code, "message": appErr.Message})
		return
	}

	conv, err := h.convRepo.GetConversation(ctx, conversationID)
	if errors.Is(err, repositories.ErrConversationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": apperrors.CodeNotFound, "message": "conversation not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.CodeInternal, "message": "failed to load conversation"})
		return
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": apperrors.CodeForbidden, "message": "not a participant"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(conversationID, conn, info)

	observability.IncWSActive(kindConversation)
	observability.IncWSEvent(kindConversation, "ws_connect")
	headers := observability.BuildHeaders(requestID, traceID)
	// The request context ends once the handler returns; events outlive it.
	ctx = context.WithoutCancel(ctx)
	_ = observability.PublishEvent(ctx, observability.RouteWSChats, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(conversationID, "ws_connect", info, ""),
	}, headers)

	// Clients only listen; the read loop exists to notice disconnects.
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(conversationID, conn)
			observability.DecWSActive(kindConversation)
			observability.IncWSEvent(kindConversation, "ws_disconnect")
			_ = observability.PublishEvent(ctx, observability.RouteWSChats, observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   wsEventPayload(conversationID, "ws_disconnect", info, closeReason),
			}, headers)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent(kindConversation, "ws_error")
					_ = observability.PublishEvent(ctx, observability.RouteWSChats, observability.EventEnvelope{
						EventType: "ws_events",
						EventName: "ws_error",
						Payload:   wsEventPayload(conversationID, "ws_error", info, closeReason),
					}, headers)
				}
				return
			}
		}
	}()
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
