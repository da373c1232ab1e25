package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"roommate-service/internal/models"
	"roommate-service/internal/observability"
)

// Hub maintains active websocket rooms, one per conversation.
type Hub struct {
	rooms map[int64]map[*websocket.Conn]*client
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[int64]map[*websocket.Conn]*client)}
}

// AddClient registers a websocket connection to a conversation room.
func (h *Hub) AddClient(conversationID int64, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[conversationID]; !ok {
		h.rooms[conversationID] = make(map[*websocket.Conn]*client)
	}
	h.rooms[conversationID][conn] = &client{conn: conn, info: info}
}

// RemoveClient removes a websocket connection.
func (h *Hub) RemoveClient(conversationID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.rooms[conversationID]; ok {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.rooms, conversationID)
		}
	}
}

// ClientCount returns the number of connections subscribed to a conversation.
func (h *Hub) ClientCount(conversationID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

// BroadcastMessage pushes a newly stored message to the conversation's clients.
func (h *Hub) BroadcastMessage(msg models.Message) {
	h.broadcast(msg.ConversationID, models.ChatEvent{
		Type:           models.ChatEventMessage,
		ConversationID: msg.ConversationID,
		Message:        &msg,
	})
}

// BroadcastRead tells the conversation's clients that readerID has read it.
func (h *Hub) BroadcastRead(conversationID, readerID int64) {
	h.broadcast(conversationID, models.ChatEvent{
		Type:           models.ChatEventRead,
		ConversationID: conversationID,
		ReaderID:       readerID,
	})
}

func (h *Hub) broadcast(conversationID int64, event models.ChatEvent) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[conversationID]))
	for _, cl := range h.rooms[conversationID] {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket marshal error: %v", err)
		return
	}
	for _, cl := range clients {
		if err := cl.write(payload); err != nil {
			log.Printf("websocket write error: conversation_id=%d conn_id=%s err=%v", conversationID, cl.info.ConnID, err)
			cl.conn.Close()
			h.RemoveClient(conversationID, cl.conn)
			h.publishWSError(conversationID, cl.info, err)
		}
	}
}

func (h *Hub) publishWSError(conversationID int64, info ConnInfo, err error) {
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), observability.RouteWSChats, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   wsEventPayload(conversationID, "ws_error", info, err.Error()),
	}, headers)
	observability.IncWSEvent(kindConversation, "ws_error")
}
