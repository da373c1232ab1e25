package observability

// Routing keys for domain events.
const (
	RouteConversationStarted = "conversation.started"
	RouteMessageSent         = "message.sent"
	RouteMessagesRead        = "messages.read"
	RoutePreferencesUpdated  = "preferences.updated"
	RouteWSChats             = "ws_events.conversations"
)

type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
