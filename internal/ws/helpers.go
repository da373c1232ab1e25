package ws

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

const kindConversation = "conversation"

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

func wsEventPayload(conversationID int64, event string, info ConnInfo, reason string) map[string]interface{} {
	duration := int64(0)
	if !info.ConnectedAt.IsZero() && event != "ws_connect" {
		duration = time.Since(info.ConnectedAt).Milliseconds()
	}
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kindConversation,
			"resource_id": conversationID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": duration,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
