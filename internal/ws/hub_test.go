package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roommate-service/internal/mocks"
	"roommate-service/internal/models"
	"roommate-service/internal/repositories"
)

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient(1, nil, ConnInfo{})
	assert.Equal(t, 1, hub.ClientCount(1))
	assert.Len(t, hub.rooms, 1)

	hub.RemoveClient(1, nil)
	assert.Equal(t, 0, hub.ClientCount(1))
	assert.Empty(t, hub.rooms)

	hub.RemoveClient(42, nil)
	assert.Empty(t, hub.rooms)
}

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.BroadcastMessage(models.Message{ConversationID: 3})
		hub.BroadcastRead(3, 1)
	})
}

type stubVerifier map[string]int64

func (s stubVerifier) Verify(token string) (int64, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, errors.New("invalid token")
}

func setupWSServer(t *testing.T) (*Hub, *mocks.ConversationRepositoryMock, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	convRepo := new(mocks.ConversationRepositoryMock)
	accounts := new(mocks.UserRepositoryMock)
	accounts.On("GetUser", mock.Anything, int64(4)).Return(nil, repositories.ErrUserNotFound)
	accounts.On("GetUser", mock.Anything, mock.Anything).Return(models.User{IsActive: true}, nil)
	handler := NewConversationWebSocketHandler(hub, convRepo, stubVerifier{"alice": 1, "carol": 3, "gone": 4}, accounts)

	r := gin.New()
	r.GET("/ws/conversations/:id", handler.Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, convRepo, srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestConversationSocketReceivesBroadcasts(t *testing.T) {
	hub, convRepo, srv := setupWSServer(t)
	convRepo.On("GetConversation", mock.Anything, int64(10)).Return(models.Conversation{ID: 10, UserLow: 1, UserHigh: 2}, nil)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/conversations/10?token=alice"), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(10) == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastMessage(models.Message{ID: 5, ConversationID: 10, SenderID: 2, Text: "hi"})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event models.ChatEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, models.ChatEventMessage, event.Type)
	require.NotNil(t, event.Message)
	assert.Equal(t, "hi", event.Message.Text)

	hub.BroadcastRead(10, 2)
	_, payload, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, models.ChatEventRead, event.Type)
	assert.Equal(t, int64(2), event.ReaderID)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return hub.ClientCount(10) == 0 }, time.Second, 10*time.Millisecond)
}

func TestStalledClientIsDroppedAfterWriteDeadline(t *testing.T) {
	hub, convRepo, srv := setupWSServer(t)
	convRepo.On("GetConversation", mock.Anything, int64(10)).Return(models.Conversation{ID: 10, UserLow: 1, UserHigh: 2}, nil)

	prev := writeWait
	writeWait = 50 * time.Millisecond
	t.Cleanup(func() { writeWait = prev })

	// The client never reads, so the socket buffers eventually fill.
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/conversations/10?token=alice"), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(10) == 1 }, time.Second, 10*time.Millisecond)

	big := models.Message{ConversationID: 10, SenderID: 2, Text: strings.Repeat("x", 1<<20)}
	deadline := time.Now().Add(10 * time.Second)
	for hub.ClientCount(10) > 0 && time.Now().Before(deadline) {
		start := time.Now()
		hub.BroadcastMessage(big)
		assert.Less(t, time.Since(start), 2*time.Second)
	}
	assert.Equal(t, 0, hub.ClientCount(10))
}

func TestConversationSocketRejects(t *testing.T) {
	_, convRepo, srv := setupWSServer(t)
	convRepo.On("GetConversation", mock.Anything, int64(10)).Return(models.Conversation{ID: 10, UserLow: 1, UserHigh: 2}, nil)
	convRepo.On("GetConversation", mock.Anything, int64(11)).Return(nil, repositories.ErrConversationNotFound)

	cases := map[string]struct {
		path   string
		status int
	}{
		"bad id":          {path: "/ws/conversations/x?token=alice", status: http.StatusBadRequest},
		"bad token":       {path: "/ws/conversations/10?token=mallory", status: http.StatusUnauthorized},
		"unknown":         {path: "/ws/conversations/11?token=alice", status: http.StatusNotFound},
		"not participant": {path: "/ws/conversations/10?token=carol", status: http.StatusForbidden},
		"deactivated":     {path: "/ws/conversations/10?token=gone", status: http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tc.path), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken(""))
}
