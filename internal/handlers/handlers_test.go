package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roommate-service/internal/matching"
	"roommate-service/internal/mocks"
	"roommate-service/internal/models"
	"roommate-service/internal/services"
)

type testDeps struct {
	users    *mocks.UserRepositoryMock
	prefs    *mocks.PreferencesRepositoryMock
	listings *mocks.ListingRepositoryMock
	convs    *mocks.ConversationRepositoryMock
	msgs     *mocks.MessageRepositoryMock
	hub      *mocks.BroadcasterMock
	tokens   *mocks.TokenIssuerMock
	db       *stubPinger
	router   *gin.Engine
}

type stubPinger struct{ err error }

func (p *stubPinger) PingContext(ctx context.Context) error { return p.err }

// testAuth trusts X-Test-User so tests can act as any user.
func testAuth(c *gin.Context) {
	id, err := strconv.ParseInt(c.GetHeader("X-Test-User"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set("userID", id)
	c.Next()
}

func setupRouter(t *testing.T) *testDeps {
	t.Helper()
	return setupRouterWithAuth(t, func(*testDeps) gin.HandlerFunc { return testAuth })
}

// setupRouterWithAuth builds the router with the auth middleware returned by
// authFor, which may depend on the mocked repositories.
func setupRouterWithAuth(t *testing.T, authFor func(*testDeps) gin.HandlerFunc) *testDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d := &testDeps{
		users:    new(mocks.UserRepositoryMock),
		prefs:    new(mocks.PreferencesRepositoryMock),
		listings: new(mocks.ListingRepositoryMock),
		convs:    new(mocks.ConversationRepositoryMock),
		msgs:     new(mocks.MessageRepositoryMock),
		hub:      new(mocks.BroadcasterMock),
		tokens:   new(mocks.TokenIssuerMock),
		db:       &stubPinger{},
	}
	engine, err := matching.NewEngine(matching.Options{Weights: matching.DefaultWeights()})
	require.NoError(t, err)

	d.router = NewRouter(RouterConfig{
		ServiceName:   "roommate-service-test",
		Auth:          authFor(d),
		Users:         NewUserHandler(services.NewUserService(d.users, d.prefs, d.tokens), nil),
		Preferences:   NewPreferencesHandler(services.NewPreferencesService(d.prefs)),
		Matches:       NewMatchHandler(services.NewMatchService(d.users, d.prefs, engine)),
		Conversations: NewConversationHandler(services.NewConversationService(d.convs, d.msgs, d.users, d.hub)),
		Listings:      NewListingHandler(services.NewListingService(d.listings, d.users)),
		DB:            d.db,
		Engine:        engine,
		DebugRoutes:   true,
	})
	return d
}

// active registers ids as active accounts.
func (d *testDeps) active(ids ...int64) {
	for _, id := range ids {
		d.users.On("GetUser", mock.Anything, id).Return(models.User{ID: id, IsActive: true}, nil)
	}
}

func (d *testDeps) do(method, path string, userID int64, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("X-Test-User", strconv.FormatInt(userID, 10))
	}
	rec := httptest.NewRecorder()
	d.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorKey(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[map[string]any](t, rec)
	require.Contains(t, body, "message")
	key, _ := body["error"].(string)
	return key
}
