package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"roommate-service/internal/mocks"
	"roommate-service/internal/models"
	"roommate-service/internal/observability"
	"roommate-service/internal/repositories"
)

type stubVerifier struct {
	userID int64
	err    error
	seen   string
}

func (s *stubVerifier) Verify(token string) (int64, error) {
	s.seen = token
	return s.userID, s.err
}

func activeAccounts() *mocks.UserRepositoryMock {
	users := new(mocks.UserRepositoryMock)
	users.On("GetUser", mock.Anything, mock.Anything).Return(models.User{IsActive: true}, nil)
	return users
}

func setupAuthRouter(v *stubVerifier, accounts AccountLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(v, accounts), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64("userID")})
	})
	return r
}

func TestAuthMiddlewareAcceptsBearer(t *testing.T) {
	v := &stubVerifier{userID: 9}
	r := setupAuthRouter(v, activeAccounts())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer abc.def")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":9}`, w.Body.String())
	assert.Equal(t, "abc.def", v.seen)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	cases := map[string]struct {
		header string
		err    error
	}{
		"missing":    {header: ""},
		"wrong_type": {header: "Basic abc"},
		"no_token":   {header: "Bearer"},
		"bad_token":  {header: "Bearer abc", err: errors.New("expired")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := setupAuthRouter(&stubVerifier{userID: 1, err: tc.err}, activeAccounts())
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"error":"unauthorized"`)
		})
	}
}

func TestAuthMiddlewareRejectsDeactivatedAccount(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	users.On("GetUser", mock.Anything, int64(4)).Return(nil, repositories.ErrUserNotFound)
	r := setupAuthRouter(&stubVerifier{userID: 4}, users)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer still-valid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"unauthorized"`)
	assert.Contains(t, w.Body.String(), "account is not active")
}

func TestAuthMiddlewareAccountLookupFailure(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	users.On("GetUser", mock.Anything, int64(4)).Return(nil, errors.New("db down"))
	r := setupAuthRouter(&stubVerifier{userID: 4}, users)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer ok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"internal"`)
}

func TestRequestIDPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, observability.RequestIDFromContext(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-Id"))
}
