package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roommate-service/internal/observability"
)

const RequestIDKey = "request_id"

// RequestID assigns every request an id, reusing X-Request-Id when the caller sent one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := observability.RequestIDFromRequest(c.Request)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Request = c.Request.WithContext(observability.WithRequestID(c.Request.Context(), requestID))
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Next()
	}
}
