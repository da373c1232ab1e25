package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/matching"
	"roommate-service/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router gin.IRouter, emitter *telemetry.AuditEmitter, engine *matching.Engine, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": apperrors.CodeInternal, "message": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/debug/match-weights", func(c *gin.Context) {
		c.JSON(http.StatusOK, engine.Weights())
	})
}
