package handlers

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"roommate-service/internal/apperrors"
)

// respondError writes err as {"error": key, "message": text}. Internal
// details are logged, never returned.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.Code == apperrors.CodeInternal {
		log.Printf("request failed: method=%s path=%s request_id=%s err=%v", c.Request.Method, c.FullPath(), requestIDFromContext(c), err)
	}
	c.AbortWithStatusJSON(appErr.Status, gin.H{"error": appErr.Code, "message": appErr.Message})
}

func bindError(c *gin.Context, err error) {
	respondError(c, apperrors.InvalidInput(err.Error(), err))
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperrors.InvalidInput("invalid "+name, err))
		return 0, false
	}
	return id, true
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64("userID")
}
