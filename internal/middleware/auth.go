package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/auth"
	"roommate-service/internal/models"
	"roommate-service/internal/repositories"
)

// AccountLookup loads active accounts; deactivated ones report ErrUserNotFound.
type AccountLookup interface {
	GetUser(ctx context.Context, userID int64) (models.User, error)
}

// AuthMiddleware validates the bearer token, rejects tokens whose account has
// been deactivated and stores the caller's id as "userID".
func AuthMiddleware(verifier auth.Verifier, accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing authorization")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header")
			return
		}

		userID, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		if err := ActiveAccount(c.Request.Context(), accounts, userID); err != nil {
			appErr := apperrors.From(err)
			c.AbortWithStatusJSON(appErr.Status, gin.H{"error": appErr.Code, "message": appErr.Message})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// ActiveAccount fails with Unauthorized when userID has no active account.
func ActiveAccount(ctx context.Context, accounts AccountLookup, userID int64) error {
	if _, err := accounts.GetUser(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.Unauthorized("account is not active")
		}
		return apperrors.Internal("failed to load account", err)
	}
	return nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.CodeUnauthorized, "message": message})
}
