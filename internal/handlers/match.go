package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/services"
)

// MatchHandler serves ranked roommate matches.
type MatchHandler struct {
	svc *services.MatchService
}

func NewMatchHandler(svc *services.MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

// ListMatches returns the caller's ranked matches. The full ranking size is
// reported in X-Total-Count.
func (h *MatchHandler) ListMatches(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.svc.Matches(c.Request.Context(), currentUserID(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.Itoa(result.Total))
	c.JSON(http.StatusOK, result.Matches)
}

func pageFromQuery(c *gin.Context) (services.Page, error) {
	var page services.Page
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return page, apperrors.InvalidInput("limit must be a non-negative integer", err)
		}
		page.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return page, apperrors.InvalidInput("offset must be a non-negative integer", err)
		}
		page.Offset = offset
	}
	return page, nil
}
