package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roommate-service/internal/models"
	"roommate-service/internal/services"
)

// PreferencesHandler serves the caller's matching preferences.
type PreferencesHandler struct {
	svc *services.PreferencesService
}

func NewPreferencesHandler(svc *services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{svc: svc}
}

func (h *PreferencesHandler) Get(c *gin.Context) {
	prefs, err := h.svc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs.View())
}

// Replace stores the body as the caller's complete preferences.
func (h *PreferencesHandler) Replace(c *gin.Context) {
	var in models.PreferencesInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	prefs, err := h.svc.Replace(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs.View())
}

// Patch updates only the fields present in the body.
func (h *PreferencesHandler) Patch(c *gin.Context) {
	var in models.PreferencesInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	prefs, err := h.svc.Patch(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs.View())
}
