package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/models"
	"roommate-service/internal/services"
	"roommate-service/internal/telemetry"
)

// UserHandler manages registration, login and profiles.
type UserHandler struct {
	svc     *services.UserService
	emitter *telemetry.AuditEmitter
}

func NewUserHandler(svc *services.UserService, emitter *telemetry.AuditEmitter) *UserHandler {
	return &UserHandler{svc: svc, emitter: emitter}
}

func (h *UserHandler) Register(c *gin.Context) {
	var in models.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.emitter.Emit(c.Request.Context(), "INFO", "user registered", requestIDFromContext(c), &user.ID)
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var in models.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		h.emitter.Emit(c.Request.Context(), "WARN", "login failed", requestIDFromContext(c), nil)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Me returns the caller's own account.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeactivateMe soft-deletes the caller's account.
func (h *UserHandler) DeactivateMe(c *gin.Context) {
	userID := currentUserID(c)
	if err := h.svc.Deactivate(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	h.emitter.Emit(c.Request.Context(), "INFO", "user deactivated", requestIDFromContext(c), &userID)
	c.Status(http.StatusNoContent)
}

// ChangePassword replaces the caller's password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var in models.ChangePasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	userID := currentUserID(c)
	if err := h.svc.ChangePassword(c.Request.Context(), userID, in); err != nil {
		if apperrors.Is(err, apperrors.CodeUnauthorized) {
			h.emitter.Emit(c.Request.Context(), "WARN", "password change rejected", requestIDFromContext(c), &userID)
		}
		respondError(c, err)
		return
	}
	h.emitter.Emit(c.Request.Context(), "INFO", "password changed", requestIDFromContext(c), &userID)
	c.Status(http.StatusNoContent)
}

// Get returns a user's public profile with preferences.
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.Detail(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Update changes the caller's own profile.
func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var update models.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.svc.Update(c.Request.Context(), currentUserID(c), userID, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
