package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/models"
	"roommate-service/internal/services"
)

// ListingHandler serves room listings.
type ListingHandler struct {
	svc *services.ListingService
}

func NewListingHandler(svc *services.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

// List supports ?city=, ?room_type= and ?owner= filters.
func (h *ListingHandler) List(c *gin.Context) {
	filter := models.ListingFilter{
		City:     c.Query("city"),
		RoomType: c.Query("room_type"),
	}
	if raw := c.Query("owner"); raw != "" {
		owner, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || owner <= 0 {
			respondError(c, apperrors.InvalidInput("owner must be a user id", err))
			return
		}
		filter.OwnerID = owner
	}

	listings, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (h *ListingHandler) Mine(c *gin.Context) {
	listings, err := h.svc.Mine(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (h *ListingHandler) Create(c *gin.Context) {
	var in models.ListingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	listing, err := h.svc.Create(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) Get(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	listing, err := h.svc.Get(c.Request.Context(), listingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) Delete(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), currentUserID(c), listingID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
