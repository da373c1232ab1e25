package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roommate-service/internal/models"
	"roommate-service/internal/repositories"
)

func TestListingsFilterAndMine(t *testing.T) {
	d := setupRouter(t)
	d.listings.On("ListListings", mock.Anything, models.ListingFilter{City: "Nairobi", RoomType: "shared", OwnerID: 7}).
		Return([]models.Listing{{ID: 1, OwnerID: 7, City: "Nairobi"}}, nil).Once()
	d.listings.On("ListListings", mock.Anything, models.ListingFilter{OwnerID: 3}).
		Return([]models.Listing{}, nil).Once()

	rec := d.do(http.MethodGet, "/listings/?city=Nairobi&room_type=shared&owner=7", 3, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[[]map[string]any](t, rec)
	require.Len(t, body, 1)
	assert.Equal(t, float64(1), body[0]["listing_id"])

	rec = d.do(http.MethodGet, "/listings/mine/", 3, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = d.do(http.MethodGet, "/listings/?owner=x", 3, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	d.listings.AssertExpectations(t)
}

func TestCreateListing(t *testing.T) {
	d := setupRouter(t)
	d.users.On("GetUser", mock.Anything, int64(3)).Return(models.User{ID: 3, Role: models.RoleHost}, nil)
	d.users.On("GetUser", mock.Anything, int64(4)).Return(models.User{ID: 4, Role: models.RoleSeeker}, nil)
	d.listings.On("CreateListing", mock.Anything, mock.AnythingOfType("models.Listing")).
		Return(models.Listing{ID: 9, OwnerID: 3, Title: "Room"}, nil).Once()

	payload := `{"title":"Room","room_type":"bedsitter","city":"Nairobi","rent_amount":12000}`
	rec := d.do(http.MethodPost, "/listings/", 3, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(9), decode[map[string]any](t, rec)["listing_id"])

	rec = d.do(http.MethodPost, "/listings/", 4, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = d.do(http.MethodPost, "/listings/", 3, `{"title":"Room","room_type":"castle","city":"Nairobi","rent_amount":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAndDeleteListing(t *testing.T) {
	d := setupRouter(t)
	d.listings.On("GetListing", mock.Anything, int64(9)).Return(models.Listing{ID: 9, OwnerID: 3}, nil)
	d.listings.On("GetListing", mock.Anything, int64(8)).Return(nil, repositories.ErrListingNotFound)
	d.listings.On("DeleteListing", mock.Anything, int64(9), int64(3)).Return(nil).Once()

	rec := d.do(http.MethodGet, "/listings/9/", 1, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = d.do(http.MethodGet, "/listings/8/", 1, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = d.do(http.MethodDelete, "/listings/9/", 1, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = d.do(http.MethodDelete, "/listings/9/", 3, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	d.listings.AssertExpectations(t)
}

func TestHealthzAndDebug(t *testing.T) {
	d := setupRouter(t)

	rec := d.do(http.MethodGet, "/healthz", 0, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	d.db.err = errors.New("down")
	rec = d.do(http.MethodGet, "/healthz", 0, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = d.do(http.MethodGet, "/debug/match-weights", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(25), decode[map[string]any](t, rec)["budget"])

	rec = d.do(http.MethodGet, "/debug/audit-test", 1, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = d.do(http.MethodGet, "/metrics", 0, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
