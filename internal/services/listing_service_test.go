package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/mocks"
	"roommate-service/internal/models"
	"roommate-service/internal/repositories"
)

func newListingService() (*ListingService, *mocks.ListingRepositoryMock, *mocks.UserRepositoryMock) {
	listingRepo := new(mocks.ListingRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	return NewListingService(listingRepo, userRepo), listingRepo, userRepo
}

func TestCreateListingHostOnly(t *testing.T) {
	svc, listingRepo, userRepo := newListingService()
	userRepo.On("GetUser", mock.Anything, int64(1)).Return(models.User{ID: 1, Role: models.RoleSeeker}, nil)
	userRepo.On("GetUser", mock.Anything, int64(2)).Return(models.User{ID: 2, Role: models.RoleHost}, nil)
	listingRepo.On("CreateListing", mock.Anything, mock.MatchedBy(func(l models.Listing) bool {
		return l.OwnerID == 2 && l.City == "Nairobi" && l.AvailableFrom != nil && l.AvailableFrom.Day() == 15
	})).Return(models.Listing{ID: 8, OwnerID: 2}, nil).Once()

	in := models.ListingInput{Title: "Sunny room", RoomType: models.RoomShared, City: " Nairobi", RentAmount: 15000, AvailableFrom: "2024-06-15"}

	_, err := svc.Create(context.Background(), 1, in)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	listing, err := svc.Create(context.Background(), 2, in)
	require.NoError(t, err)
	assert.Equal(t, int64(8), listing.ID)
	listingRepo.AssertExpectations(t)
}

func TestCreateListingValidation(t *testing.T) {
	svc, listingRepo, userRepo := newListingService()
	userRepo.On("GetUser", mock.Anything, int64(2)).Return(models.User{ID: 2, Role: models.RoleHost}, nil)
	negative := -1.0

	cases := []models.ListingInput{
		{Title: "t", City: "c", RoomType: models.RoomShared, RentAmount: -5},
		{Title: "t", City: "c", RoomType: models.RoomShared, RentAmount: 0},
		{Title: "t", City: "c", RoomType: models.RoomShared, RentAmount: 5, DepositAmount: &negative},
		{Title: "t", City: "c", RoomType: models.RoomShared, RentAmount: 5, AvailableFrom: "next week"},
		{Title: " ", City: "c", RoomType: models.RoomShared, RentAmount: 5},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), 2, in)
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput), "input %+v", in)
	}
	listingRepo.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything)
}

func TestDeleteListingOwnerOnly(t *testing.T) {
	svc, listingRepo, _ := newListingService()
	listingRepo.On("GetListing", mock.Anything, int64(8)).Return(models.Listing{ID: 8, OwnerID: 2}, nil)
	listingRepo.On("GetListing", mock.Anything, int64(9)).Return(nil, repositories.ErrListingNotFound)
	listingRepo.On("DeleteListing", mock.Anything, int64(8), int64(2)).Return(nil).Once()

	assert.True(t, apperrors.Is(svc.Delete(context.Background(), 1, 8), apperrors.CodeForbidden))
	assert.True(t, apperrors.Is(svc.Delete(context.Background(), 2, 9), apperrors.CodeNotFound))
	require.NoError(t, svc.Delete(context.Background(), 2, 8))
	listingRepo.AssertExpectations(t)
}

func TestMineFiltersByOwner(t *testing.T) {
	svc, listingRepo, _ := newListingService()
	listingRepo.On("ListListings", mock.Anything, models.ListingFilter{OwnerID: 2}).Return([]models.Listing{{ID: 1, OwnerID: 2}}, nil)

	listings, err := svc.Mine(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}
