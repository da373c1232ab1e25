package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/models"
	"roommate-service/internal/repositories"
)

// ListingService manages room listings.
type ListingService struct {
	listingRepo repositories.ListingRepository
	userRepo    repositories.UserRepository
}

func NewListingService(listingRepo repositories.ListingRepository, userRepo repositories.UserRepository) *ListingService {
	return &ListingService{listingRepo: listingRepo, userRepo: userRepo}
}

// Create publishes a listing. Only hosts may list rooms.
func (s *ListingService) Create(ctx context.Context, ownerID int64, in models.ListingInput) (models.Listing, error) {
	owner, err := s.userRepo.GetUser(ctx, ownerID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.Listing{}, apperrors.NotFound("user", err)
	}
	if err != nil {
		return models.Listing{}, apperrors.Internal("failed to load user", err)
	}
	if owner.Role != models.RoleHost {
		return models.Listing{}, apperrors.Forbidden("only hosts can create listings")
	}

	listing, err := buildListing(ownerID, in)
	if err != nil {
		return models.Listing{}, err
	}
	created, err := s.listingRepo.CreateListing(ctx, listing)
	if err != nil {
		return models.Listing{}, apperrors.Internal("failed to create listing", err)
	}
	return created, nil
}

func buildListing(ownerID int64, in models.ListingInput) (models.Listing, error) {
	if in.RentAmount <= 0 {
		return models.Listing{}, apperrors.InvalidInput("rent_amount must be positive", nil)
	}
	if in.DepositAmount != nil && *in.DepositAmount < 0 {
		return models.Listing{}, apperrors.InvalidInput("deposit_amount must not be negative", nil)
	}
	listing := models.Listing{
		OwnerID:       ownerID,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		RoomType:      in.RoomType,
		City:          strings.TrimSpace(in.City),
		Area:          strings.TrimSpace(in.Area),
		RentAmount:    in.RentAmount,
		DepositAmount: in.DepositAmount,
		Images:        in.Images,
	}
	if listing.Title == "" || listing.City == "" {
		return models.Listing{}, apperrors.InvalidInput("title and city are required", nil)
	}
	if raw := strings.TrimSpace(in.AvailableFrom); raw != "" {
		available, err := parseDate(raw)
		if err != nil {
			return models.Listing{}, apperrors.InvalidInput("available_from must be a date (YYYY-MM-DD)", err)
		}
		listing.AvailableFrom = &available
	}
	return listing, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (s *ListingService) Get(ctx context.Context, listingID int64) (models.Listing, error) {
	listing, err := s.listingRepo.GetListing(ctx, listingID)
	if errors.Is(err, repositories.ErrListingNotFound) {
		return models.Listing{}, apperrors.NotFound("listing", err)
	}
	if err != nil {
		return models.Listing{}, apperrors.Internal("failed to load listing", err)
	}
	return listing, nil
}

func (s *ListingService) List(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	filter.City = strings.TrimSpace(filter.City)
	listings, err := s.listingRepo.ListListings(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("failed to list listings", err)
	}
	return listings, nil
}

// Mine lists the caller's own listings.
func (s *ListingService) Mine(ctx context.Context, ownerID int64) ([]models.Listing, error) {
	return s.List(ctx, models.ListingFilter{OwnerID: ownerID})
}

// Delete removes a listing. Non-owners get Forbidden.
func (s *ListingService) Delete(ctx context.Context, actorID, listingID int64) error {
	listing, err := s.Get(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != actorID {
		return apperrors.Forbidden("only the owner can delete this listing")
	}
	err = s.listingRepo.DeleteListing(ctx, listingID, actorID)
	if errors.Is(err, repositories.ErrListingNotFound) {
		return apperrors.NotFound("listing", err)
	}
	if err != nil {
		return apperrors.Internal("failed to delete listing", err)
	}
	return nil
}
