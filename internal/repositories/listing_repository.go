package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"roommate-service/internal/models"
)

var ErrListingNotFound = errors.New("listing not found")

const listingColumns = `id, owner_id, title, description, room_type, city, area, rent_amount, deposit_amount,
        available_from, images, created_at`

// ListingRepository abstracts listing persistence.
type ListingRepository interface {
	CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error)
	GetListing(ctx context.Context, listingID int64) (models.Listing, error)
	ListListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	DeleteListing(ctx context.Context, listingID int64, ownerID int64) error
}

// ListingRepo is a sqlx implementation of ListingRepository.
type ListingRepo struct {
	db *sqlx.DB
}

// NewListingRepo constructs a ListingRepo.
func NewListingRepo(db *sqlx.DB) *ListingRepo {
	return &ListingRepo{db: db}
}

// CreateListing stores a new listing.
func (r *ListingRepo) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	if listing.Images == nil {
		listing.Images = []string{}
	}
	var created models.Listing
	err := r.db.GetContext(ctx, &created, `INSERT INTO listings (owner_id, title, description, room_type, city, area,
            rent_amount, deposit_amount, available_from, images)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING `+listingColumns,
		listing.OwnerID, listing.Title, listing.Description, listing.RoomType, listing.City, listing.Area,
		listing.RentAmount, listing.DepositAmount, listing.AvailableFrom, listing.Images)
	return created, err
}

// GetListing fetches a listing by id.
func (r *ListingRepo) GetListing(ctx context.Context, listingID int64) (models.Listing, error) {
	var listing models.Listing
	err := r.db.GetContext(ctx, &listing, `SELECT `+listingColumns+` FROM listings WHERE id=$1`, listingID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, ErrListingNotFound
	}
	return listing, err
}

// ListListings returns listings newest first, narrowed by any set filter fields.
func (r *ListingRepo) ListListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	clauses := []string{}
	args := []any{}
	if filter.City != "" {
		args = append(args, filter.City)
		clauses = append(clauses, fmt.Sprintf("lower(city) = lower($%d)", len(args)))
	}
	if filter.RoomType != "" {
		args = append(args, filter.RoomType)
		clauses = append(clauses, fmt.Sprintf("room_type = $%d", len(args)))
	}
	if filter.OwnerID != 0 {
		args = append(args, filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id = $%d", len(args)))
	}

	query := `SELECT ` + listingColumns + ` FROM listings`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	listings := []models.Listing{}
	err := r.db.SelectContext(ctx, &listings, query, args...)
	return listings, err
}

// DeleteListing removes a listing owned by ownerID.
func (r *ListingRepo) DeleteListing(ctx context.Context, listingID int64, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id=$1 AND owner_id=$2`, listingID, ownerID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrListingNotFound
	}
	return nil
}
