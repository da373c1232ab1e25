package models

import (
	"time"

	"github.com/lib/pq"
)

// Room types.
const (
	RoomApartment = "apartment"
	RoomBedsitter = "bedsitter"
	RoomHostel    = "hostel"
	RoomShared    = "shared"
	RoomPrivate   = "private"
)

// Listing is a room advertisement owned by a host.
type Listing struct {
	ID            int64          `db:"id" json:"listing_id"`
	OwnerID       int64          `db:"owner_id" json:"owner"`
	Title         string         `db:"title" json:"title"`
	Description   string         `db:"description" json:"description"`
	RoomType      string         `db:"room_type" json:"room_type"`
	City          string         `db:"city" json:"city"`
	Area          string         `db:"area" json:"area"`
	RentAmount    float64        `db:"rent_amount" json:"rent_amount"`
	DepositAmount *float64       `db:"deposit_amount" json:"deposit_amount"`
	AvailableFrom *time.Time     `db:"available_from" json:"available_from"`
	Images        pq.StringArray `db:"images" json:"images"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// ListingInput is the payload for POST /listings/.
type ListingInput struct {
	Title         string   `json:"title" binding:"required,max=200"`
	Description   string   `json:"description"`
	RoomType      string   `json:"room_type" binding:"required,oneof=apartment bedsitter hostel shared private"`
	City          string   `json:"city" binding:"required"`
	Area          string   `json:"area"`
	RentAmount    float64  `json:"rent_amount" binding:"required"`
	DepositAmount *float64 `json:"deposit_amount"`
	AvailableFrom string   `json:"available_from"`
	Images        []string `json:"images"`
}

// ListingFilter narrows GET /listings/.
type ListingFilter struct {
	City     string
	RoomType string
	OwnerID  int64
}
