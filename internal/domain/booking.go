package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Booking is one reservation of a single room for a stay. Bookings are never
// deleted; cancellation is a terminal status transition. Token is the
// reservation token handed out by the coordinator when capacity was
// committed, and is what cancellation releases.
type Booking struct {
	ID              uuid.UUID
	HotelID         uuid.UUID
	UserID          string
	Stay            StayInterval
	Guests          int
	TotalPriceMinor int64
	Token           uuid.UUID
	Status          string
	CreatedAt       time.Time
	CancelledAt     *time.Time
}

// NewBooking prices the stay against the hotel's nightly rate. The booking
// starts PENDING; it only ever reaches storage as CONFIRMED.
func NewBooking(hotel *Hotel, userID string, stay StayInterval, guests int) *Booking {
	return &Booking{
		ID:              uuid.New(),
		HotelID:         hotel.ID,
		UserID:          userID,
		Stay:            stay,
		Guests:          guests,
		TotalPriceMinor: TotalPriceMinor(hotel.PricePerNightMinor, stay),
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC(),
	}
}
