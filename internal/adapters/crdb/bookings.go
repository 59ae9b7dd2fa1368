package crdb

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/barani-presidio/hotel-booking/internal/domain"
)

// SaveConfirmedBooking inserts the booking row and its booking.confirmed
// outbox event in one serializable transaction, so a persisted booking
// always has an event and vice versa.
func (r *Repository) SaveConfirmedBooking(ctx context.Context, b *domain.Booking) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		if err := r.CreateBooking(ctx, tx, b); err != nil {
			return err
		}
		return r.insertEvent(ctx, tx, newBookingEvent("booking.confirmed", b))
	})
}

// CancelBooking flips the row to CANCELLED and records the booking.cancelled
// outbox event atomically.
func (r *Repository) CancelBooking(ctx context.Context, b *domain.Booking, at time.Time) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		if err := r.MarkCancelled(ctx, tx, b.ID, at); err != nil {
			return err
		}
		return r.insertEvent(ctx, tx, newBookingEvent("booking.cancelled", b))
	})
}
