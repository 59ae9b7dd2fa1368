package crdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barani-presidio/hotel-booking/internal/domain"
	"github.com/barani-presidio/hotel-booking/internal/observability"
)

const (
	SerializationFailureCode = "40001"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	start := time.Now()
	defer func() {
		observability.DBTxDuration.Observe(time.Since(start).Seconds())
	}()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SET TRANSACTION ISOLATION LEVEL SERIALIZABLE")
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == SerializationFailureCode {
			return domain.ErrSerializationFailure
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) CreateBooking(ctx context.Context, tx pgx.Tx, b *domain.Booking) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO bookings (id, hotel_id, user_id, check_in, check_out, guests, total_price_minor, token, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, b.ID, b.HotelID, b.UserID, b.Stay.CheckIn, b.Stay.CheckOut, b.Guests, b.TotalPriceMinor, b.Token, b.Status, b.CreatedAt)
	return err
}

func (r *Repository) MarkCancelled(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, at time.Time) error {
	result, err := tx.Exec(ctx, `
		UPDATE bookings SET status = $2, cancelled_at = $3 WHERE id = $1 AND status = $4
	`, bookingID, domain.StatusCancelled, at, domain.StatusConfirmed)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		// Lost a race against another cancel of the same booking.
		return domain.ErrAlreadyCancelled
	}
	return nil
}

func (r *Repository) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	var checkIn, checkOut time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT id, hotel_id, user_id, check_in, check_out, guests, total_price_minor, token, status, created_at, cancelled_at
		FROM bookings WHERE id = $1
	`, bookingID).Scan(&b.ID, &b.HotelID, &b.UserID, &checkIn, &checkOut, &b.Guests,
		&b.TotalPriceMinor, &b.Token, &b.Status, &b.CreatedAt, &b.CancelledAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	b.Stay, err = domain.NewStayInterval(checkIn, checkOut)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrLedgerCorruption, "booking %s has invalid interval", b.ID)
	}
	return &b, nil
}

// ListConfirmed returns every confirmed booking, for rebuilding ledgers at
// startup and for the auditor's recount.
func (r *Repository) ListConfirmed(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, hotel_id, user_id, check_in, check_out, guests, total_price_minor, token, status, created_at
		FROM bookings WHERE status = $1
	`, domain.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		var checkIn, checkOut time.Time
		if err := rows.Scan(&b.ID, &b.HotelID, &b.UserID, &checkIn, &checkOut, &b.Guests,
			&b.TotalPriceMinor, &b.Token, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Stay, err = domain.NewStayInterval(checkIn, checkOut)
		if err != nil {
			return nil, errors.Wrapf(domain.ErrLedgerCorruption, "booking %s has invalid interval", b.ID)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
