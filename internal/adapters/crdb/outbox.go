package crdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/barani-presidio/hotel-booking/internal/domain"
)

// BookingEvent is an outbox row: one event per booking state change,
// inserted in the same transaction as the change itself and drained to
// RabbitMQ by the outbox-publisher.
type BookingEvent struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	EventType   string
	Payload     []byte
	DedupeKey   string
	Status      string // NEW, PUBLISHED
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func newBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	payload, _ := json.Marshal(map[string]interface{}{
		"booking_id": b.ID,
		"hotel_id":   b.HotelID,
		"user_id":    b.UserID,
		"check_in":   b.Stay.CheckIn.Format(domain.DateLayout),
		"check_out":  b.Stay.CheckOut.Format(domain.DateLayout),
		"status":     b.Status,
	})
	return BookingEvent{
		ID:        uuid.New(),
		BookingID: b.ID,
		EventType: eventType,
		Payload:   payload,
		DedupeKey: uuid.New().String(),
	}
}

func (r *Repository) insertEvent(ctx context.Context, tx pgx.Tx, ev BookingEvent) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox (id, booking_id, event_type, payload_json, status, dedupe_key)
		VALUES ($1, $2, $3, $4, 'NEW', $5)
	`, ev.ID, ev.BookingID, ev.EventType, ev.Payload, ev.DedupeKey)
	return err
}

// PendingEvents returns NEW events oldest-first, locked so concurrent
// publisher instances never pick up the same batch.
func (r *Repository) PendingEvents(ctx context.Context, limit int) ([]BookingEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, booking_id, event_type, payload_json, dedupe_key, status, created_at, published_at
		FROM outbox WHERE status = 'NEW' ORDER BY created_at ASC LIMIT $1 FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []BookingEvent
	for rows.Next() {
		var ev BookingEvent
		err := rows.Scan(&ev.ID, &ev.BookingID, &ev.EventType, &ev.Payload, &ev.DedupeKey, &ev.Status, &ev.CreatedAt, &ev.PublishedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *Repository) MarkEventPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE outbox SET status = 'PUBLISHED', published_at = $2 WHERE id = $1
	`, id, publishedAt)
	return err
}
