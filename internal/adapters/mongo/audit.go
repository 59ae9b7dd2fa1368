package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/barani-presidio/hotel-booking/internal/domain"
	"github.com/barani-presidio/hotel-booking/internal/observability"
)

type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	UserID    string    `bson:"user_id"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) LogEvent(ctx context.Context, action, userID string, data map[string]interface{}) error {
	log := AuditLog{
		ID:        uuid.New(),
		Action:    action,
		UserID:    userID,
		Timestamp: time.Now(),
		Data:      bson.M(data),
	}
	_, err := a.coll.InsertOne(ctx, log)
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}

func (a *AuditLogger) LogBooking(ctx context.Context, action string, b *domain.Booking) error {
	data := map[string]interface{}{
		"booking_id":        b.ID,
		"hotel_id":          b.HotelID,
		"check_in":          b.Stay.CheckIn.Format(domain.DateLayout),
		"check_out":         b.Stay.CheckOut.Format(domain.DateLayout),
		"guests":            b.Guests,
		"total_price_minor": b.TotalPriceMinor,
		"status":            b.Status,
	}
	return a.LogEvent(ctx, action, b.UserID, data)
}
