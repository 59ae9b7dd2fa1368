package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/barani-presidio/hotel-booking/internal/adapters/mongo"
	"github.com/barani-presidio/hotel-booking/internal/adapters/rabbit"
	"github.com/barani-presidio/hotel-booking/internal/config"
	"github.com/barani-presidio/hotel-booking/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.NewLogger()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	audit := mongoadapter.NewAuditLogger(mongoClient.Database("hotel_booking"), logger)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	consumer, err := rabbit.NewConsumer(conn, "notifications.q", "booking.*")
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		log.Fatalf("failed to consume: %v", err)
	}

	go func() {
		for d := range deliveries {
			var event struct {
				BookingID string `json:"booking_id"`
				HotelID   string `json:"hotel_id"`
				UserID    string `json:"user_id"`
				Status    string `json:"status"`
			}
			if err := json.Unmarshal(d.Body, &event); err != nil {
				logger.WithError(err).Error("malformed booking event")
				d.Nack(false, false)
				continue
			}

			// Notification delivery is a collaborator; here the event trail
			// is recorded so guests can be notified downstream.
			err := audit.LogEvent(ctx, d.RoutingKey, event.UserID, map[string]interface{}{
				"booking_id": event.BookingID,
				"hotel_id":   event.HotelID,
				"status":     event.Status,
			})
			if err != nil {
				d.Nack(false, true)
				continue
			}

			logger.
				WithField("booking_id", event.BookingID).
				WithField("event", d.RoutingKey).
				Info("booking event recorded")
			d.Ack(false)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown notifier")
}
