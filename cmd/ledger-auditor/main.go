package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/barani-presidio/hotel-booking/internal/adapters/crdb"
	mongoadapter "github.com/barani-presidio/hotel-booking/internal/adapters/mongo"
	"github.com/barani-presidio/hotel-booking/internal/adapters/rabbit"
	"github.com/barani-presidio/hotel-booking/internal/config"
	"github.com/barani-presidio/hotel-booking/internal/domain"
	"github.com/barani-presidio/hotel-booking/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	pool, err := pgxpool.New(context.Background(), cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	catalog := mongoadapter.NewCatalogRepository(mongoClient.Database("hotel_booking"), logger)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	rabbitPub, err := rabbit.NewPublisher(conn)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}

	auditor := NewAuditor(repo, catalog, rabbitPub, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go auditor.Run(ctx, cfg.AuditInterval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown ledger auditor")
}

// Auditor recounts confirmed bookings per night and flags any night whose
// count exceeds the hotel's capacity. A hit means the commit/release pairing
// broke somewhere; that is the fatal LedgerCorruption class, so it is logged
// and alerted, never silently repaired.
type Auditor struct {
	repo      *crdb.Repository
	catalog   *mongoadapter.CatalogRepository
	rabbitPub *rabbit.Publisher
	logger    observability.Logger
}

func NewAuditor(repo *crdb.Repository, catalog *mongoadapter.CatalogRepository, rabbitPub *rabbit.Publisher, logger observability.Logger) *Auditor {
	return &Auditor{repo: repo, catalog: catalog, rabbitPub: rabbitPub, logger: logger}
}

func (a *Auditor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.audit(ctx); err != nil {
				a.logger.WithError(err).Error("audit pass failed")
			}
		}
	}
}

func (a *Auditor) audit(ctx context.Context) error {
	confirmed, err := a.repo.ListConfirmed(ctx)
	if err != nil {
		return err
	}

	byHotel := make(map[uuid.UUID][]domain.Booking)
	for _, b := range confirmed {
		byHotel[b.HotelID] = append(byHotel[b.HotelID], b)
	}

	var overbooked int64
	g, gctx := errgroup.WithContext(ctx)
	for hotelID, bookings := range byHotel {
		hotelID, bookings := hotelID, bookings
		g.Go(func() error {
			n, err := a.auditHotel(gctx, hotelID, bookings)
			if err != nil {
				return err
			}
			atomic.AddInt64(&overbooked, int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	observability.OverbookedNights.Set(float64(atomic.LoadInt64(&overbooked)))
	return nil
}

func (a *Auditor) auditHotel(ctx context.Context, hotelID uuid.UUID, bookings []domain.Booking) (int, error) {
	hotel, err := a.catalog.GetHotel(ctx, hotelID)
	if err != nil {
		return 0, err
	}

	counts := make(map[time.Time]int)
	for _, b := range bookings {
		for _, night := range b.Stay.Nights() {
			counts[night]++
		}
	}

	overbooked := 0
	for night, count := range counts {
		if count <= hotel.TotalRooms {
			continue
		}
		overbooked++
		a.logger.
			WithField("hotel_id", hotelID).
			WithField("night", night.Format(domain.DateLayout)).
			WithField("committed", count).
			WithField("total_rooms", hotel.TotalRooms).
			Error("ledger corruption: night over capacity")

		payload, _ := json.Marshal(map[string]interface{}{
			"hotel_id":    hotelID,
			"night":       night.Format(domain.DateLayout),
			"committed":   count,
			"total_rooms": hotel.TotalRooms,
		})
		msg := amqp.Publishing{
			MessageId:   uuid.New().String(),
			ContentType: "application/json",
			Body:        payload,
		}
		if err := a.rabbitPub.Publish(ctx, "ledger.corruption", msg); err != nil {
			a.logger.WithError(err).Error("failed to publish corruption alert")
		}
	}
	return overbooked, nil
}
