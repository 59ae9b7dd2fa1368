package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/barani-presidio/hotel-booking/internal/adapters/crdb"
	mongoadapter "github.com/barani-presidio/hotel-booking/internal/adapters/mongo"
	redisadapter "github.com/barani-presidio/hotel-booking/internal/adapters/redis"
	"github.com/barani-presidio/hotel-booking/internal/booking"
	"github.com/barani-presidio/hotel-booking/internal/config"
	httphandler "github.com/barani-presidio/hotel-booking/internal/http"
	"github.com/barani-presidio/hotel-booking/internal/idempotency"
	"github.com/barani-presidio/hotel-booking/internal/observability"
	"github.com/barani-presidio/hotel-booking/internal/rateLimit"
	"github.com/barani-presidio/hotel-booking/internal/reservation"
)

const schema = `
	CREATE DATABASE IF NOT EXISTS hotel_booking;
	CREATE TABLE IF NOT EXISTS hotel_booking.bookings (
		id UUID PRIMARY KEY,
		hotel_id UUID NOT NULL,
		user_id TEXT NOT NULL,
		check_in DATE NOT NULL,
		check_out DATE NOT NULL,
		guests INT NOT NULL,
		total_price_minor BIGINT NOT NULL,
		token UUID NOT NULL,
		status TEXT CHECK (status IN ('CONFIRMED', 'CANCELLED')),
		created_at TIMESTAMPTZ NOT NULL,
		cancelled_at TIMESTAMPTZ
	);
	CREATE TABLE IF NOT EXISTS hotel_booking.outbox (
		id UUID PRIMARY KEY,
		booking_id UUID NOT NULL,
		event_type TEXT NOT NULL,
		payload_json BYTES NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		published_at TIMESTAMPTZ,
		status TEXT NOT NULL,
		dedupe_key TEXT NOT NULL
	);
`

func TestIntegration_BookOverbookCancelRebook(t *testing.T) {
	ctx := context.Background()

	crdbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "cockroachdb/cockroach:v24.1.1",
			Cmd:          []string{"start-single-node", "--insecure"},
			ExposedPorts: []string{"26257/tcp", "8080/tcp"},
			WaitingFor:   wait.ForHTTP("/health?ready=1").WithPort("8080"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer crdbContainer.Terminate(ctx)

	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForExec([]string{"mongosh", "--eval", "db.runCommand('ping').ok"}),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer mongoContainer.Terminate(ctx)

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForExec([]string{"redis-cli", "ping"}),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer redisContainer.Terminate(ctx)

	crdbHost, err := crdbContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	crdbPort, err := crdbContainer.MappedPort(ctx, "26257")
	if err != nil {
		t.Fatal(err)
	}
	mongoHost, err := mongoContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mongoPort, err := mongoContainer.MappedPort(ctx, "27017")
	if err != nil {
		t.Fatal(err)
	}
	redisHost, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		HTTPAddr:             ":8081",
		CRDBDSN:              "postgresql://root@" + crdbHost + ":" + crdbPort.Port() + "/hotel_booking?sslmode=disable",
		MongoURI:             "mongodb://" + mongoHost + ":" + mongoPort.Port(),
		RedisAddr:            redisHost + ":" + redisPort.Port(),
		MaxGuestsPerRoom:     4,
		TxMaxRetries:         3,
		IdempotencyTTL:       time.Hour,
		AvailabilityCacheTTL: time.Second,
	}

	pool, err := pgxpool.New(ctx, cfg.CRDBDSN)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()
	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatal(err)
	}
	repo := crdb.NewRepository(pool)

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		t.Fatal(err)
	}
	defer mongoClient.Disconnect(ctx)
	logger := observability.NewLogger()
	catalog := mongoadapter.NewCatalogRepository(mongoClient.Database("hotel_booking"), logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	redisCache := redisadapter.NewCache(redisClient)
	redisIdemp := redisadapter.NewIdempotency(redisClient)
	idemp := idempotency.NewIdempotency(redisIdemp, cfg.IdempotencyTTL)
	rl := rateLimit.NewRateLimiter(redisCache, time.Minute)

	coord := reservation.NewCoordinator()
	svc := booking.NewService(cfg, catalog, repo, coord, logger)
	if err := svc.Hydrate(ctx); err != nil {
		t.Fatal(err)
	}

	handlers := httphandler.NewHandlers(cfg, svc, catalog, redisCache, idemp)
	r := httphandler.SetupRouter(handlers, logger, rl, idemp)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Error(err)
		}
	}()
	defer srv.Shutdown(ctx)
	time.Sleep(100 * time.Millisecond)

	base := "http://localhost:8081"

	hotelID := uuid.New()
	hotel := mongoadapter.HotelDoc{
		ID:                 hotelID,
		Name:               "Harbour View",
		Location:           "Lisbon",
		PricePerNightMinor: 10000,
		TotalRooms:         1,
	}
	if err := catalog.CreateHotel(ctx, hotel); err != nil {
		t.Fatal(err)
	}

	post := func(user string, body map[string]interface{}) *http.Response {
		t.Helper()
		data, _ := json.Marshal(body)
		req, _ := http.NewRequest("POST", base+"/v1/bookings", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", uuid.New().String())
		req.Header.Set("Authorization", "Bearer "+user)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	// Alice books the only room for two nights.
	resp := post("alice", map[string]interface{}{
		"hotel_id":         hotelID.String(),
		"check_in":         "2024-06-01",
		"check_out":        "2024-06-03",
		"number_of_guests": 2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("booking failed, status: %d", resp.StatusCode)
	}
	var aliceBooking struct {
		ID              uuid.UUID `json:"id"`
		TotalPriceMinor int64     `json:"total_price_minor"`
		Status          string    `json:"status"`
	}
	json.NewDecoder(resp.Body).Decode(&aliceBooking)
	if aliceBooking.TotalPriceMinor != 20000 {
		t.Errorf("2 nights at 10000: expected 20000, got %d", aliceBooking.TotalPriceMinor)
	}

	// Bob overlaps on the night of June 2 and must be rejected.
	bobReq := map[string]interface{}{
		"hotel_id":         hotelID.String(),
		"check_in":         "2024-06-02",
		"check_out":        "2024-06-04",
		"number_of_guests": 1,
	}
	resp = post("bob", bobReq)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for overlapping booking, got %d", resp.StatusCode)
	}

	// Availability for the contested range is zero.
	availReq, _ := http.NewRequest("GET", base+"/v1/hotels/"+hotelID.String()+"/availability?check_in=2024-06-02&check_out=2024-06-03", nil)
	resp, err = http.DefaultClient.Do(availReq)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("availability failed: %v, status: %d", err, resp.StatusCode)
	}
	var avail struct {
		Available int `json:"available"`
	}
	json.NewDecoder(resp.Body).Decode(&avail)
	if avail.Available != 0 {
		t.Errorf("expected 0 available, got %d", avail.Available)
	}

	// Bob cannot cancel Alice's booking.
	del, _ := http.NewRequest("DELETE", base+"/v1/bookings/"+aliceBooking.ID.String(), nil)
	del.Header.Set("Authorization", "Bearer bob")
	resp, err = http.DefaultClient.Do(del)
	if err != nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign cancel, got %d", resp.StatusCode)
	}

	// Alice cancels; her room frees up.
	del, _ = http.NewRequest("DELETE", base+"/v1/bookings/"+aliceBooking.ID.String(), nil)
	del.Header.Set("Authorization", "Bearer alice")
	resp, err = http.DefaultClient.Do(del)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel failed: %v, status: %d", err, resp.StatusCode)
	}

	// Bob retries the same stay and succeeds now.
	resp = post("bob", bobReq)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected rebooking to succeed after cancel, got %d", resp.StatusCode)
	}
}
