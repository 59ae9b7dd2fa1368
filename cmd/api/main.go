package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

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
	mongoDB := mongoClient.Database("hotel_booking")
	catalog := mongoadapter.NewCatalogRepository(mongoDB, logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	redisCache := redisadapter.NewCache(redisClient)
	redisIdemp := redisadapter.NewIdempotency(redisClient)
	idemp := idempotency.NewIdempotency(redisIdemp, cfg.IdempotencyTTL)
	rl := rateLimit.NewRateLimiter(redisCache, time.Minute)

	coord := reservation.NewCoordinator()
	svc := booking.NewService(cfg, catalog, repo, coord, logger)

	if err := svc.Hydrate(context.Background()); err != nil {
		log.Fatalf("failed to hydrate ledger: %v", err)
	}

	handlers := httphandler.NewHandlers(cfg, svc, catalog, redisCache, idemp)

	r := httphandler.SetupRouter(handlers, logger, rl, idemp)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
