package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	CRDBDSN              string
	MongoURI             string
	RedisAddr            string
	RabbitURL            string
	MaxGuestsPerRoom     int
	TxMaxRetries         int
	IdempotencyTTL       time.Duration
	AvailabilityCacheTTL time.Duration
	AuditInterval        time.Duration
	OTLPEndpoint         string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	maxGuests, _ := strconv.Atoi(os.Getenv("MAX_GUESTS_PER_ROOM"))
	if maxGuests == 0 {
		maxGuests = 4
	}

	txRetries, _ := strconv.Atoi(os.Getenv("TX_MAX_RETRIES"))
	if txRetries == 0 {
		txRetries = 3
	}

	idempTTL, _ := time.ParseDuration(os.Getenv("IDEMPOTENCY_TTL"))
	if idempTTL == 0 {
		idempTTL = time.Hour
	}

	availTTL, _ := time.ParseDuration(os.Getenv("AVAILABILITY_CACHE_TTL"))
	if availTTL == 0 {
		availTTL = 30 * time.Second
	}

	auditInterval, _ := time.ParseDuration(os.Getenv("AUDIT_INTERVAL"))
	if auditInterval == 0 {
		auditInterval = time.Minute
	}

	return &Config{
		HTTPAddr:             httpAddr,
		CRDBDSN:              os.Getenv("CRDB_DSN"),
		MongoURI:             os.Getenv("MONGO_URI"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RabbitURL:            os.Getenv("RABBIT_URL"),
		MaxGuestsPerRoom:     maxGuests,
		TxMaxRetries:         txRetries,
		IdempotencyTTL:       idempTTL,
		AvailabilityCacheTTL: availTTL,
		AuditInterval:        auditInterval,
		OTLPEndpoint:         os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}
