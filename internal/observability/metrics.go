package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_created_total",
			Help: "Total confirmed bookings",
		},
	)

	BookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_cancelled_total",
			Help: "Total cancelled bookings",
		},
	)

	CapacityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_capacity_rejected_total",
			Help: "Total reservations rejected for lack of rooms",
		},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_outbox_lag_seconds",
			Help: "Lag of outbox publishing",
		},
	)

	OverbookedNights = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_overbooked_nights",
			Help: "Nights whose confirmed bookings exceed hotel capacity, found by the auditor",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
