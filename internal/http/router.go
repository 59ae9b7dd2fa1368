package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/barani-presidio/hotel-booking/internal/idempotency"
	"github.com/barani-presidio/hotel-booking/internal/observability"
	"github.com/barani-presidio/hotel-booking/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter, idemp *idempotency.Idempotency) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)

	// Browsing needs no identity; the booking lifecycle does.
	r.Group(func(r chi.Router) {
		r.Get("/v1/hotels", h.ListHotels)
		r.Get("/v1/hotels/{id}", h.GetHotel)
		r.Get("/v1/hotels/{id}/availability", h.Availability)
		r.Get("/v1/healthz", h.Healthz)
		r.Get("/v1/readyz", h.Readyz)
		r.Get("/metrics", promhttp.Handler().ServeHTTP)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware)
		r.Use(RateLimitMiddleware(rl))
		r.Use(IdempotencyMiddleware(idemp))

		r.Post("/v1/hotels", h.CreateHotel)
		r.Post("/v1/bookings", h.CreateBooking)
		r.Get("/v1/bookings/{id}", h.GetBooking)
		r.Delete("/v1/bookings/{id}", h.CancelBooking)
	})

	return r
}
