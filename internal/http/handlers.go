package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mongoadapter "github.com/barani-presidio/hotel-booking/internal/adapters/mongo"
	redisadapter "github.com/barani-presidio/hotel-booking/internal/adapters/redis"
	"github.com/barani-presidio/hotel-booking/internal/booking"
	"github.com/barani-presidio/hotel-booking/internal/config"
	"github.com/barani-presidio/hotel-booking/internal/domain"
	"github.com/barani-presidio/hotel-booking/internal/idempotency"
)

type Handlers struct {
	cfg     *config.Config
	svc     *booking.Service
	catalog *mongoadapter.CatalogRepository
	cache   *redisadapter.Cache
	idemp   *idempotency.Idempotency
}

func NewHandlers(cfg *config.Config, svc *booking.Service, catalog *mongoadapter.CatalogRepository, cache *redisadapter.Cache, idemp *idempotency.Idempotency) *Handlers {
	return &Handlers{
		cfg:     cfg,
		svc:     svc,
		catalog: catalog,
		cache:   cache,
		idemp:   idemp,
	}
}

func bookingJSON(b *domain.Booking) map[string]interface{} {
	resp := map[string]interface{}{
		"id":                b.ID,
		"hotel_id":          b.HotelID,
		"user_id":           b.UserID,
		"check_in":          b.Stay.CheckIn.Format(domain.DateLayout),
		"check_out":         b.Stay.CheckOut.Format(domain.DateLayout),
		"number_of_guests":  b.Guests,
		"total_price_minor": b.TotalPriceMinor,
		"status":            b.Status,
		"created_at":        b.CreatedAt.Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		resp["cancelled_at"] = b.CancelledAt.Format(time.RFC3339)
	}
	return resp
}

func writeError(w http.ResponseWriter, err error) {
	var capErr *domain.CapacityError
	switch {
	case errors.Is(err, domain.ErrInvalidInterval), errors.Is(err, domain.ErrGuestCountExceeded):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.As(err, &capErr):
		http.Error(w, capErr.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrAlreadyCancelled):
		http.Error(w, "booking already cancelled", http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	existing, err := h.idemp.Get(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req struct {
		HotelID        uuid.UUID `json:"hotel_id"`
		CheckIn        string    `json:"check_in"`
		CheckOut       string    `json:"check_out"`
		NumberOfGuests int       `json:"number_of_guests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stay, err := domain.ParseStayInterval(req.CheckIn, req.CheckOut)
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := h.svc.CreateBooking(r.Context(), req.HotelID, UserID(r.Context()), stay, req.NumberOfGuests)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cache.InvalidateHotel(r.Context(), b.HotelID.String())

	data, _ := json.Marshal(bookingJSON(b))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(data)

	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: data})
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	b, err := h.svc.CancelBooking(r.Context(), id, UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	h.cache.InvalidateHotel(r.Context(), b.HotelID.String())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookingJSON(b))
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	b, err := h.svc.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookingJSON(b))
}

func (h *Handlers) Availability(w http.ResponseWriter, r *http.Request) {
	hotelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	checkIn := r.URL.Query().Get("check_in")
	checkOut := r.URL.Query().Get("check_out")

	stay, err := domain.ParseStayInterval(checkIn, checkOut)
	if err != nil {
		writeError(w, err)
		return
	}

	if cached, found, err := h.cache.GetAvailability(r.Context(), hotelID.String(), checkIn, checkOut); err == nil && found {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"available": cached})
		return
	}

	available, err := h.svc.CheckAvailability(r.Context(), hotelID, stay)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cache.SetAvailability(r.Context(), hotelID.String(), checkIn, checkOut, available, h.cfg.AvailabilityCacheTTL)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"available": available})
}

func (h *Handlers) ListHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.catalog.ListHotels(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(hotels)
}

func (h *Handlers) GetHotel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	hotel, err := h.catalog.GetHotelDoc(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(hotel)
}

func (h *Handlers) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var doc mongoadapter.HotelDoc
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.TotalRooms < 1 {
		http.Error(w, "total_rooms must be at least 1", http.StatusBadRequest)
		return
	}
	if err := h.catalog.CreateHotel(r.Context(), doc); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doc)
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
