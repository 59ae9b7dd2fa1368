// Package booking is the lifecycle manager for Booking records: it
// orchestrates validation, the coordinator's capacity reservation, pricing,
// and persistence, and is the only writer of booking status.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/barani-presidio/hotel-booking/internal/config"
	"github.com/barani-presidio/hotel-booking/internal/domain"
	"github.com/barani-presidio/hotel-booking/internal/observability"
	"github.com/barani-presidio/hotel-booking/internal/reservation"
)

// Catalog is the hotel catalog collaborator. Hotels are fetched fresh for
// every reservation attempt; capacity is never cached across requests.
type Catalog interface {
	GetHotel(ctx context.Context, id uuid.UUID) (*domain.Hotel, error)
}

// Store persists bookings. SaveConfirmedBooking and CancelBooking must be
// atomic: either the row and its event land together or nothing does.
type Store interface {
	SaveConfirmedBooking(ctx context.Context, b *domain.Booking) error
	CancelBooking(ctx context.Context, b *domain.Booking, at time.Time) error
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListConfirmed(ctx context.Context) ([]domain.Booking, error)
}

type Service struct {
	catalog   Catalog
	store     Store
	coord     *reservation.Coordinator
	logger    observability.Logger
	maxGuests int
	txRetries int
}

func NewService(cfg *config.Config, catalog Catalog, store Store, coord *reservation.Coordinator, logger observability.Logger) *Service {
	return &Service{
		catalog:   catalog,
		store:     store,
		coord:     coord,
		logger:    logger,
		maxGuests: cfg.MaxGuestsPerRoom,
		txRetries: cfg.TxMaxRetries,
	}
}

// CreateBooking reserves capacity for the stay and persists a confirmed
// booking. Nothing is persisted on any failure: a capacity rejection leaves
// the ledger untouched, and a persistence failure releases the reservation
// before returning.
func (s *Service) CreateBooking(ctx context.Context, hotelID uuid.UUID, userID string, stay domain.StayInterval, guests int) (*domain.Booking, error) {
	if stay.NightCount() < 1 {
		return nil, domain.ErrInvalidInterval
	}
	if guests < 1 || guests > s.maxGuests {
		return nil, domain.ErrGuestCountExceeded
	}

	hotel, err := s.catalog.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	token, err := s.coord.TryReserve(hotel, stay)
	if err != nil {
		var capErr *domain.CapacityError
		if errors.As(err, &capErr) {
			observability.CapacityRejections.Inc()
		}
		return nil, err
	}

	b := domain.NewBooking(hotel, userID, stay, guests)
	b.Token = token
	b.Status = domain.StatusConfirmed

	if err := s.saveWithRetry(ctx, b); err != nil {
		if relErr := s.coord.Release(hotel.ID, token); relErr != nil {
			s.logger.WithError(relErr).WithField("booking_id", b.ID).Error("failed to release reservation after persist failure")
		}
		return nil, err
	}

	observability.BookingsCreated.Inc()
	s.logger.WithField("booking_id", b.ID).WithField("hotel_id", hotel.ID).Info("booking confirmed")
	return b, nil
}

// saveWithRetry retries serialization conflicts from the store a bounded
// number of times; anything else surfaces immediately.
func (s *Service) saveWithRetry(ctx context.Context, b *domain.Booking) error {
	var err error
	for i := 0; i < s.txRetries; i++ {
		err = s.store.SaveConfirmedBooking(ctx, b)
		if !errors.Is(err, domain.ErrSerializationFailure) {
			return err
		}
	}
	return err
}

// CancelBooking releases the booking's capacity and marks it cancelled.
// Cancelled is terminal; the record is kept forever.
func (s *Service) CancelBooking(ctx context.Context, bookingID uuid.UUID, requestingUserID string) (*domain.Booking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != requestingUserID {
		return nil, domain.ErrForbidden
	}
	if b.Status == domain.StatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}

	if err := s.coord.Release(b.HotelID, b.Token); err != nil {
		if errors.Is(err, domain.ErrAlreadyReleased) {
			// A concurrent cancel of the same booking won the race.
			return nil, domain.ErrAlreadyCancelled
		}
		s.logger.WithError(err).WithField("booking_id", b.ID).Error("ledger corruption detected on release")
		return nil, err
	}

	now := time.Now().UTC()
	b.Status = domain.StatusCancelled
	b.CancelledAt = &now
	if err := s.cancelWithRetry(ctx, b, now); err != nil {
		if errors.Is(err, domain.ErrAlreadyCancelled) {
			return nil, domain.ErrAlreadyCancelled
		}
		// Capacity is already freed; the auditor reconciles the stored row.
		s.logger.WithError(err).WithField("booking_id", b.ID).Error("failed to persist cancellation")
		return nil, err
	}

	observability.BookingsCancelled.Inc()
	s.logger.WithField("booking_id", b.ID).Info("booking cancelled")
	return b, nil
}

func (s *Service) cancelWithRetry(ctx context.Context, b *domain.Booking, at time.Time) error {
	var err error
	for i := 0; i < s.txRetries; i++ {
		err = s.store.CancelBooking(ctx, b, at)
		if !errors.Is(err, domain.ErrSerializationFailure) {
			return err
		}
	}
	return err
}

// CheckAvailability reports the free-room count for the stay, reading the
// hotel's capacity fresh from the catalog.
func (s *Service) CheckAvailability(ctx context.Context, hotelID uuid.UUID, stay domain.StayInterval) (int, error) {
	if stay.NightCount() < 1 {
		return 0, domain.ErrInvalidInterval
	}
	hotel, err := s.catalog.GetHotel(ctx, hotelID)
	if err != nil {
		return 0, err
	}
	return s.coord.Available(hotel, stay), nil
}

func (s *Service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	return s.store.GetBooking(ctx, bookingID)
}

// Hydrate rebuilds the coordinator's ledgers from the store's confirmed
// bookings. Call once at startup, before serving traffic.
func (s *Service) Hydrate(ctx context.Context) error {
	confirmed, err := s.store.ListConfirmed(ctx)
	if err != nil {
		return err
	}

	byHotel := make(map[uuid.UUID][]reservation.Reservation)
	for _, b := range confirmed {
		byHotel[b.HotelID] = append(byHotel[b.HotelID], reservation.Reservation{Token: b.Token, Stay: b.Stay})
	}

	g, _ := errgroup.WithContext(ctx)
	for hotelID, reservations := range byHotel {
		hotelID, reservations := hotelID, reservations
		g.Go(func() error {
			s.coord.Hydrate(hotelID, reservations)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.WithField("bookings", len(confirmed)).WithField("hotels", len(byHotel)).Info("ledger hydrated")
	return nil
}
