// Package reservation holds the concurrency-safe core of the booking path:
// the check-capacity-then-commit critical section, serialized per hotel.
package reservation

import (
	"sync"

	"github.com/google/uuid"

	"github.com/barani-presidio/hotel-booking/internal/domain"
	"github.com/barani-presidio/hotel-booking/internal/ledger"
)

// Reservation pairs a token with the stay it committed, for rehydrating a
// coordinator from stored confirmed bookings.
type Reservation struct {
	Token uuid.UUID
	Stay  domain.StayInterval
}

type reservation struct {
	stay     domain.StayInterval
	released bool
}

// hotelState is one hotel's ledger plus its token table. mu serializes every
// ledger read and write for the hotel; two hotels never contend.
type hotelState struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	tokens map[uuid.UUID]*reservation
}

type Coordinator struct {
	mu     sync.Mutex
	hotels map[uuid.UUID]*hotelState
}

func NewCoordinator() *Coordinator {
	return &Coordinator{hotels: make(map[uuid.UUID]*hotelState)}
}

func (c *Coordinator) stateFor(hotelID uuid.UUID) *hotelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	hs, ok := c.hotels[hotelID]
	if !ok {
		hs = &hotelState{ledger: ledger.New(), tokens: make(map[uuid.UUID]*reservation)}
		c.hotels[hotelID] = hs
	}
	return hs
}

// TryReserve checks availability across every night of the stay and commits
// one room, as a single critical section under the hotel's lock. On success
// it returns an opaque token the caller must present to release. On a full
// night it returns a CapacityError and leaves the ledger untouched.
func (c *Coordinator) TryReserve(hotel *domain.Hotel, stay domain.StayInterval) (uuid.UUID, error) {
	hs := c.stateFor(hotel.ID)
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.ledger.Available(hotel.TotalRooms, stay) < 1 {
		night, _ := hs.ledger.FirstFullNight(hotel.TotalRooms, stay)
		return uuid.Nil, &domain.CapacityError{HotelID: hotel.ID, Night: night}
	}

	hs.ledger.Commit(stay)
	token := uuid.New()
	hs.tokens[token] = &reservation{stay: stay}
	return token, nil
}

// Release returns the stay's rooms to the ledger. Unknown and spent tokens
// fail with ErrAlreadyReleased without touching counts, so a double cancel
// can never double-decrement.
func (c *Coordinator) Release(hotelID, token uuid.UUID) error {
	hs := c.stateFor(hotelID)
	hs.mu.Lock()
	defer hs.mu.Unlock()

	res, ok := hs.tokens[token]
	if !ok || res.released {
		return domain.ErrAlreadyReleased
	}
	if err := hs.ledger.Release(res.stay); err != nil {
		return err
	}
	res.released = true
	return nil
}

// Available reads the free-room count for the stay under the hotel's lock.
func (c *Coordinator) Available(hotel *domain.Hotel, stay domain.StayInterval) int {
	hs := c.stateFor(hotel.ID)
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.ledger.Available(hotel.TotalRooms, stay)
}

// Hydrate rebuilds a hotel's ledger from stored confirmed reservations,
// registering each stored token so later cancellations can release it.
// Meant for startup, before the hotel takes traffic.
func (c *Coordinator) Hydrate(hotelID uuid.UUID, reservations []Reservation) {
	hs := c.stateFor(hotelID)
	hs.mu.Lock()
	defer hs.mu.Unlock()

	for _, r := range reservations {
		hs.ledger.Commit(r.Stay)
		hs.tokens[r.Token] = &reservation{stay: r.Stay}
	}
}
