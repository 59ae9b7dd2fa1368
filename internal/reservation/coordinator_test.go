package reservation_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/barani-presidio/hotel-booking/internal/domain"
	"github.com/barani-presidio/hotel-booking/internal/reservation"
)

func testHotel(rooms int) *domain.Hotel {
	return &domain.Hotel{ID: uuid.New(), Name: "Test Hotel", TotalRooms: rooms, PricePerNightMinor: 10000}
}

func stay(t *testing.T, in, out string) domain.StayInterval {
	t.Helper()
	s, err := domain.ParseStayInterval(in, out)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTryReserve_RejectsWhenFull(t *testing.T) {
	c := reservation.NewCoordinator()
	hotel := testHotel(1)

	if _, err := c.TryReserve(hotel, stay(t, "2024-06-01", "2024-06-03")); err != nil {
		t.Fatal(err)
	}

	_, err := c.TryReserve(hotel, stay(t, "2024-06-02", "2024-06-04"))
	var capErr *domain.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if want := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC); !capErr.Night.Equal(want) {
		t.Errorf("expected first full night %v, got %v", want, capErr.Night)
	}

	// The rejected attempt must not have committed anything.
	if got := c.Available(hotel, stay(t, "2024-06-03", "2024-06-04")); got != 1 {
		t.Errorf("expected night of June 3 still free, got %d", got)
	}
}

func TestTryReserve_AdjacentStaysShareNoNight(t *testing.T) {
	c := reservation.NewCoordinator()
	hotel := testHotel(1)

	if _, err := c.TryReserve(hotel, stay(t, "2024-06-01", "2024-06-03")); err != nil {
		t.Fatal(err)
	}
	if _, err := c.TryReserve(hotel, stay(t, "2024-06-03", "2024-06-05")); err != nil {
		t.Fatalf("adjacent stay must succeed, got %v", err)
	}
}

func TestRelease_RestoresCapacityAndIsIdempotent(t *testing.T) {
	c := reservation.NewCoordinator()
	hotel := testHotel(1)
	s := stay(t, "2024-06-01", "2024-06-03")

	token, err := c.TryReserve(hotel, s)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Release(hotel.ID, token); err != nil {
		t.Fatal(err)
	}
	if got := c.Available(hotel, s); got != 1 {
		t.Fatalf("expected capacity back after release, got %d", got)
	}

	if err := c.Release(hotel.ID, token); !errors.Is(err, domain.ErrAlreadyReleased) {
		t.Errorf("second release: expected ErrAlreadyReleased, got %v", err)
	}
	if err := c.Release(hotel.ID, uuid.New()); !errors.Is(err, domain.ErrAlreadyReleased) {
		t.Errorf("unknown token: expected ErrAlreadyReleased, got %v", err)
	}
	if got := c.Available(hotel, s); got != 1 {
		t.Errorf("failed releases must not change the ledger, got %d", got)
	}
}

func TestTryReserve_ConcurrentRequestsNeverOverbook(t *testing.T) {
	const rooms = 5
	const requests = 50

	c := reservation.NewCoordinator()
	hotel := testHotel(rooms)
	s := stay(t, "2024-06-01", "2024-06-02")

	var wg sync.WaitGroup
	results := make(chan error, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.TryReserve(hotel, s)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	confirmed, rejected := 0, 0
	for err := range results {
		var capErr *domain.CapacityError
		switch {
		case err == nil:
			confirmed++
		case errors.As(err, &capErr):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if confirmed != rooms || rejected != requests-rooms {
		t.Errorf("expected %d confirmed and %d rejected, got %d and %d",
			rooms, requests-rooms, confirmed, rejected)
	}
	if got := c.Available(hotel, s); got != 0 {
		t.Errorf("expected 0 rooms left, got %d", got)
	}
}

func TestTryReserve_ConcurrentOverlappingStays(t *testing.T) {
	// Stays overlap pairwise on different nights; every night's committed
	// count must stay within capacity no matter the interleaving.
	const rooms = 2

	c := reservation.NewCoordinator()
	hotel := testHotel(rooms)

	stays := []domain.StayInterval{
		stay(t, "2024-06-01", "2024-06-03"),
		stay(t, "2024-06-02", "2024-06-04"),
		stay(t, "2024-06-02", "2024-06-05"),
		stay(t, "2024-06-03", "2024-06-06"),
		stay(t, "2024-06-01", "2024-06-06"),
		stay(t, "2024-06-04", "2024-06-06"),
	}

	var wg sync.WaitGroup
	tokens := make(chan reservation.Reservation, len(stays))
	for _, s := range stays {
		wg.Add(1)
		go func(s domain.StayInterval) {
			defer wg.Done()
			if token, err := c.TryReserve(hotel, s); err == nil {
				tokens <- reservation.Reservation{Token: token, Stay: s}
			}
		}(s)
	}
	wg.Wait()
	close(tokens)

	confirmed := make([]reservation.Reservation, 0, len(stays))
	for r := range tokens {
		confirmed = append(confirmed, r)
	}

	full, _ := domain.ParseStayInterval("2024-06-01", "2024-06-06")
	for _, night := range full.Nights() {
		count := 0
		for _, r := range confirmed {
			if r.Stay.Contains(night) {
				count++
			}
		}
		if count > rooms {
			t.Errorf("night %v overbooked: %d stays for %d rooms", night, count, rooms)
		}
	}
}

func TestHydrate_RebuildsLedgerAndTokens(t *testing.T) {
	c := reservation.NewCoordinator()
	hotel := testHotel(1)
	s := stay(t, "2024-06-01", "2024-06-03")
	stored := reservation.Reservation{Token: uuid.New(), Stay: s}

	c.Hydrate(hotel.ID, []reservation.Reservation{stored})

	if got := c.Available(hotel, s); got != 0 {
		t.Fatalf("expected hydrated commitment, got %d available", got)
	}
	if err := c.Release(hotel.ID, stored.Token); err != nil {
		t.Fatalf("stored token must be releasable, got %v", err)
	}
	if got := c.Available(hotel, s); got != 1 {
		t.Errorf("expected capacity back, got %d", got)
	}
}
