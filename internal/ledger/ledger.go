// Package ledger tracks committed room-nights for a single hotel. It is the
// source of truth for availability: a hotel's capacity minus the committed
// count for a night is what is left to sell.
//
// A Ledger is not safe for concurrent use; the reservation coordinator
// serializes access per hotel.
package ledger

import (
	"time"

	"github.com/barani-presidio/hotel-booking/internal/domain"
)

type Ledger struct {
	// committed maps a night (UTC midnight) to the number of rooms already
	// reserved for it. Nights with zero commitments are absent.
	committed map[time.Time]int
}

func New() *Ledger {
	return &Ledger{committed: make(map[time.Time]int)}
}

// Available is the minimum free-room count across the stay's nights.
func (l *Ledger) Available(totalRooms int, stay domain.StayInterval) int {
	min := totalRooms
	for _, night := range stay.Nights() {
		if free := totalRooms - l.committed[night]; free < min {
			min = free
		}
	}
	return min
}

// FirstFullNight finds the first night of the stay with no remaining
// capacity, for user-facing rejection messages.
func (l *Ledger) FirstFullNight(totalRooms int, stay domain.StayInterval) (time.Time, bool) {
	for _, night := range stay.Nights() {
		if l.committed[night] >= totalRooms {
			return night, true
		}
	}
	return time.Time{}, false
}

// Commit reserves one room for every night of the stay. Callers must have
// checked Available first, within the same critical section.
func (l *Ledger) Commit(stay domain.StayInterval) {
	for _, night := range stay.Nights() {
		l.committed[night]++
	}
}

// Release returns one room for every night of the stay. A decrement below
// zero means release was called without a matching commit; that is a
// consistency bug, not a user error, and the ledger is left untouched.
func (l *Ledger) Release(stay domain.StayInterval) error {
	for _, night := range stay.Nights() {
		if l.committed[night] <= 0 {
			return domain.ErrLedgerCorruption
		}
	}
	for _, night := range stay.Nights() {
		l.committed[night]--
		if l.committed[night] == 0 {
			delete(l.committed, night)
		}
	}
	return nil
}

// Committed reports the committed count for one night.
func (l *Ledger) Committed(night time.Time) int {
	return l.committed[night]
}
