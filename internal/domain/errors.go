package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInterval      = errors.New("invalid stay interval")
	ErrGuestCountExceeded   = errors.New("guest count exceeded")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrAlreadyCancelled     = errors.New("booking already cancelled")
	ErrAlreadyReleased      = errors.New("reservation already released")
	ErrLedgerCorruption     = errors.New("ledger corruption")
	ErrSerializationFailure = errors.New("serialization failure")
)

// CapacityError reports a reservation rejected for lack of rooms. Night is
// the first night of the requested stay with no remaining capacity.
type CapacityError struct {
	HotelID uuid.UUID
	Night   time.Time
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("no rooms available the night of %s", e.Night.Format("2006-01-02"))
}
