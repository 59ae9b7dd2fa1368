package domain

import "github.com/google/uuid"

// Hotel is the catalog collaborator's view of a property. The reservation
// core reads it and never writes it; capacity is always derived from the
// ledger, not from a counter on the hotel record.
type Hotel struct {
	ID                 uuid.UUID
	Name               string
	Location           string
	TotalRooms         int
	PricePerNightMinor int64
}
