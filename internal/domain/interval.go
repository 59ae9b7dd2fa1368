package domain

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// StayInterval is the half-open range of nights [CheckIn, CheckOut). Both
// bounds are calendar dates, normalized to UTC midnight, so adjacent stays
// (checkout day equals the next check-in day) never overlap.
type StayInterval struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewStayInterval normalizes both dates to UTC midnight and requires at
// least one night.
func NewStayInterval(checkIn, checkOut time.Time) (StayInterval, error) {
	in := toNight(checkIn)
	out := toNight(checkOut)
	if !out.After(in) {
		return StayInterval{}, ErrInvalidInterval
	}
	return StayInterval{CheckIn: in, CheckOut: out}, nil
}

// ParseStayInterval builds an interval from YYYY-MM-DD wire dates.
func ParseStayInterval(checkIn, checkOut string) (StayInterval, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return StayInterval{}, ErrInvalidInterval
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return StayInterval{}, ErrInvalidInterval
	}
	return NewStayInterval(in, out)
}

// NightCount is checkOut minus checkIn in days, at least 1 by construction.
func (s StayInterval) NightCount() int {
	return int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}

// Nights lists every night of the stay in order.
func (s StayInterval) Nights() []time.Time {
	nights := make([]time.Time, 0, s.NightCount())
	for d := s.CheckIn; d.Before(s.CheckOut); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

// Overlaps is the standard half-open interval test: the two stays share at
// least one night.
func (s StayInterval) Overlaps(other StayInterval) bool {
	return s.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(s.CheckOut)
}

// Contains reports whether night falls within the stay.
func (s StayInterval) Contains(night time.Time) bool {
	n := toNight(night)
	return !n.Before(s.CheckIn) && n.Before(s.CheckOut)
}

func toNight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
