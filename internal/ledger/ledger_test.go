package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/barani-presidio/hotel-booking/internal/domain"
	"github.com/barani-presidio/hotel-booking/internal/ledger"
)

func stay(t *testing.T, in, out string) domain.StayInterval {
	t.Helper()
	s, err := domain.ParseStayInterval(in, out)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLedger_AvailableIsMinimumAcrossNights(t *testing.T) {
	l := ledger.New()

	l.Commit(stay(t, "2024-06-02", "2024-06-03")) // one room on June 2 only

	full := stay(t, "2024-06-01", "2024-06-04")
	if got := l.Available(2, full); got != 1 {
		t.Errorf("expected min availability 1, got %d", got)
	}
	if got := l.Available(2, stay(t, "2024-06-03", "2024-06-04")); got != 2 {
		t.Errorf("untouched night: expected 2, got %d", got)
	}
}

func TestLedger_FirstFullNight(t *testing.T) {
	l := ledger.New()
	l.Commit(stay(t, "2024-06-02", "2024-06-04"))

	night, full := l.FirstFullNight(1, stay(t, "2024-06-01", "2024-06-05"))
	if !full {
		t.Fatal("expected a full night")
	}
	if want := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC); !night.Equal(want) {
		t.Errorf("expected first full night %v, got %v", want, night)
	}

	if _, full := l.FirstFullNight(2, stay(t, "2024-06-01", "2024-06-05")); full {
		t.Error("capacity 2 with one commit: no night should be full")
	}
}

func TestLedger_ReleaseRestoresCapacity(t *testing.T) {
	l := ledger.New()
	s := stay(t, "2024-06-01", "2024-06-03")

	l.Commit(s)
	if got := l.Available(1, s); got != 0 {
		t.Fatalf("expected 0 available after commit, got %d", got)
	}

	if err := l.Release(s); err != nil {
		t.Fatal(err)
	}
	if got := l.Available(1, s); got != 1 {
		t.Errorf("expected 1 available after release, got %d", got)
	}
}

func TestLedger_ReleaseWithoutCommitIsCorruption(t *testing.T) {
	l := ledger.New()
	s := stay(t, "2024-06-01", "2024-06-03")

	if err := l.Release(s); !errors.Is(err, domain.ErrLedgerCorruption) {
		t.Fatalf("expected ErrLedgerCorruption, got %v", err)
	}

	// A partial overlap must not decrement any night either.
	l.Commit(stay(t, "2024-06-01", "2024-06-02"))
	if err := l.Release(s); !errors.Is(err, domain.ErrLedgerCorruption) {
		t.Fatalf("expected ErrLedgerCorruption, got %v", err)
	}
	if got := l.Committed(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); got != 1 {
		t.Errorf("failed release must leave counts untouched, got %d", got)
	}
}
