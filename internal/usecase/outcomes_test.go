package usecase

import (
	"testing"
	"time"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
)

func closes(t0 time.Time, vals ...float64) []models.Candle {
	out := make([]models.Candle, len(vals))
	for i, v := range vals {
		out[i] = models.Candle{
			OpenTime: t0.Add(time.Duration(i) * time.Minute),
			Open:     v, High: v, Low: v, Close: v, Volume: 1,
		}
	}
	return out
}

func TestOutcomeTrackerSettlesLongWin(t *testing.T) {
	tr := NewOutcomeTracker(5)
	sym := drepo.Symbol("BTCUSDT")
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tr.Track(sym, models.RegimeBull, models.SignalLongStrong, t0)
	series := closes(t0, 100, 100, 100, 100, 100, 110)
	tr.Resolve(sym, series)

	snap := tr.SnapshotSymbols()["BTCUSDT"]
	if snap.Total != 1 {
		t.Fatalf("total = %d, want 1", snap.Total)
	}
	if snap.Precision != 1 {
		t.Fatalf("precision = %v, want 1", snap.Precision)
	}
	if tr.Pending(sym) != 0 {
		t.Fatalf("pending = %d, want 0", tr.Pending(sym))
	}
}

func TestOutcomeTrackerShortLosesOnRally(t *testing.T) {
	tr := NewOutcomeTracker(5)
	sym := drepo.Symbol("ETHUSDT")
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tr.Track(sym, models.RegimeBear, models.SignalShortWeak, t0)
	tr.Resolve(sym, closes(t0, 100, 100, 100, 100, 100, 110))

	snap := tr.SnapshotSymbols()["ETHUSDT"]
	if snap.Total != 1 || snap.Precision != 0 {
		t.Fatalf("snapshot = %+v, want one loss", snap)
	}
	regimes := tr.SnapshotRegimes()["BEAR"]
	if regimes.Total != 1 || regimes.Precision != 0 {
		t.Fatalf("regime snapshot = %+v", regimes)
	}
}

func TestOutcomeTrackerWaitsForHorizon(t *testing.T) {
	tr := NewOutcomeTracker(5)
	sym := drepo.Symbol("BTCUSDT")
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tr.Track(sym, models.RegimeBull, models.SignalLongWeak, t0)
	tr.Resolve(sym, closes(t0, 100, 101, 102)) // horizon not covered

	if tr.Pending(sym) != 1 {
		t.Fatalf("pending = %d, want 1", tr.Pending(sym))
	}
	if len(tr.SnapshotSymbols()) != 0 {
		t.Fatal("expected no settled outcomes yet")
	}
}

func TestOutcomeTrackerIgnoresNeutral(t *testing.T) {
	tr := NewOutcomeTracker(5)
	sym := drepo.Symbol("BTCUSDT")
	tr.Track(sym, models.RegimeChop, models.SignalNeutral, time.Now())
	if tr.Pending(sym) != 0 {
		t.Fatal("neutral signal must not be tracked")
	}
}

func TestOutcomeTrackerDropsEvictedEntryBar(t *testing.T) {
	tr := NewOutcomeTracker(5)
	sym := drepo.Symbol("BTCUSDT")
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tr.Track(sym, models.RegimeBull, models.SignalLongWeak, t0)
	// buffer has rolled past the entry bar
	tr.Resolve(sym, closes(t0.Add(10*time.Minute), 100, 100, 100, 100, 100, 100))

	if tr.Pending(sym) != 0 {
		t.Fatalf("pending = %d, want dropped", tr.Pending(sym))
	}
	if len(tr.SnapshotSymbols()) != 0 {
		t.Fatal("dropped signal must not settle")
	}
}
