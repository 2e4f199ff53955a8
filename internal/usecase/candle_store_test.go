package usecase

import (
	"testing"
	"time"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
)

func barAt(t0 time.Time, minute int, close float64) models.Candle {
	return models.Candle{
		OpenTime: t0.Add(time.Duration(minute) * time.Minute),
		Open:     close, High: close, Low: close, Close: close, Volume: 1,
	}
}

func TestCandleStoreAppendAndRecent(t *testing.T) {
	store := NewCandleStore(10)
	sym := drepo.Symbol("BTCUSDT")
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		store.Append(sym, barAt(t0, i, float64(100+i)))
	}

	got := store.Recent(sym, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Close != 102 || got[2].Close != 104 {
		t.Fatalf("unexpected window: %v..%v", got[0].Close, got[2].Close)
	}
	if store.Len(sym) != 5 {
		t.Fatalf("len = %d, want 5", store.Len(sym))
	}
}

func TestCandleStoreReplacesEqualOpenTime(t *testing.T) {
	store := NewCandleStore(10)
	sym := drepo.Symbol("BTCUSDT")
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	store.Append(sym, barAt(t0, 0, 100))
	store.Append(sym, barAt(t0, 1, 101))
	store.Append(sym, barAt(t0, 1, 999)) // re-delivery of the newest bar

	got := store.Recent(sym, 0)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].Close != 999 {
		t.Fatalf("close = %v, want replacement applied", got[1].Close)
	}
}

func TestCandleStoreEvictsOldest(t *testing.T) {
	store := NewCandleStore(3)
	sym := drepo.Symbol("ETHUSDT")
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		store.Append(sym, barAt(t0, i, float64(i)))
	}

	got := store.Recent(sym, 0)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Close != 3 || got[2].Close != 5 {
		t.Fatalf("window = %v..%v, want 3..5", got[0].Close, got[2].Close)
	}
}

func TestCandleStoreSeed(t *testing.T) {
	store := NewCandleStore(100)
	sym := drepo.Symbol("SOLUSDT")
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	seed := make([]models.Candle, 10)
	for i := range seed {
		seed[i] = barAt(t0, i, float64(i))
	}
	store.Seed(sym, seed)

	// live bar with the same open time as the seeded tail replaces it
	store.Append(sym, barAt(t0, 9, 42))
	got := store.Recent(sym, 0)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	if got[9].Close != 42 {
		t.Fatalf("close = %v, want 42", got[9].Close)
	}
}

func TestCandleStoreUnknownSymbol(t *testing.T) {
	store := NewCandleStore(10)
	if got := store.Recent(drepo.Symbol("NOPEUSDT"), 5); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
