package usecase

import (
	"testing"
	"time"

	drepo "SigFuse/internal/domain/repository"
)

func seededMarketData(t *testing.T, minutes int) (*MarketData, drepo.Symbol) {
	t.Helper()
	store := NewCandleStore(100)
	data := NewMarketData(store)
	sym := drepo.Symbol("BTCUSDT")
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < minutes; i++ {
		store.Append(sym, barAt(t0, i, float64(100+i)))
	}
	return data, sym
}

func TestMultiTimeframeRollsUp(t *testing.T) {
	data, sym := seededMarketData(t, 31)

	mtf := data.MultiTimeframe(sym, 0)
	if len(mtf.M1) != 31 {
		t.Fatalf("m1 = %d, want 31", len(mtf.M1))
	}
	// right-labeled buckets for minutes 0..30; the bar at :30 completes the
	// trailing bucket on both roll-ups
	if len(mtf.M5) != 7 {
		t.Fatalf("m5 = %d, want 7", len(mtf.M5))
	}
	if len(mtf.M15) != 3 {
		t.Fatalf("m15 = %d, want 3", len(mtf.M15))
	}
}

func TestMultiTimeframeEmptySymbol(t *testing.T) {
	data := NewMarketData(NewCandleStore(100))

	mtf := data.MultiTimeframe(drepo.Symbol("ETHUSDT"), 0)
	if len(mtf.M1) != 0 || len(mtf.M5) != 0 || len(mtf.M15) != 0 {
		t.Fatalf("expected empty view, got %d/%d/%d", len(mtf.M1), len(mtf.M5), len(mtf.M15))
	}
}

func TestCandlesRollupRespectsLimit(t *testing.T) {
	data, sym := seededMarketData(t, 31)

	got := data.Candles(sym, drepo.TF5m, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	all := data.Candles(sym, drepo.TF5m, 0)
	if got[1].OpenTime != all[len(all)-1].OpenTime {
		t.Fatal("limit should keep the newest buckets")
	}
}

func TestQualityDefaultsClean(t *testing.T) {
	data, sym := seededMarketData(t, 31)

	// never validated yet
	if q := data.Quality(sym, drepo.TF1m); q.Gaps != 0 || q.Dups != 0 {
		t.Fatalf("quality = %+v, want clean", q)
	}
	data.MultiTimeframe(sym, 0)
	if q := data.Quality(sym, drepo.TF1m); q.Gaps != 0 || q.Dups != 0 {
		t.Fatalf("contiguous series flagged: %+v", q)
	}
}
