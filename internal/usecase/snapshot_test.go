package usecase

import (
	"context"
	"testing"
	"time"

	drepo "SigFuse/internal/domain/repository"
	"SigFuse/internal/services/analytics"
)

func testSnapshot(t *testing.T, clock drepo.Clock, ttl time.Duration) *SignalSnapshot {
	t.Helper()
	registry, err := drepo.NewSymbolRegistry([]string{"BTCUSDT", "ETHUSDT"})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	tracker := NewOutcomeTracker(5)
	data := NewMarketData(NewCandleStore(100))
	engine := NewFusionEngine(
		data,
		analytics.DefaultRules(),
		analytics.NewModelSet(100),
		nil, nil,
		tracker,
		nil,
		clock,
		testLogger(t),
		FusionConfig{Cooldown: 25 * time.Minute, HorizonBars: 5, RegimePenaltySource: "local"},
	)
	return NewSignalSnapshot(engine, registry, tracker, nopMetrics{}, nil, clock, testLogger(t), ttl)
}

func TestSnapshotServesCachedCopyInsideTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	snap := testSnapshot(t, clock, 10*time.Second)
	ctx := context.Background()

	first := snap.Signals(ctx)
	firstUpdate := snap.LastUpdate(ctx)
	clock.advance(3 * time.Second)
	second := snap.Signals(ctx)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("lens = %d/%d, want 2/2", len(first), len(second))
	}
	if !snap.LastUpdate(ctx).Equal(firstUpdate) {
		t.Fatal("snapshot rebuilt inside TTL")
	}
}

func TestSnapshotRefreshesAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	snap := testSnapshot(t, clock, 10*time.Second)
	ctx := context.Background()

	snap.Signals(ctx)
	firstUpdate := snap.LastUpdate(ctx)
	clock.advance(11 * time.Second)
	snap.Signals(ctx)

	if snap.LastUpdate(ctx).Equal(firstUpdate) {
		t.Fatal("snapshot not rebuilt after TTL")
	}
}

func TestSnapshotOrderedBySymbolOnTiedScore(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	snap := testSnapshot(t, clock, 10*time.Second)

	got := snap.Signals(context.Background())
	if got[0].Symbol != "BTCUSDT" || got[1].Symbol != "ETHUSDT" {
		t.Fatalf("order = %s,%s", got[0].Symbol, got[1].Symbol)
	}
}

func TestSnapshotListFilters(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	snap := testSnapshot(t, clock, 10*time.Second)
	ctx := context.Background()

	// cold store: every signal is neutral score 0
	if got := snap.List(ctx, ListParams{MinScore: 1}); len(got) != 0 {
		t.Fatalf("minScore filter kept %d signals", len(got))
	}
	if got := snap.List(ctx, ListParams{OnlyStrong: true}); len(got) != 0 {
		t.Fatalf("onlyStrong filter kept %d signals", len(got))
	}
	if got := snap.List(ctx, ListParams{}); len(got) != 2 {
		t.Fatalf("unfiltered = %d, want 2", len(got))
	}
}

func TestSnapshotByID(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	snap := testSnapshot(t, clock, 10*time.Second)
	ctx := context.Background()

	all := snap.Signals(ctx)
	got, err := snap.ByID(ctx, all[0].ID)
	if err != nil {
		t.Fatalf("byID: %v", err)
	}
	if got.Symbol != all[0].Symbol {
		t.Fatalf("symbol = %s, want %s", got.Symbol, all[0].Symbol)
	}

	if _, err := snap.ByID(ctx, -42); err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestSnapshotAlertsOnlyStrong(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	snap := testSnapshot(t, clock, 10*time.Second)

	if got := snap.Alerts(context.Background()); len(got) != 0 {
		t.Fatalf("alerts = %d, want 0 on cold store", len(got))
	}
}
