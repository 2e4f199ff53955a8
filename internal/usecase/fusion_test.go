package usecase

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
	"SigFuse/internal/services/analytics"
	applogger "SigFuse/pkg/logger"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type nopMetrics struct{}

func (nopMetrics) RecordCandle(string)           {}
func (nopMetrics) RecordFeedReconnect()          {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}
func (nopMetrics) RecordSnapshotAge(float64)     {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testEngine(t *testing.T, clock drepo.Clock) *FusionEngine {
	t.Helper()
	data := NewMarketData(NewCandleStore(100))
	return NewFusionEngine(
		data,
		analytics.DefaultRules(),
		analytics.NewModelSet(100),
		nil, nil,
		NewOutcomeTracker(5),
		nil,
		clock,
		testLogger(t),
		FusionConfig{Cooldown: 25 * time.Minute, HorizonBars: 5, RegimePenaltySource: "local"},
	)
}

func TestFuseTiers(t *testing.T) {
	cases := []struct {
		name       string
		verdict    models.StrategyVerdict
		probUp     float64
		wantKind   models.SignalKind
		wantStrong bool
	}{
		{"rule and prob agree long", models.StrategyVerdict{RuleLong: true}, 0.56, models.SignalLongStrong, true},
		{"rule alone long", models.StrategyVerdict{RuleLong: true}, 0.50, models.SignalLongWeak, false},
		{"prob alone long", models.StrategyVerdict{}, 0.65, models.SignalLongWeak, false},
		{"rule and prob agree short", models.StrategyVerdict{RuleShort: true}, 0.40, models.SignalShortStrong, true},
		{"prob alone short", models.StrategyVerdict{}, 0.39, models.SignalShortWeak, false},
		{"nothing", models.StrategyVerdict{}, 0.50, models.SignalNeutral, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, strong, _ := fuse(tc.verdict, tc.probUp, 1-tc.probUp)
			if kind != tc.wantKind || strong != tc.wantStrong {
				t.Fatalf("fuse = (%s, %v), want (%s, %v)", kind, strong, tc.wantKind, tc.wantStrong)
			}
		})
	}
}

func TestDowngradeStrongKinds(t *testing.T) {
	if downgrade(models.SignalLongStrong) != models.SignalLongWeak {
		t.Fatal("long strong should downgrade to weak")
	}
	if downgrade(models.SignalShortStrong) != models.SignalShortWeak {
		t.Fatal("short strong should downgrade to weak")
	}
	if downgrade(models.SignalNeutral) != models.SignalNeutral {
		t.Fatal("neutral should stay neutral")
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRiskLevelsLong(t *testing.T) {
	r := riskLevels(models.SignalLongStrong, 100, 2)
	if !near(*r.Stop, 97.6) {
		t.Fatalf("stop = %v, want 97.6", *r.Stop)
	}
	if !near(*r.Take, 104.8) {
		t.Fatalf("take = %v, want 104.8", *r.Take)
	}
	if !near(*r.Reward, 2) {
		t.Fatalf("rr = %v, want 2", *r.Reward)
	}
}

func TestRiskLevelsShortMirrors(t *testing.T) {
	r := riskLevels(models.SignalShortWeak, 100, 2)
	if !near(*r.Stop, 102.4) {
		t.Fatalf("stop = %v, want 102.4", *r.Stop)
	}
	if !near(*r.Take, 95.2) {
		t.Fatalf("take = %v, want 95.2", *r.Take)
	}
}

func TestRiskLevelsNeutral(t *testing.T) {
	r := riskLevels(models.SignalNeutral, 100, 2)
	if !near(*r.Stop, 98) || !near(*r.Take, 103) || !near(*r.Reward, 1.5) {
		t.Fatalf("risk = %v/%v/%v", *r.Stop, *r.Take, *r.Reward)
	}
}

func TestRiskLevelsATRFallback(t *testing.T) {
	r := riskLevels(models.SignalLongWeak, 100, math.NaN())
	wantStop := 100 - 100*atrFallbackPct*atrStopMult
	if math.Abs(*r.Stop-wantStop) > 1e-9 {
		t.Fatalf("stop = %v, want %v", *r.Stop, wantStop)
	}
}

func TestSignalIDStableAndBounded(t *testing.T) {
	a := signalID("BTCUSDT", 1_700_000_000_123)
	b := signalID("BTCUSDT", 1_700_000_000_123)
	if a != b {
		t.Fatal("id must be deterministic")
	}
	if a < 0 || a >= 1_000_000_000+1000 {
		t.Fatalf("id = %d out of range", a)
	}
	if signalID("ETHUSDT", 1_700_000_000_123) == a {
		t.Fatal("ids should differ across symbols")
	}
}

func TestApplyCooldownSuppressesAndRecovers(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	e := testEngine(t, clock)
	sym := drepo.Symbol("BTCUSDT")

	kind, _, _, _ := e.applyCooldown(sym, models.SignalLongWeak, false, nil)
	if kind != models.SignalLongWeak {
		t.Fatalf("first signal = %s, want pass-through", kind)
	}

	clock.advance(10 * time.Minute)
	kind, _, remaining, reasons := e.applyCooldown(sym, models.SignalShortWeak, false, nil)
	if kind != models.SignalNeutral {
		t.Fatalf("signal inside cooldown = %s, want NEUTRAL", kind)
	}
	if remaining != 15 {
		t.Fatalf("remaining = %d, want 15", remaining)
	}
	if len(reasons) == 0 || !strings.Contains(reasons[len(reasons)-1], "cooldown") {
		t.Fatalf("reasons = %v, want cooldown note", reasons)
	}

	// a suppressed signal must not restart the timer
	clock.advance(16 * time.Minute)
	kind, _, _, _ = e.applyCooldown(sym, models.SignalLongStrong, true, nil)
	if kind != models.SignalLongStrong {
		t.Fatalf("signal after cooldown = %s, want pass-through", kind)
	}
}

func TestApplyCooldownIgnoresNeutral(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	e := testEngine(t, clock)
	sym := drepo.Symbol("ETHUSDT")

	// neutral emissions never arm the timer
	kind, _, remaining, _ := e.applyCooldown(sym, models.SignalNeutral, false, nil)
	if kind != models.SignalNeutral || remaining != 0 {
		t.Fatalf("neutral = (%s, %d)", kind, remaining)
	}
	kind, _, _, _ = e.applyCooldown(sym, models.SignalLongWeak, false, nil)
	if kind != models.SignalLongWeak {
		t.Fatalf("signal = %s, want pass-through after neutral", kind)
	}
}

type fixedScorer struct{ p float64 }

func (s fixedScorer) PredictProba(context.Context, drepo.Symbol, map[string]float64) (float64, error) {
	return s.p, nil
}

// minuteShort fires only on base bars: roll-ups sum volume, so the rule never
// confirms on a higher timeframe.
type minuteShort struct{}

func (minuteShort) Name() string { return "MINUTE_SHORT" }

func (minuteShort) Evaluate(row models.FeatureRow, _ models.RegimeLabel) models.StrategyVerdict {
	return models.StrategyVerdict{RuleShort: row.Volume == 1, Strategy: "MINUTE_SHORT"}
}

func TestBuildSignalDowngradesWithout5mConfirmation(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := NewCandleStore(300)
	data := NewMarketData(store)

	// drifting-up series: every resolved outcome is the same class, so the
	// online model stays unavailable and probability comes from the scorer
	sym := drepo.Symbol("BTCUSDT")
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 240; i++ {
		store.Append(sym, barAt(t0, i, 100+float64(i)*0.01))
	}

	e := NewFusionEngine(
		data,
		[]analytics.Rule{minuteShort{}},
		analytics.NewModelSet(5000),
		fixedScorer{p: 0.35},
		nil,
		NewOutcomeTracker(5),
		nil,
		clock,
		testLogger(t),
		FusionConfig{Cooldown: 25 * time.Minute, HorizonBars: 5, RegimePenaltySource: "local"},
	)

	sig := e.BuildSignal(context.Background(), sym)

	// rule + probDown 0.65 qualify as strong, then the missing 5m match
	// downgrades
	if sig.Kind != models.SignalShortWeak {
		t.Fatalf("kind = %s, want SHORT_WEAK", sig.Kind)
	}
	if sig.Strong {
		t.Fatal("downgraded signal must not be strong")
	}
	found := false
	for _, r := range sig.Reasons {
		if r == "no 5m confirmation" {
			found = true
		}
	}
	if !found {
		t.Fatalf("reasons = %v, want a missing-confirmation note", sig.Reasons)
	}
	if sig.Meta.Strategy != "MINUTE_SHORT" {
		t.Fatalf("strategy = %s", sig.Meta.Strategy)
	}
	if sig.Score != 65 {
		t.Fatalf("score = %d, want 65", sig.Score)
	}
	if *sig.StopLoss <= *sig.EntryPrice || *sig.TargetPrice >= *sig.EntryPrice {
		t.Fatalf("short risk levels inverted: entry %v stop %v take %v",
			*sig.EntryPrice, *sig.StopLoss, *sig.TargetPrice)
	}
}

func TestBuildSignalNoData(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	e := testEngine(t, clock)

	sig := e.BuildSignal(context.Background(), drepo.Symbol("BTCUSDT"))
	if sig.Kind != models.SignalNeutral {
		t.Fatalf("kind = %s, want NEUTRAL", sig.Kind)
	}
	if sig.Score != 0 {
		t.Fatalf("score = %d, want 0", sig.Score)
	}
	if len(sig.Reasons) != 1 || sig.Reasons[0] != "no candles" {
		t.Fatalf("reasons = %v", sig.Reasons)
	}
	if sig.Regime != models.RegimeChop {
		t.Fatalf("regime = %s, want CHOP", sig.Regime)
	}
}
