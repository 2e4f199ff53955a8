package usecase

import (
	"context"
	"math"
	"sync"
	"time"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
	"SigFuse/internal/service/metrics"
	"SigFuse/internal/services/analytics"
	"SigFuse/internal/services/features"
	applogger "SigFuse/pkg/logger"
	"SigFuse/pkg/util"
)

const (
	strongProbGate = 0.55
	weakProbGate   = 0.60
	atrFallbackPct = 0.003
	atrStopMult    = 1.2
	atrExtremeGate = 0.02
)

// FusionConfig tunes the decision engine.
type FusionConfig struct {
	Cooldown            time.Duration
	HorizonBars         int
	ModelWindow         int
	RegimePenaltySource string // "local" or "macro"
}

// FusionEngine fuses rule matches, the online probability model and regime
// context into one risk-scored signal per symbol. It owns the per-symbol
// cooldown state and drives model training and outcome settlement as new bars
// resolve.
type FusionEngine struct {
	data    *MarketData
	rules   []analytics.Rule
	models  *analytics.ModelSet
	scorer  drepo.ProbabilityScorer   // may be nil
	macro   drepo.MacroRegimeProvider // may be nil
	tracker *OutcomeTracker
	pub     drepo.SignalPublisher
	clock   drepo.Clock
	l       *applogger.Logger
	cfg     FusionConfig

	mu           sync.Mutex
	lastSignalAt map[drepo.Symbol]time.Time
	lastTrained  map[drepo.Symbol]time.Time
}

// NewFusionEngine creates the engine. scorer and macro may be nil; publishing
// is skipped when pub is nil.
func NewFusionEngine(
	data *MarketData,
	rules []analytics.Rule,
	modelSet *analytics.ModelSet,
	scorer drepo.ProbabilityScorer,
	macro drepo.MacroRegimeProvider,
	tracker *OutcomeTracker,
	pub drepo.SignalPublisher,
	clock drepo.Clock,
	l *applogger.Logger,
	cfg FusionConfig,
) *FusionEngine {
	if cfg.HorizonBars <= 0 {
		cfg.HorizonBars = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 25 * time.Minute
	}
	metrics.Register()
	return &FusionEngine{
		data:         data,
		rules:        rules,
		models:       modelSet,
		scorer:       scorer,
		macro:        macro,
		tracker:      tracker,
		pub:          pub,
		clock:        clock,
		l:            l,
		cfg:          cfg,
		lastSignalAt: make(map[drepo.Symbol]time.Time),
		lastTrained:  make(map[drepo.Symbol]time.Time),
	}
}

// BuildSignal produces the current signal for one symbol.
func (e *FusionEngine) BuildSignal(ctx context.Context, symbol drepo.Symbol) models.Signal {
	start := time.Now()
	defer func() {
		metrics.StageLatency.WithLabelValues("build_signal").Observe(time.Since(start).Seconds())
	}()

	mtf := e.data.MultiTimeframe(symbol, 0)
	if len(mtf.M1) == 0 {
		return e.emptySignal(symbol)
	}

	rows1m := features.Compute(mtf.M1, e.cfg.HorizonBars)
	rows5m := features.Compute(mtf.M5, e.cfg.HorizonBars)
	rows15m := features.Compute(mtf.M15, e.cfg.HorizonBars)
	last := rows1m[len(rows1m)-1]

	regime := analytics.ClassifyRegime(rows15m)

	e.train(symbol, rows1m)
	e.tracker.Resolve(symbol, mtf.M1)

	probUp := e.probability(ctx, symbol, last)
	probDown := 1 - probUp

	verdict := analytics.Match(e.rules, last, regime)
	kind, strong, reasons := fuse(verdict, probUp, probDown)

	// strong signals need the same rule firing on the 5m roll-up
	if strong && len(rows5m) > 0 {
		conf := analytics.Match(e.rules, rows5m[len(rows5m)-1], regime)
		if (kind.Long() && !conf.RuleLong) || (kind.Short() && !conf.RuleShort) {
			kind = downgrade(kind)
			strong = false
			reasons = append(reasons, "no 5m confirmation")
		}
	}

	kind, strong, cooldownMin, reasons := e.applyCooldown(symbol, kind, strong, reasons)

	entry := last.Close
	risk := riskLevels(kind, entry, last.ATR14)

	penaltyRegime := regime
	if e.cfg.RegimePenaltySource == "macro" && e.macro != nil {
		penaltyRegime = e.macro.Snapshot(ctx).Regime
	}
	score, reasons := e.score(symbol, kind, probUp, probDown, last, penaltyRegime, reasons)

	tsMS := last.OpenTime.UnixMilli()
	sig := models.Signal{
		ID:          signalID(string(symbol), tsMS),
		Symbol:      string(symbol),
		Kind:        kind,
		Score:       score,
		Probability: pickProbability(kind, probUp, probDown),
		Regime:      regime,
		RSI:         fptr(last.RSI14),
		VolZ:        fptr(last.VolZ),
		UpperWick:   fptr(last.UpperWick),
		Ret15:       fptr(last.Ret15),
		CooldownMin: &cooldownMin,
		EntryPrice:  risk.Entry,
		StopLoss:    risk.Stop,
		TargetPrice: risk.Take,
		Reasons:     reasons,
		Timestamp:   last.OpenTime,
		Strong:      strong,
		Meta: models.SignalMeta{
			Strategy: verdict.Strategy,
			ProbUp:   round4(probUp),
			ProbDown: round4(probDown),
			Risk:     risk,
		},
	}

	e.tracker.Track(symbol, regime, kind, last.OpenTime)
	metrics.SignalsEmitted.WithLabelValues(string(kind)).Inc()

	if e.pub != nil && !kind.Neutral() {
		if err := e.pub.Publish(ctx, sig); err != nil {
			metrics.StageErrors.WithLabelValues("publish").Inc()
			e.l.Warn("signal publish failed",
				applogger.String("symbol", string(symbol)),
				applogger.Error(err),
			)
		}
	}
	return sig
}

// fuse applies the two-tier decision: rule AND probability agree for a strong
// signal, rule OR a high probability alone for a weak one. Short evaluation
// runs second and wins ties, matching the rule priority order.
func fuse(v models.StrategyVerdict, probUp, probDown float64) (models.SignalKind, bool, []string) {
	kind := models.SignalNeutral
	strong := false
	var reasons []string

	if v.RuleLong {
		reasons = append(reasons, "long rule active")
	}
	if v.RuleShort {
		reasons = append(reasons, "short rule active")
	}

	if v.RuleLong && probUp >= strongProbGate {
		kind, strong = models.SignalLongStrong, true
	} else if v.RuleLong || probUp >= weakProbGate {
		kind = models.SignalLongWeak
	}
	if v.RuleShort && probDown >= strongProbGate {
		kind, strong = models.SignalShortStrong, true
	} else if v.RuleShort || probDown >= weakProbGate {
		kind, strong = models.SignalShortWeak, false
	}
	return kind, strong, reasons
}

func downgrade(k models.SignalKind) models.SignalKind {
	switch k {
	case models.SignalLongStrong:
		return models.SignalLongWeak
	case models.SignalShortStrong:
		return models.SignalShortWeak
	}
	return k
}

// applyCooldown suppresses a non-neutral signal inside the cooldown window.
// The timer restarts only when a non-neutral signal actually goes out, so a
// suppressed signal does not extend its own lockout.
func (e *FusionEngine) applyCooldown(symbol drepo.Symbol, kind models.SignalKind, strong bool, reasons []string) (models.SignalKind, bool, int, []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	last, fired := e.lastSignalAt[symbol]
	remaining := 0
	if fired {
		if left := e.cfg.Cooldown - now.Sub(last); left > 0 {
			remaining = int(left / time.Minute)
		}
	}

	if fired && now.Sub(last) < e.cfg.Cooldown && !kind.Neutral() {
		reasons = append(reasons, "cooldown active")
		metrics.CooldownSuppressions.Inc()
		return models.SignalNeutral, false, remaining, reasons
	}
	if !kind.Neutral() {
		e.lastSignalAt[symbol] = now
	}
	return kind, strong, remaining, reasons
}

// train feeds the per-symbol model every resolved row it has not seen yet.
func (e *FusionEngine) train(symbol drepo.Symbol, rows []models.FeatureRow) {
	e.mu.Lock()
	since := e.lastTrained[symbol]
	e.mu.Unlock()

	var fresh []models.FeatureRow
	newest := since
	for _, r := range rows {
		if !models.Finite(r.FwdRet5) {
			continue
		}
		if !r.OpenTime.After(since) {
			continue
		}
		fresh = append(fresh, r)
		if r.OpenTime.After(newest) {
			newest = r.OpenTime
		}
	}
	if len(fresh) == 0 {
		return
	}
	e.models.Get(symbol).Update(fresh)

	e.mu.Lock()
	e.lastTrained[symbol] = newest
	e.mu.Unlock()
}

// probability prefers the local model, falls back to the external scorer,
// then to indifference.
func (e *FusionEngine) probability(ctx context.Context, symbol drepo.Symbol, last models.FeatureRow) float64 {
	if p, ok := e.models.Get(symbol).Predict(last); ok {
		return p
	}
	if e.scorer != nil {
		if _, finite := last.Vector(); finite {
			p, err := e.scorer.PredictProba(ctx, symbol, last.FeatureMap())
			if err == nil {
				return p
			}
			metrics.StageErrors.WithLabelValues("scorer").Inc()
			e.l.Debug("external scorer unavailable",
				applogger.String("symbol", string(symbol)),
				applogger.Error(err),
			)
		}
	}
	return 0.5
}

func (e *FusionEngine) score(symbol drepo.Symbol, kind models.SignalKind, probUp, probDown float64, last models.FeatureRow, regime models.RegimeLabel, reasons []string) (int, []string) {
	penalties := 0

	q := e.data.Quality(symbol, drepo.TF1m)
	if q.Gaps > 0 {
		penalties += 5
		reasons = append(reasons, "data gaps")
	}
	if q.Dups > 0 {
		penalties += 5
		reasons = append(reasons, "duplicate bars")
	}
	if models.Finite(last.ATRRatio) && last.ATRRatio > atrExtremeGate {
		penalties += 10
		reasons = append(reasons, "extreme ATR%")
	}
	if regime == models.RegimeBull && kind.Short() {
		penalties += 10
		reasons = append(reasons, "counter-regime (BULL)")
	}
	if regime == models.RegimeBear && kind.Long() {
		penalties += 10
		reasons = append(reasons, "counter-regime (BEAR)")
	}

	base := math.Max(probUp, probDown) * 100
	return util.ClampInt(int(math.Round(base))-penalties, 0, 100), reasons
}

// riskLevels derives entry/stop/target from the last close and ATR, falling
// back to a fixed fraction of price when ATR is still warming up.
func riskLevels(kind models.SignalKind, entry, atr float64) models.RiskLevels {
	if !models.Finite(entry) {
		return models.RiskLevels{}
	}
	atrVal := atr
	if !models.Finite(atrVal) {
		atrVal = entry * atrFallbackPct
	}

	var stop, take, rr float64
	switch {
	case kind.Long():
		stop = entry - atrVal*atrStopMult
		take = entry + (entry-stop)*2
		rr = (take - entry) / math.Max(entry-stop, 1e-9)
	case kind.Short():
		stop = entry + atrVal*atrStopMult
		take = entry - (stop-entry)*2
		rr = (entry - take) / math.Max(stop-entry, 1e-9)
	default:
		stop = entry - atrVal
		take = entry + atrVal*1.5
		rr = 1.5
	}
	rr = math.Round(rr*100) / 100
	return models.RiskLevels{
		Entry:  &entry,
		Stop:   &stop,
		Take:   &take,
		Reward: &rr,
	}
}

func (e *FusionEngine) emptySignal(symbol drepo.Symbol) models.Signal {
	now := e.clock.Now().UTC()
	zero := 0
	return models.Signal{
		ID:          signalID(string(symbol), now.UnixMilli()),
		Symbol:      string(symbol),
		Kind:        models.SignalNeutral,
		Score:       0,
		Probability: 0,
		Regime:      models.RegimeChop,
		CooldownMin: &zero,
		Reasons:     []string{"no candles"},
		Timestamp:   now,
		Meta:        models.SignalMeta{Strategy: "NONE", ProbUp: 0.5, ProbDown: 0.5},
	}
}

// signalID derives a stable id from the bar timestamp and symbol.
func signalID(symbol string, tsMS int64) int64 {
	var h uint32
	for _, ch := range symbol {
		h = h*31 + uint32(ch)
	}
	return tsMS%1_000_000_000 + int64(h%1000)
}

func pickProbability(kind models.SignalKind, probUp, probDown float64) float64 {
	if kind.Short() {
		return probDown
	}
	return probUp
}

func fptr(v float64) *float64 {
	if !models.Finite(v) {
		return nil
	}
	return &v
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
