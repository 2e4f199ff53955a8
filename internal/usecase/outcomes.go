package usecase

import (
	"math"
	"sort"
	"sync"
	"time"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
)

type outcomeCounter struct {
	tp    int
	total int
}

type pendingSignal struct {
	kind     models.SignalKind
	regime   models.RegimeLabel
	openTime time.Time
}

// OutcomeTracker measures realized signal precision. Emitted non-neutral
// signals are parked until the forward-return horizon is covered by live
// candles, then settled exactly once: a long wins on a positive horizon
// return, a short on a negative one.
type OutcomeTracker struct {
	mu        sync.Mutex
	horizon   int
	perSymbol map[string]*outcomeCounter
	perRegime map[models.RegimeLabel]*outcomeCounter
	pending   map[drepo.Symbol][]pendingSignal
}

// NewOutcomeTracker creates a tracker settling at the given bar horizon.
func NewOutcomeTracker(horizonBars int) *OutcomeTracker {
	if horizonBars <= 0 {
		horizonBars = 5
	}
	return &OutcomeTracker{
		horizon:   horizonBars,
		perSymbol: make(map[string]*outcomeCounter),
		perRegime: make(map[models.RegimeLabel]*outcomeCounter),
		pending:   make(map[drepo.Symbol][]pendingSignal),
	}
}

// Track parks a freshly emitted signal for later settlement. Neutral signals
// are not tracked.
func (t *OutcomeTracker) Track(symbol drepo.Symbol, regime models.RegimeLabel, kind models.SignalKind, barOpen time.Time) {
	if kind.Neutral() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[symbol] = append(t.pending[symbol], pendingSignal{
		kind:     kind,
		regime:   regime,
		openTime: barOpen,
	})
}

// Resolve settles every pending signal for symbol whose horizon is covered by
// the given ascending 1m series. Signals whose entry bar has already been
// evicted from the buffer are dropped unsettled.
func (t *OutcomeTracker) Resolve(symbol drepo.Symbol, m1 []models.Candle) {
	if len(m1) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	queue := t.pending[symbol]
	if len(queue) == 0 {
		return
	}

	keep := queue[:0]
	for _, p := range queue {
		idx := sort.Search(len(m1), func(i int) bool {
			return !m1[i].OpenTime.Before(p.openTime)
		})
		if idx == len(m1) || !m1[idx].OpenTime.Equal(p.openTime) {
			// entry bar evicted before settlement
			continue
		}
		if idx+t.horizon >= len(m1) {
			keep = append(keep, p)
			continue
		}
		entry := m1[idx].Close
		if entry == 0 {
			continue
		}
		fwd := m1[idx+t.horizon].Close/entry - 1
		t.settle(symbol, p, fwd)
	}
	if len(keep) == 0 {
		delete(t.pending, symbol)
	} else {
		t.pending[symbol] = keep
	}
}

func (t *OutcomeTracker) settle(symbol drepo.Symbol, p pendingSignal, fwd float64) {
	win := (p.kind.Long() && fwd > 0) || (p.kind.Short() && fwd < 0)

	sc, ok := t.perSymbol[string(symbol)]
	if !ok {
		sc = &outcomeCounter{}
		t.perSymbol[string(symbol)] = sc
	}
	rc, ok := t.perRegime[p.regime]
	if !ok {
		rc = &outcomeCounter{}
		t.perRegime[p.regime] = rc
	}
	sc.total++
	rc.total++
	if win {
		sc.tp++
		rc.tp++
	}
}

// Pending returns the unsettled signal count for symbol.
func (t *OutcomeTracker) Pending(symbol drepo.Symbol) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending[symbol])
}

// SnapshotSymbols returns realized precision per symbol.
func (t *OutcomeTracker) SnapshotSymbols() map[string]models.PrecisionSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]models.PrecisionSnapshot, len(t.perSymbol))
	for k, c := range t.perSymbol {
		out[k] = c.snapshot()
	}
	return out
}

// SnapshotRegimes returns realized precision per regime.
func (t *OutcomeTracker) SnapshotRegimes() map[string]models.PrecisionSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]models.PrecisionSnapshot, len(t.perRegime))
	for k, c := range t.perRegime {
		out[string(k)] = c.snapshot()
	}
	return out
}

func (c *outcomeCounter) snapshot() models.PrecisionSnapshot {
	total := c.total
	denom := total
	if denom == 0 {
		denom = 1
	}
	return models.PrecisionSnapshot{
		Precision: math.Round(float64(c.tp)/float64(denom)*1e4) / 1e4,
		Total:     total,
	}
}
