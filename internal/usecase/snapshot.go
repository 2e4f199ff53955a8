package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
	"SigFuse/internal/service/cache"
	applogger "SigFuse/pkg/logger"
)

const redisSnapshotKey = "sigfuse:signals:snapshot"

// SignalSnapshot serves the fleet-wide signal view. Signals are rebuilt at
// most once per TTL; concurrent readers inside the window share the cached
// copy. Snapshots are sorted by score descending, symbol ascending on ties.
type SignalSnapshot struct {
	engine   *FusionEngine
	registry *drepo.SymbolRegistry
	tracker  *OutcomeTracker
	metrics  drepo.Metrics
	mirror   cache.BytesCache // may be nil
	clock    drepo.Clock
	l        *applogger.Logger
	ttl      time.Duration

	mu         sync.Mutex
	refreshMu  sync.Mutex
	signals    []models.Signal
	lastUpdate time.Time
}

// NewSignalSnapshot creates the serving cache. mirror may be nil when Redis
// is disabled.
func NewSignalSnapshot(
	engine *FusionEngine,
	registry *drepo.SymbolRegistry,
	tracker *OutcomeTracker,
	metrics drepo.Metrics,
	mirror cache.BytesCache,
	clock drepo.Clock,
	l *applogger.Logger,
	ttl time.Duration,
) *SignalSnapshot {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &SignalSnapshot{
		engine:   engine,
		registry: registry,
		tracker:  tracker,
		metrics:  metrics,
		mirror:   mirror,
		clock:    clock,
		l:        l,
		ttl:      ttl,
	}
}

// Signals returns the current snapshot, rebuilding it when stale.
func (s *SignalSnapshot) Signals(ctx context.Context) []models.Signal {
	s.mu.Lock()
	fresh := s.signals != nil && s.clock.Now().Sub(s.lastUpdate) < s.ttl
	out := s.signals
	s.mu.Unlock()
	if fresh {
		return out
	}
	return s.refresh(ctx)
}

func (s *SignalSnapshot) refresh(ctx context.Context) []models.Signal {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// another caller may have refreshed while we waited
	s.mu.Lock()
	if s.signals != nil && s.clock.Now().Sub(s.lastUpdate) < s.ttl {
		out := s.signals
		s.mu.Unlock()
		return out
	}
	s.mu.Unlock()

	built := make([]models.Signal, 0, s.registry.Len())
	for _, sym := range s.registry.All() {
		built = append(built, s.engine.BuildSignal(ctx, sym))
	}
	sort.Slice(built, func(i, j int) bool {
		if built[i].Score != built[j].Score {
			return built[i].Score > built[j].Score
		}
		return built[i].Symbol < built[j].Symbol
	})

	now := s.clock.Now().UTC()
	s.mu.Lock()
	s.signals = built
	s.lastUpdate = now
	s.mu.Unlock()

	s.metrics.RecordSnapshotAge(0)
	s.mirrorSnapshot(built)
	return built
}

func (s *SignalSnapshot) mirrorSnapshot(signals []models.Signal) {
	if s.mirror == nil {
		return
	}
	b, err := json.Marshal(signals)
	if err != nil {
		return
	}
	if err := s.mirror.SetBytes(redisSnapshotKey, b, s.ttl); err != nil {
		s.l.Debug("snapshot mirror write failed", applogger.Error(err))
	}
}

// ListParams filter the served snapshot.
type ListParams struct {
	MinScore   int
	OnlyStrong bool
}

// List returns the filtered snapshot in score order.
func (s *SignalSnapshot) List(ctx context.Context, p ListParams) []models.Signal {
	all := s.Signals(ctx)
	out := make([]models.Signal, 0, len(all))
	for _, sig := range all {
		if sig.Score < p.MinScore {
			continue
		}
		if p.OnlyStrong && !sig.Strong {
			continue
		}
		out = append(out, sig)
	}
	return out
}

// ByID finds one signal in the current snapshot.
func (s *SignalSnapshot) ByID(ctx context.Context, id int64) (models.Signal, error) {
	for _, sig := range s.Signals(ctx) {
		if sig.ID == id {
			return sig, nil
		}
	}
	return models.Signal{}, fmt.Errorf("signal %d not found", id)
}

// Alerts returns notifications for up to 20 strong signals.
func (s *SignalSnapshot) Alerts(ctx context.Context) []models.Alert {
	alerts := make([]models.Alert, 0, 20)
	for _, sig := range s.Signals(ctx) {
		if !sig.Strong {
			continue
		}
		alerts = append(alerts, models.Alert{
			ID:        sig.ID,
			Message:   fmt.Sprintf("%s signal on %s", sig.Kind, sig.Symbol),
			Type:      "NEW_SIGNAL",
			Timestamp: sig.Timestamp,
		})
		if len(alerts) >= 20 {
			break
		}
	}
	return alerts
}

// LastUpdate returns the build time of the served snapshot, refreshing first
// when stale.
func (s *SignalSnapshot) LastUpdate(ctx context.Context) time.Time {
	s.Signals(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdate
}

// Outcomes exposes the realized precision readouts.
func (s *SignalSnapshot) Outcomes() (map[string]models.PrecisionSnapshot, map[string]models.PrecisionSnapshot) {
	return s.tracker.SnapshotSymbols(), s.tracker.SnapshotRegimes()
}
