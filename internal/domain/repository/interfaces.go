package repository

import (
	"context"
	"time"

	"SigFuse/internal/domain/models"
)

// CandleStream is a push-based live feed of closed base-interval candles.
type CandleStream interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan SymbolCandle, <-chan error)
	Close() error
	IsConnected() bool
}

// SymbolCandle pairs a closed candle with its symbol.
type SymbolCandle struct {
	Symbol Symbol
	Candle models.Candle
}

// CandleSource fetches historical candles over REST, used to backfill when the
// live buffer is empty or stale. May fail; callers degrade to "no data".
type CandleSource interface {
	Klines(ctx context.Context, symbol Symbol, tf Timeframe, limit int) ([]models.Candle, error)
}

// CandleArchive persists closed base candles and serves warm-start backfill.
type CandleArchive interface {
	Store(ctx context.Context, symbol Symbol, candles []models.Candle) error
	Recent(ctx context.Context, symbol Symbol, limit int) ([]models.Candle, error)
	Health(ctx context.Context) error
	Close() error
}

// SignalPublisher fans emitted signals out to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, sig models.Signal) error
	Close() error
}

// ProbabilityScorer is the external black-box scorer contract:
// features in, probability of an upward outcome out.
type ProbabilityScorer interface {
	PredictProba(ctx context.Context, symbol Symbol, features map[string]float64) (float64, error)
}

// MacroRegimeProvider serves the externally refreshed macro regime snapshot.
type MacroRegimeProvider interface {
	Snapshot(ctx context.Context) models.MacroSnapshot
}

// Metrics records operational measurements for the pipeline.
type Metrics interface {
	RecordCandle(symbol string)
	RecordFeedReconnect()
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordSnapshotAge(seconds float64)
}

// Clock abstracts wall-clock time so decision logic stays testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
