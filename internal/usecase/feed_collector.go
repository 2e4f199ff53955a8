package usecase

import (
	"context"
	"math/rand"
	"time"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
	applogger "SigFuse/pkg/logger"
)

// FeedCollector drives the live candle feed: it warm-starts buffers from the
// archive or REST backfill, consumes closed bars into the store, and
// reconnects with bounded exponential backoff and jitter when the stream
// drops.
type FeedCollector struct {
	stream   drepo.CandleStream
	source   drepo.CandleSource
	archive  drepo.CandleArchive // may be nil
	store    *CandleStore
	registry *drepo.SymbolRegistry
	metrics  drepo.Metrics
	l        *applogger.Logger

	backoffMin    time.Duration
	backoffMax    time.Duration
	backfillLimit int
}

// NewFeedCollector creates a collector. archive may be nil when ClickHouse is
// disabled.
func NewFeedCollector(
	stream drepo.CandleStream,
	source drepo.CandleSource,
	archive drepo.CandleArchive,
	store *CandleStore,
	registry *drepo.SymbolRegistry,
	metrics drepo.Metrics,
	l *applogger.Logger,
	backoffMin, backoffMax time.Duration,
	backfillLimit int,
) *FeedCollector {
	return &FeedCollector{
		stream:        stream,
		source:        source,
		archive:       archive,
		store:         store,
		registry:      registry,
		metrics:       metrics,
		l:             l,
		backoffMin:    backoffMin,
		backoffMax:    backoffMax,
		backfillLimit: backfillLimit,
	}
}

// IsConnected returns true if the live stream is connected.
func (c *FeedCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start warm-starts buffers, connects the stream and launches the consume
// loop. A failed warm start for a symbol degrades to an empty buffer.
func (c *FeedCollector) Start(ctx context.Context) error {
	c.warmStart(ctx)
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	go c.run(ctx)
	return nil
}

func (c *FeedCollector) warmStart(ctx context.Context) {
	for _, sym := range c.registry.All() {
		candles := c.loadHistory(ctx, sym)
		if len(candles) == 0 {
			c.l.Warn("no warm-start data, starting cold", applogger.String("symbol", string(sym)))
			continue
		}
		c.store.Seed(sym, candles)
		c.l.Info("warm start",
			applogger.String("symbol", string(sym)),
			applogger.Int("candles", len(candles)),
		)
	}
}

// loadHistory prefers the archive and falls back to the REST source.
func (c *FeedCollector) loadHistory(ctx context.Context, sym drepo.Symbol) []models.Candle {
	if c.archive != nil {
		candles, err := c.archive.Recent(ctx, sym, c.backfillLimit)
		if err != nil {
			c.metrics.RecordError("archive_recent")
			c.l.Warn("archive warm start failed",
				applogger.String("symbol", string(sym)),
				applogger.Error(err),
			)
		} else if len(candles) > 0 {
			return candles
		}
	}
	if c.source == nil {
		return nil
	}
	candles, err := c.source.Klines(ctx, sym, drepo.TF1m, c.backfillLimit)
	if err != nil {
		c.metrics.RecordError("backfill")
		c.l.Warn("rest backfill failed",
			applogger.String("symbol", string(sym)),
			applogger.Error(err),
		)
		return nil
	}
	return candles
}

func (c *FeedCollector) run(ctx context.Context) {
	backoff := c.backoffMin
	for {
		candles, errs := c.stream.Read(ctx)
		c.consume(ctx, candles, errs)
		if ctx.Err() != nil {
			return
		}

		// stream dropped; reconnect with capped backoff and jitter
		c.metrics.RecordFeedReconnect()
		delay := backoff + time.Duration(rand.Int63n(int64(backoff)/2+1))
		c.l.Warn("feed disconnected, reconnecting", applogger.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		_ = c.stream.Close()
		if err := c.stream.Connect(ctx); err != nil {
			c.metrics.RecordError("feed_connect")
			backoff *= 2
			if backoff > c.backoffMax {
				backoff = c.backoffMax
			}
			continue
		}
		backoff = c.backoffMin
	}
}

func (c *FeedCollector) consume(ctx context.Context, candles <-chan drepo.SymbolCandle, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			if err != nil {
				c.metrics.RecordError("stream")
				return
			}
		case sc, ok := <-candles:
			if !ok {
				return
			}
			if !c.registry.Contains(sc.Symbol) {
				continue
			}
			c.store.Append(sc.Symbol, sc.Candle)
			c.metrics.RecordCandle(string(sc.Symbol))
			if c.archive != nil {
				if err := c.archive.Store(ctx, sc.Symbol, []models.Candle{sc.Candle}); err != nil {
					c.metrics.RecordError("archive_store")
				}
			}
		}
	}
}

// Stop closes the live stream.
func (c *FeedCollector) Stop() error { return c.stream.Close() }
