package di

import (
	"context"
	"fmt"
	"time"

	drepo "SigFuse/internal/domain/repository"
	"SigFuse/internal/handler/api"
	internalrepo "SigFuse/internal/repository"
	"SigFuse/internal/service/binance"
	"SigFuse/internal/service/cache"
	"SigFuse/internal/services/analytics"
	"SigFuse/internal/usecase"
	pkgch "SigFuse/pkg/clickhouse"
	"SigFuse/pkg/config"
	xhttp "SigFuse/pkg/http"
	pkgkafka "SigFuse/pkg/kafka"
	applogger "SigFuse/pkg/logger"
	"SigFuse/pkg/metrics"
	"SigFuse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideRegistry builds the tracked-symbol registry.
func ProvideRegistry(cfg *config.Config) (*drepo.SymbolRegistry, error) {
	return drepo.NewSymbolRegistry(cfg.Feed.Symbols)
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideClock returns the wall clock.
func ProvideClock() drepo.Clock {
	return drepo.SystemClock{}
}

// ProvideCandleStore creates the in-memory candle ring buffers.
func ProvideCandleStore(cfg *config.Config) *usecase.CandleStore {
	return usecase.NewCandleStore(cfg.Pipeline.BufferCapacity)
}

// ProvideMarketData creates the multi-timeframe candle view.
func ProvideMarketData(store *usecase.CandleStore) *usecase.MarketData {
	return usecase.NewMarketData(store)
}

// ProvideStream creates the Binance combined-stream websocket client.
func ProvideStream(cfg *config.Config, registry *drepo.SymbolRegistry, l *applogger.Logger) drepo.CandleStream {
	return binance.NewStream(cfg.Feed.WebSocketURL, registry.All(), cfg.Feed.PingInterval, l)
}

// ProvideRestSource creates the Binance REST backfill source.
func ProvideRestSource(cfg *config.Config) drepo.CandleSource {
	return binance.NewRestSource(cfg.Backfill.Timeout)
}

// ProvideCandleArchive creates the ClickHouse candle archive, or nil when
// ClickHouse is disabled.
func ProvideCandleArchive(cfg *config.Config, l *applogger.Logger) (drepo.CandleArchive, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, 30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	archive, err := internalrepo.NewCHCandleArchive(ctx, client, l)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return archive, nil
}

// ProvideSignalPublisher creates the Kafka signal publisher, or a no-op when
// Kafka is disabled.
func ProvideSignalPublisher(cfg *config.Config) (drepo.SignalPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopSignalPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideSnapshotMirror creates the Redis snapshot mirror, or nil when Redis
// is disabled.
func ProvideSnapshotMirror(cfg *config.Config) cache.BytesCache {
	if !cfg.Redis.Enabled {
		return nil
	}
	return cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideScorer creates the external probability scorer client, or nil when
// no scorer URL is configured.
func ProvideScorer(cfg *config.Config) drepo.ProbabilityScorer {
	if cfg.Scorer.URL == "" {
		return nil
	}
	return analytics.NewHTTPScorer(cfg.Scorer.URL, cfg.Scorer.Timeout)
}

// ProvideMacroRegime creates the macro regime client, or nil when no macro
// URL is configured.
func ProvideMacroRegime(cfg *config.Config, l *applogger.Logger) drepo.MacroRegimeProvider {
	if cfg.Macro.URL == "" {
		return nil
	}
	return analytics.NewMacroRegimeClient(cfg.Macro.URL, cfg.Macro.TTL, cfg.Macro.Timeout, l)
}

// ProvideRules returns the ordered strategy rule set.
func ProvideRules() []analytics.Rule {
	return analytics.DefaultRules()
}

// ProvideModelSet creates the per-symbol online model set.
func ProvideModelSet(cfg *config.Config) *analytics.ModelSet {
	return analytics.NewModelSet(cfg.Pipeline.ModelWindow)
}

// ProvideOutcomeTracker creates the signal outcome ledger.
func ProvideOutcomeTracker(cfg *config.Config) *usecase.OutcomeTracker {
	return usecase.NewOutcomeTracker(cfg.Pipeline.HorizonBars)
}

// ProvideFusionEngine creates the signal fusion engine.
func ProvideFusionEngine(
	data *usecase.MarketData,
	rules []analytics.Rule,
	modelSet *analytics.ModelSet,
	scorer drepo.ProbabilityScorer,
	macro drepo.MacroRegimeProvider,
	tracker *usecase.OutcomeTracker,
	pub drepo.SignalPublisher,
	clock drepo.Clock,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.FusionEngine {
	return usecase.NewFusionEngine(data, rules, modelSet, scorer, macro, tracker, pub, clock, l,
		usecase.FusionConfig{
			Cooldown:            cfg.Pipeline.Cooldown,
			HorizonBars:         cfg.Pipeline.HorizonBars,
			ModelWindow:         cfg.Pipeline.ModelWindow,
			RegimePenaltySource: cfg.Pipeline.RegimePenaltySource,
		})
}

// ProvideSignalSnapshot creates the TTL-cached serving snapshot.
func ProvideSignalSnapshot(
	engine *usecase.FusionEngine,
	registry *drepo.SymbolRegistry,
	tracker *usecase.OutcomeTracker,
	m drepo.Metrics,
	mirror cache.BytesCache,
	clock drepo.Clock,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.SignalSnapshot {
	return usecase.NewSignalSnapshot(engine, registry, tracker, m, mirror, clock, l, cfg.Pipeline.SnapshotTTL)
}

// ProvideFeedCollector creates the candle ingestion loop.
func ProvideFeedCollector(
	stream drepo.CandleStream,
	source drepo.CandleSource,
	archive drepo.CandleArchive,
	store *usecase.CandleStore,
	registry *drepo.SymbolRegistry,
	m drepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.FeedCollector {
	return usecase.NewFeedCollector(stream, source, archive, store, registry, m, l,
		cfg.Feed.BackoffMin, cfg.Feed.BackoffMax, cfg.Backfill.Limit)
}

// ProvidePipeline assembles the signal pipeline.
func ProvidePipeline(
	collector *usecase.FeedCollector,
	snapshot *usecase.SignalSnapshot,
	archive drepo.CandleArchive,
	pub drepo.SignalPublisher,
	l *applogger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(collector, snapshot, archive, pub, l)
}

// ProvideCandlesUseCase creates the candle history use case.
func ProvideCandlesUseCase(data *usecase.MarketData, registry *drepo.SymbolRegistry) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(data, registry)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(l *applogger.Logger, pipeline *usecase.Pipeline, candles *usecase.CandlesUseCase) xhttp.Handler {
	return api.NewSignalsEchoHandler(l, pipeline, candles)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, pipeline *usecase.Pipeline, handler xhttp.Handler) *server.App {
	return server.New(cfg, l, pipeline, handler)
}
