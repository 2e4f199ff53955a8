package usecase

import (
	"context"

	drepo "SigFuse/internal/domain/repository"
	applogger "SigFuse/pkg/logger"
)

// Pipeline is the explicit wiring of the signal pipeline: the feed collector
// filling the candle store, the fusion engine reading it, and the snapshot
// serving it. It owns startup order and teardown of every stage, so nothing
// reaches into package-level state.
type Pipeline struct {
	collector *FeedCollector
	snapshot  *SignalSnapshot
	archive   drepo.CandleArchive // may be nil
	pub       drepo.SignalPublisher
	l         *applogger.Logger

	cancel context.CancelFunc
}

// NewPipeline assembles the pipeline from its stages.
func NewPipeline(
	collector *FeedCollector,
	snapshot *SignalSnapshot,
	archive drepo.CandleArchive,
	pub drepo.SignalPublisher,
	l *applogger.Logger,
) *Pipeline {
	return &Pipeline{
		collector: collector,
		snapshot:  snapshot,
		archive:   archive,
		pub:       pub,
		l:         l,
	}
}

// Snapshot exposes the serving layer to the API.
func (p *Pipeline) Snapshot() *SignalSnapshot { return p.snapshot }

// Start brings the pipeline up. The derived context bounds every background
// goroutine so Stop tears them all down.
func (p *Pipeline) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	if err := p.collector.Start(runCtx); err != nil {
		cancel()
		return err
	}
	p.l.Info("pipeline started")
	return nil
}

// Stop tears the pipeline down in reverse dependency order.
func (p *Pipeline) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	var firstErr error
	if err := p.collector.Stop(); err != nil {
		firstErr = err
	}
	if p.pub != nil {
		if err := p.pub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.archive != nil {
		if err := p.archive.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.l.Info("pipeline stopped")
	return firstErr
}

// Healthy reports liveness of the pipeline's external dependencies.
func (p *Pipeline) Healthy(ctx context.Context) map[string]bool {
	health := map[string]bool{
		"feed": p.collector.IsConnected(),
	}
	if p.archive != nil {
		health["archive"] = p.archive.Health(ctx) == nil
	}
	return health
}
