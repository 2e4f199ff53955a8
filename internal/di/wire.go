//go:build wireinject
// +build wireinject

package di

import (
	"SigFuse/pkg/config"
	"SigFuse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,
		ProvideClock,

		// Market data plumbing
		ProvideCandleStore,
		ProvideMarketData,
		ProvideStream,
		ProvideRestSource,

		// Optional infrastructure
		ProvideCandleArchive,
		ProvideSignalPublisher,
		ProvideSnapshotMirror,
		ProvideScorer,
		ProvideMacroRegime,

		// Signal generation
		ProvideRules,
		ProvideModelSet,
		ProvideOutcomeTracker,
		ProvideFusionEngine,
		ProvideSignalSnapshot,

		// Pipeline and API
		ProvideFeedCollector,
		ProvidePipeline,
		ProvideCandlesUseCase,
		ProvideHTTPHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
