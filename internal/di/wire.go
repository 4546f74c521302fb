//go:build wireinject
// +build wireinject

package di

import (
	"StockSage/pkg/config"
	"StockSage/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideWeightStore,
		ProvideWatchStore,
		ProvidePriceCache,
		ProvideAdjustmentLog,
		ProvideOutcomeHistory,
		ProvidePublisher,
		ProvidePriceFeedStream,

		// Advisor core
		ProvideEngineConfig,
		ProvideWeights,
		ProvideEngine,
		ProvideTracker,
		ProvideLearner,
		ProvideAdvisor,
		ProvideLearnQueue,

		// Use cases
		ProvideTickProcessor,
		ProvidePriceCollector,
		ProvidePriceTicksHandler,
		ProvideMonitor,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
