//go:build wireinject
// +build wireinject

package di

import (
	"TradePulse/pkg/config"
	"TradePulse/pkg/server"

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
		ProvideGormDB,
		ProvideRedisClient,
		ProvideBytesCache,
		ProvideLockCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideMarketData,
		ProvideCandleStore,
		ProvideSignalStore,
		ProvideNotifier,

		// Use cases
		ProvideSignalGenerator,
		ProvideSignalsUseCase,
		ProvideBacktestUseCase,
		ProvideCandlesUseCase,
		ProvideExpiryUseCase,
		ProvideCandleIngestHandler,

		// Background machinery
		ProvideJobQueue,
		ProvideScheduler,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
