//go:build wireinject
// +build wireinject

package di

import (
	"github.com/toi500/Hyper-Alpha-Arena/pkg/config"
	"github.com/toi500/Hyper-Alpha-Arena/pkg/server"

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

		// Repositories
		ProvideFlowStore,

		// Use cases
		ProvideFlowIndicators,

		// HTTP surface
		ProvideFlowHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
