//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/osmium-toolchains/osmium-cli/internal/adapters"
	"github.com/osmium-toolchains/osmium-cli/internal/config"
	"github.com/osmium-toolchains/osmium-cli/internal/logging"
	"github.com/osmium-toolchains/osmium-cli/internal/router"
	"github.com/osmium-toolchains/osmium-cli/internal/server"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		config.ConfigSet,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewListResources,
		usecase.NewManageWallets,
		usecase.NewManageEnvironments,
		usecase.NewManageContracts,
		usecase.NewDeployScript,
		usecase.NewDeployContract,
		usecase.NewReadContract,
		usecase.NewWriteContract,
		usecase.NewEstimateGas,

		// Messaging
		router.NewBus,
		router.NewRouter,

		// App
		NewApp,
	)
	return nil, nil, nil
}

// InitBackend creates the channel server and file watcher over an App's collections and bus
func InitBackend(a *App) (*Backend, error) {
	wire.Build(
		wire.FieldsOf(new(*App),
			"Config", "Log", "Bus", "Router",
			"Wallets", "Environments", "InteractContracts", "DeployContracts", "Scripts",
		),
		adapters.WatcherSet,
		server.NewServer,
		NewBackend,
	)
	return nil, nil
}
