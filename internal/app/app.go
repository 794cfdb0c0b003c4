package app

import (
	"log/slog"

	"github.com/osmium-toolchains/osmium-cli/internal/adapters/interactive"
	"github.com/osmium-toolchains/osmium-cli/internal/adapters/watcher"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
	"github.com/osmium-toolchains/osmium-cli/internal/router"
	"github.com/osmium-toolchains/osmium-cli/internal/server"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Collections
	Wallets           usecase.WalletRepository
	Environments      usecase.EnvironmentRepository
	InteractContracts usecase.InteractContractRepository
	DeployContracts   usecase.DeployContractRepository
	Scripts           usecase.ScriptRepository

	// Messaging
	Bus    *router.Bus
	Router *router.Router

	// Shared dependencies
	Selector *interactive.SelectorAdapter

	// Use cases
	ListResources      *usecase.ListResources
	ManageWallets      *usecase.ManageWallets
	ManageEnvironments *usecase.ManageEnvironments
	ManageContracts    *usecase.ManageContracts
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	wallets usecase.WalletRepository,
	environments usecase.EnvironmentRepository,
	interactContracts usecase.InteractContractRepository,
	deployContracts usecase.DeployContractRepository,
	scripts usecase.ScriptRepository,
	bus *router.Bus,
	rt *router.Router,
	selector *interactive.SelectorAdapter,
	listResources *usecase.ListResources,
	manageWallets *usecase.ManageWallets,
	manageEnvironments *usecase.ManageEnvironments,
	manageContracts *usecase.ManageContracts,
) (*App, error) {
	return &App{
		Config:             cfg,
		Log:                log,
		Wallets:            wallets,
		Environments:       environments,
		InteractContracts:  interactContracts,
		DeployContracts:    deployContracts,
		Scripts:            scripts,
		Bus:                bus,
		Router:             rt,
		Selector:           selector,
		ListResources:      listResources,
		ManageWallets:      manageWallets,
		ManageEnvironments: manageEnvironments,
		ManageContracts:    manageContracts,
	}, nil
}

// Backend is the long-running part of the application: the channel server and the file watcher
type Backend struct {
	Server  *server.Server
	Watcher *watcher.Watcher
}

// NewBackend creates a backend
func NewBackend(srv *server.Server, w *watcher.Watcher) *Backend {
	return &Backend{Server: srv, Watcher: w}
}

// Close releases the file watcher
func (b *Backend) Close() error {
	return b.Watcher.Close()
}
