package adapters

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/wire"

	"github.com/osmium-toolchains/osmium-cli/internal/adapters/blockchain"
	"github.com/osmium-toolchains/osmium-cli/internal/adapters/forge"
	"github.com/osmium-toolchains/osmium-cli/internal/adapters/interactive"
	"github.com/osmium-toolchains/osmium-cli/internal/adapters/progress"
	"github.com/osmium-toolchains/osmium-cli/internal/adapters/repository"
	"github.com/osmium-toolchains/osmium-cli/internal/adapters/repository/contracts"
	"github.com/osmium-toolchains/osmium-cli/internal/adapters/repository/scripts"
	"github.com/osmium-toolchains/osmium-cli/internal/adapters/watcher"
	"github.com/osmium-toolchains/osmium-cli/internal/router"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

// ProvideConsole provides the writer command output is echoed to
func ProvideConsole() io.Writer {
	return os.Stdout
}

// RepositorySet provides the file-backed collections
var RepositorySet = wire.NewSet(
	repository.NewWalletRepository,
	wire.Bind(new(usecase.WalletRepository), new(*repository.WalletRepository)),

	repository.NewEnvironmentRepository,
	wire.Bind(new(usecase.EnvironmentRepository), new(*repository.EnvironmentRepository)),

	repository.NewInteractContractRepository,
	wire.Bind(new(usecase.InteractContractRepository), new(*repository.InteractContractRepository)),

	contracts.NewRepository,
	wire.Bind(new(usecase.DeployContractRepository), new(*contracts.Repository)),

	scripts.NewRepository,
	wire.Bind(new(usecase.ScriptRepository), new(*scripts.Repository)),
)

// ForgeSet provides forge-based implementations
var ForgeSet = wire.NewSet(
	forge.NewForgeAdapter,
	wire.Bind(new(usecase.ForgeRunner), new(*forge.ForgeAdapter)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	ProvideChainClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.ClientAdapter)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
)

// OutputSet provides the sink command output is appended to
var OutputSet = wire.NewSet(
	ProvideConsole,
	progress.NewOutputSink,
	wire.Bind(new(progress.Broadcaster), new(*router.Bus)),
)

// WatcherSet provides the file change watcher. It is only built for the serve command.
var WatcherSet = wire.NewSet(
	watcher.NewWatcher,
	wire.Bind(new(watcher.Broadcaster), new(*router.Bus)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	RepositorySet,
	ForgeSet,
	BlockchainSet,
	InteractiveSet,
	OutputSet,
)

// ProvideChainClient provides the chain client and releases its connections on cleanup
func ProvideChainClient(log *slog.Logger) (*blockchain.ClientAdapter, func()) {
	client := blockchain.NewClientAdapter(log)
	return client, client.Close
}
