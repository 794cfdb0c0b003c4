package repository

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/models"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

// File keys under the data directory. They double as the JSON top-level key.
const (
	WalletsKey      = "wallets"
	EnvironmentsKey = "environments"
	ContractsKey    = "contracts"
)

// WalletRepository stores wallets in <data>/wallets.json, keyed by address
type WalletRepository struct {
	*collection[models.Wallet]
}

var _ usecase.WalletRepository = (*WalletRepository)(nil)

// NewWalletRepository creates the repository and loads the current file
func NewWalletRepository(cfg *config.RuntimeConfig, log *slog.Logger) (*WalletRepository, error) {
	r := &WalletRepository{
		collection: newCollection(cfg.DataDir, WalletsKey,
			func(w *models.Wallet) string { return w.ID },
			func(a, b *models.Wallet) bool { return strings.EqualFold(a.Address, b.Address) },
			log),
	}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Load re-reads the file and recomputes every address from its key
func (r *WalletRepository) Load() error {
	return r.collection.Load(func(w *models.Wallet) {
		if err := w.Derive(); err != nil {
			r.log.Warn("keeping stored address for wallet with unreadable key", "wallet", w.Name, "error", err)
		}
	})
}

// Create stores a wallet, replacing any wallet with the same derived address
func (r *WalletRepository) Create(name, privateKey string) (models.Wallet, error) {
	w := models.Wallet{Name: name, PrivateKey: privateKey}
	if err := w.Derive(); err != nil {
		return models.Wallet{}, err
	}
	return r.upsert(w,
		func(w *models.Wallet, id string) { w.ID = id },
		uuid.NewString,
	)
}

func (r *WalletRepository) Update(id string, update models.WalletUpdate) error {
	return r.modify(id, update.Apply)
}

// EnvironmentRepository stores environments in <data>/environments.json, keyed by name
type EnvironmentRepository struct {
	*collection[models.Environment]
}

var _ usecase.EnvironmentRepository = (*EnvironmentRepository)(nil)

// NewEnvironmentRepository creates the repository and loads the current file
func NewEnvironmentRepository(cfg *config.RuntimeConfig, log *slog.Logger) (*EnvironmentRepository, error) {
	r := &EnvironmentRepository{
		collection: newCollection(cfg.DataDir, EnvironmentsKey,
			func(e *models.Environment) string { return e.ID },
			func(a, b *models.Environment) bool { return a.Name == b.Name },
			log),
	}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *EnvironmentRepository) Load() error {
	return r.collection.Load(nil)
}

// Create stores an environment, replacing any environment with the same name
func (r *EnvironmentRepository) Create(name, rpcURL string) (models.Environment, error) {
	if strings.TrimSpace(name) == "" {
		return models.Environment{}, fmt.Errorf("%w: environment name is required", domain.ErrInvalidPayload)
	}
	if err := domain.ValidateRPCURL(rpcURL); err != nil {
		return models.Environment{}, err
	}
	env := models.Environment{Name: name, RPCURL: rpcURL}
	return r.upsert(env,
		func(e *models.Environment, id string) { e.ID = id },
		uuid.NewString,
	)
}

func (r *EnvironmentRepository) Update(id string, update models.EnvironmentUpdate) error {
	return r.modify(id, update.Apply)
}

// InteractContractRepository stores interactable contracts in <data>/contracts.json, keyed by address
type InteractContractRepository struct {
	*collection[models.InteractContract]
}

var _ usecase.InteractContractRepository = (*InteractContractRepository)(nil)

// NewInteractContractRepository creates the repository and loads the current file
func NewInteractContractRepository(cfg *config.RuntimeConfig, log *slog.Logger) (*InteractContractRepository, error) {
	r := &InteractContractRepository{
		collection: newCollection(cfg.DataDir, ContractsKey,
			func(c *models.InteractContract) string { return c.ID },
			sameContractAddress,
			log),
	}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *InteractContractRepository) Load() error {
	return r.collection.Load(nil)
}

// Create validates and stores a contract, replacing any contract at the same address
func (r *InteractContractRepository) Create(c models.InteractContract) (models.InteractContract, error) {
	normalized, err := models.NormalizeABI(c.ABI)
	if err != nil {
		return models.InteractContract{}, err
	}
	c.ABI = normalized
	if err := c.Validate(); err != nil {
		return models.InteractContract{}, err
	}
	return r.upsert(c,
		func(c *models.InteractContract, id string) { c.ID = id },
		uuid.NewString,
	)
}

func (r *InteractContractRepository) Update(id string, update models.InteractContractUpdate) error {
	return r.modify(id, update.Apply)
}

func sameContractAddress(a, b *models.InteractContract) bool {
	return common.IsHexAddress(a.Address) && common.IsHexAddress(b.Address) &&
		common.HexToAddress(a.Address) == common.HexToAddress(b.Address)
}
