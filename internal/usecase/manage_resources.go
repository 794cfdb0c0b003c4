package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/osmium-toolchains/osmium-cli/internal/domain/models"
)

// ListResources reads the current state of every collection
type ListResources struct {
	wallets         WalletRepository
	environments    EnvironmentRepository
	contracts       InteractContractRepository
	deployContracts DeployContractRepository
	scripts         ScriptRepository
}

// NewListResources creates a new ListResources use case
func NewListResources(
	wallets WalletRepository,
	environments EnvironmentRepository,
	contracts InteractContractRepository,
	deployContracts DeployContractRepository,
	scripts ScriptRepository,
) *ListResources {
	return &ListResources{
		wallets:         wallets,
		environments:    environments,
		contracts:       contracts,
		deployContracts: deployContracts,
		scripts:         scripts,
	}
}

func (uc *ListResources) Wallets(ctx context.Context) []models.Wallet {
	return uc.wallets.GetAll()
}

func (uc *ListResources) Environments(ctx context.Context) []models.Environment {
	return uc.environments.GetAll()
}

func (uc *ListResources) InteractContracts(ctx context.Context) []models.InteractContract {
	return uc.contracts.GetAll()
}

func (uc *ListResources) DeployContracts(ctx context.Context) []models.DeployContract {
	return uc.deployContracts.GetAll()
}

func (uc *ListResources) Scripts(ctx context.Context) []models.Script {
	return uc.scripts.GetAll()
}

// ManageWallets creates, edits and removes wallets
type ManageWallets struct {
	repo WalletRepository
	log  *slog.Logger
}

// NewManageWallets creates a new ManageWallets use case
func NewManageWallets(repo WalletRepository, log *slog.Logger) *ManageWallets {
	return &ManageWallets{repo: repo, log: log.With("component", "ManageWallets")}
}

// AddWalletParams contains parameters for adding a wallet
type AddWalletParams struct {
	Name       string `json:"name"`
	PrivateKey string `json:"privateKey"`
}

func (uc *ManageWallets) Add(ctx context.Context, params AddWalletParams) (*models.Wallet, error) {
	w, err := uc.repo.Create(params.Name, params.PrivateKey)
	if err != nil {
		return nil, err
	}
	uc.log.Debug("wallet saved", "id", w.ID, "address", w.Address)
	return &w, nil
}

func (uc *ManageWallets) Edit(ctx context.Context, id string, update models.WalletUpdate) error {
	return uc.repo.Update(id, update)
}

func (uc *ManageWallets) Remove(ctx context.Context, id string) error {
	return uc.repo.Delete(id)
}

// ManageEnvironments creates, edits and removes environments
type ManageEnvironments struct {
	repo EnvironmentRepository
	log  *slog.Logger
}

// NewManageEnvironments creates a new ManageEnvironments use case
func NewManageEnvironments(repo EnvironmentRepository, log *slog.Logger) *ManageEnvironments {
	return &ManageEnvironments{repo: repo, log: log.With("component", "ManageEnvironments")}
}

// AddEnvironmentParams contains parameters for adding an environment
type AddEnvironmentParams struct {
	Name   string `json:"name"`
	RPCURL string `json:"rpc"`
}

func (uc *ManageEnvironments) Add(ctx context.Context, params AddEnvironmentParams) (*models.Environment, error) {
	env, err := uc.repo.Create(params.Name, params.RPCURL)
	if err != nil {
		return nil, err
	}
	uc.log.Debug("environment saved", "id", env.ID, "name", env.Name)
	return &env, nil
}

func (uc *ManageEnvironments) Edit(ctx context.Context, id string, update models.EnvironmentUpdate) error {
	return uc.repo.Update(id, update)
}

func (uc *ManageEnvironments) Remove(ctx context.Context, id string) error {
	return uc.repo.Delete(id)
}

// ManageContracts creates, edits and removes interactable contracts
type ManageContracts struct {
	repo InteractContractRepository
	log  *slog.Logger
}

// NewManageContracts creates a new ManageContracts use case
func NewManageContracts(repo InteractContractRepository, log *slog.Logger) *ManageContracts {
	return &ManageContracts{repo: repo, log: log.With("component", "ManageContracts")}
}

// AddContractParams contains parameters for adding an interactable contract
type AddContractParams struct {
	Name    string          `json:"name"`
	Address string          `json:"address"`
	ABI     json.RawMessage `json:"abi"`
	ChainID uint64          `json:"chainId"`
	RPCURL  string          `json:"rpc"`
}

func (uc *ManageContracts) Add(ctx context.Context, params AddContractParams) (*models.InteractContract, error) {
	c, err := uc.repo.Create(models.InteractContract{
		Name:    params.Name,
		Address: params.Address,
		ABI:     params.ABI,
		ChainID: params.ChainID,
		RPCURL:  params.RPCURL,
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug("contract saved", "id", c.ID, "address", c.Address)
	return &c, nil
}

func (uc *ManageContracts) Edit(ctx context.Context, id string, update models.InteractContractUpdate) error {
	return uc.repo.Update(id, update)
}

func (uc *ManageContracts) Remove(ctx context.Context, id string) error {
	return uc.repo.Delete(id)
}
