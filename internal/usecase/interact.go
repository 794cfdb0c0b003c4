package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/models"
)

// ReadContractParams contains parameters for a read-only call
type ReadContractParams struct {
	ContractID string
	Method     string
	Params     []json.RawMessage
}

// ReadContract performs read-only calls against stored contracts
type ReadContract struct {
	contracts InteractContractRepository
	chain     ChainClient
	sink      LogSink
	log       *slog.Logger
}

// NewReadContract creates a new ReadContract use case
func NewReadContract(contracts InteractContractRepository, chain ChainClient, sink LogSink, log *slog.Logger) *ReadContract {
	return &ReadContract{contracts: contracts, chain: chain, sink: sink, log: log.With("component", "ReadContract")}
}

// Run returns the rendered call result, or a short failure message when the call
// itself fails. Only an unknown contract is returned as an error.
func (uc *ReadContract) Run(ctx context.Context, params ReadContractParams) (string, error) {
	contract, ok := uc.contracts.GetByID(params.ContractID)
	if !ok {
		return "", domain.NotFoundError{Kind: domain.KindInteractContract, ID: params.ContractID}
	}
	result := uc.call(ctx, contract, params)
	uc.sink.Append("read", params.Method+": "+result)
	return result, nil
}

func (uc *ReadContract) call(ctx context.Context, contract models.InteractContract, params ReadContractParams) string {
	parsed, err := contract.ParsedABI()
	if err != nil {
		return err.Error()
	}

	values, err := uc.chain.Call(ctx, CallRequest{
		RPCURL:  contract.RPCURL,
		Address: common.HexToAddress(contract.Address),
		ABI:     parsed,
		Method:  params.Method,
		Args:    params.Params,
	})
	if err != nil {
		uc.log.Debug("read failed", "contract", contract.Name, "method", params.Method, "error", err)
		return err.Error()
	}
	return RenderCallResult(values)
}

// RenderCallResult renders decoded return values: a lone string as-is, everything else as JSON
func RenderCallResult(values []any) string {
	var v any = values
	if len(values) == 1 {
		v = values[0]
	}
	if s, ok := v.(string); ok {
		return s
	}
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}

// WriteContractParams contains parameters for a state-changing call
type WriteContractParams struct {
	ContractID string
	WalletID   string
	Method     string
	Params     []json.RawMessage
	GasLimit   uint64
	Value      string
	ValueUnit  domain.Unit
}

// WriteContract submits signed transactions to stored contracts
type WriteContract struct {
	contracts InteractContractRepository
	wallets   WalletRepository
	chain     ChainClient
	sink      LogSink
	log       *slog.Logger
}

// NewWriteContract creates a new WriteContract use case
func NewWriteContract(
	contracts InteractContractRepository,
	wallets WalletRepository,
	chain ChainClient,
	sink LogSink,
	log *slog.Logger,
) *WriteContract {
	return &WriteContract{
		contracts: contracts,
		wallets:   wallets,
		chain:     chain,
		sink:      sink,
		log:       log.With("component", "WriteContract"),
	}
}

// Run returns the submitted transaction hash, or a short failure message when the
// transaction could not be sent. Unknown contracts and wallets are returned as errors.
func (uc *WriteContract) Run(ctx context.Context, params WriteContractParams) (string, error) {
	contract, ok := uc.contracts.GetByID(params.ContractID)
	if !ok {
		return "", domain.NotFoundError{Kind: domain.KindInteractContract, ID: params.ContractID}
	}
	wallet, ok := uc.wallets.GetByID(params.WalletID)
	if !ok {
		return "", domain.NotFoundError{Kind: domain.KindWallet, ID: params.WalletID}
	}

	hash, err := uc.submit(ctx, contract, wallet, params)
	if err != nil {
		uc.log.Debug("write failed", "contract", contract.Name, "method", params.Method, "error", err)
		uc.sink.Append("write", params.Method+": "+err.Error())
		return err.Error(), nil
	}
	uc.sink.Append("write", params.Method+": "+hash.Hex())
	return hash.Hex(), nil
}

func (uc *WriteContract) submit(ctx context.Context, contract models.InteractContract, wallet models.Wallet, params WriteContractParams) (common.Hash, error) {
	parsed, err := contract.ParsedABI()
	if err != nil {
		return common.Hash{}, err
	}
	key, err := wallet.Key()
	if err != nil {
		return common.Hash{}, err
	}

	value := new(big.Int)
	if strings.TrimSpace(params.Value) != "" {
		if value, err = domain.ToBaseUnits(params.Value, params.ValueUnit); err != nil {
			return common.Hash{}, err
		}
	}

	// Prefer the live chain id; the stored one only covers unreachable endpoints.
	chainID, err := uc.chain.ChainID(ctx, contract.RPCURL)
	if err != nil {
		if contract.ChainID == 0 {
			return common.Hash{}, fmt.Errorf("could not determine chain id: %w", err)
		}
		uc.log.Warn("chain id query failed, using stored value", "contract", contract.Name, "chainId", contract.ChainID, "error", err)
		chainID = new(big.Int).SetUint64(contract.ChainID)
	}

	return uc.chain.Transact(ctx, TransactRequest{
		RPCURL:   contract.RPCURL,
		Address:  common.HexToAddress(contract.Address),
		ABI:      parsed,
		Method:   params.Method,
		Args:     params.Params,
		Key:      key,
		ChainID:  chainID,
		GasLimit: params.GasLimit,
		Value:    value,
	})
}

// EstimateGasParams contains parameters for a gas estimate.
// ContractID, RPCURL and ABI are optional; stored contract data fills whatever is missing.
type EstimateGasParams struct {
	ContractID    string
	Address       string
	ABI           json.RawMessage
	Method        string
	WalletAddress string
	Params        []json.RawMessage
	RPCURL        string
}

// GasEstimate is a buffered gas estimate
type GasEstimate struct {
	Gas string `json:"gas"`
}

// EstimateGas estimates gas for a contract call and adds a safety margin
type EstimateGas struct {
	cfg       *config.RuntimeConfig
	contracts InteractContractRepository
	chain     ChainClient
	log       *slog.Logger
}

// NewEstimateGas creates a new EstimateGas use case
func NewEstimateGas(
	cfg *config.RuntimeConfig,
	contracts InteractContractRepository,
	chain ChainClient,
	log *slog.Logger,
) *EstimateGas {
	return &EstimateGas{
		cfg:       cfg,
		contracts: contracts,
		chain:     chain,
		log:       log.With("component", "EstimateGas"),
	}
}

func (uc *EstimateGas) Run(ctx context.Context, params EstimateGasParams) (*GasEstimate, error) {
	if params.ContractID != "" {
		c, ok := uc.contracts.GetByID(params.ContractID)
		if !ok {
			return nil, domain.NotFoundError{Kind: domain.KindInteractContract, ID: params.ContractID}
		}
		if params.Address == "" {
			params.Address = c.Address
		}
	}
	if !common.IsHexAddress(params.Address) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, params.Address)
	}
	if params.WalletAddress != "" && !common.IsHexAddress(params.WalletAddress) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, params.WalletAddress)
	}
	address := common.HexToAddress(params.Address)
	stored, hasStored := uc.findByAddress(address)

	rawABI := params.ABI
	if len(rawABI) == 0 && hasStored {
		rawABI = stored.ABI
	}
	parsed, err := models.ParseABI(rawABI)
	if err != nil {
		return nil, err
	}

	rpcURL := params.RPCURL
	if rpcURL == "" && hasStored {
		rpcURL = stored.RPCURL
	}
	if rpcURL == "" {
		rpcURL = uc.cfg.DefaultRPCURL
	}

	gas, err := uc.chain.EstimateGas(ctx, EstimateRequest{
		RPCURL:  rpcURL,
		Address: address,
		ABI:     parsed,
		Method:  params.Method,
		From:    common.HexToAddress(params.WalletAddress),
		Args:    params.Params,
	})
	if err != nil {
		return nil, err
	}

	buffered := domain.BufferGas(new(big.Int).SetUint64(gas))
	uc.log.Debug("estimated gas", "method", params.Method, "gas", gas, "buffered", buffered)
	return &GasEstimate{Gas: buffered.String()}, nil
}

func (uc *EstimateGas) findByAddress(address common.Address) (models.InteractContract, bool) {
	for _, c := range uc.contracts.GetAll() {
		if common.IsHexAddress(c.Address) && common.HexToAddress(c.Address) == address {
			return c, true
		}
	}
	return models.InteractContract{}, false
}
