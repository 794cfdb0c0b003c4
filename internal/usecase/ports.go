package usecase

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/models"
)

// WalletRepository persists wallets keyed by address
type WalletRepository interface {
	GetAll() []models.Wallet
	GetByID(id string) (models.Wallet, bool)
	Create(name, privateKey string) (models.Wallet, error)
	Update(id string, update models.WalletUpdate) error
	Delete(id string) error
	Load() error
}

// EnvironmentRepository persists environments keyed by name
type EnvironmentRepository interface {
	GetAll() []models.Environment
	GetByID(id string) (models.Environment, bool)
	Create(name, rpcURL string) (models.Environment, error)
	Update(id string, update models.EnvironmentUpdate) error
	Delete(id string) error
	Load() error
}

// InteractContractRepository persists interactable contracts keyed by address
type InteractContractRepository interface {
	GetAll() []models.InteractContract
	GetByID(id string) (models.InteractContract, bool)
	Create(contract models.InteractContract) (models.InteractContract, error)
	Update(id string, update models.InteractContractUpdate) error
	Delete(id string) error
	Load() error
}

// DeployContractRepository exposes contracts discovered in the artifact output
type DeployContractRepository interface {
	GetAll() []models.DeployContract
	GetByID(id string) (models.DeployContract, bool)
	Load() error
}

// ScriptRepository exposes deployment scripts discovered in the script directory
type ScriptRepository interface {
	GetAll() []models.Script
	GetByID(id string) (models.Script, bool)
	Load() error
}

// Stream identifies the subprocess pipe a chunk was read from
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// Chunk is one piece of subprocess output
type Chunk struct {
	Stream Stream
	Data   []byte
}

// ScriptRun describes a forge script broadcast
type ScriptRun struct {
	Target string // path:ContractName
	RPCURL string
	Verify bool
}

// CreateRun describes a forge create deployment
type CreateRun struct {
	Target          string // path:ContractName
	RPCURL          string
	PrivateKey      string
	Value           *big.Int
	GasLimit        uint64
	ConstructorArgs []string
	Verify          bool
}

// ExecResult is the terminal outcome of a subprocess
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// Execution is a running subprocess. Chunks and Wait are independent:
// Chunks is closed once all output was read, Wait blocks until the process exited.
type Execution interface {
	Chunks() <-chan Chunk
	Wait() ExecResult
}

// ForgeRunner starts external toolchain subprocesses
type ForgeRunner interface {
	Script(ctx context.Context, run ScriptRun) (Execution, error)
	Create(ctx context.Context, run CreateRun) (Execution, error)
}

// CallRequest describes a read-only contract call
type CallRequest struct {
	RPCURL  string
	Address common.Address
	ABI     *abi.ABI
	Method  string
	Args    []json.RawMessage
}

// TransactRequest describes a state-changing contract call
type TransactRequest struct {
	RPCURL   string
	Address  common.Address
	ABI      *abi.ABI
	Method   string
	Args     []json.RawMessage
	Key      *ecdsa.PrivateKey
	ChainID  *big.Int
	GasLimit uint64
	Value    *big.Int
}

// EstimateRequest describes a gas estimation
type EstimateRequest struct {
	RPCURL  string
	Address common.Address
	ABI     *abi.ABI
	Method  string
	From    common.Address
	Args    []json.RawMessage
}

// ChainClient performs RPC calls against a contract endpoint
type ChainClient interface {
	Call(ctx context.Context, req CallRequest) ([]any, error)
	Transact(ctx context.Context, req TransactRequest) (common.Hash, error)
	ChainID(ctx context.Context, rpcURL string) (*big.Int, error)
	EstimateGas(ctx context.Context, req EstimateRequest) (uint64, error)
}

// LogSink receives human readable command output
type LogSink interface {
	Append(source string, text string)
}

// NopSink discards output
type NopSink struct{}

func (NopSink) Append(string, string) {}

