package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/models"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

const (
	testKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultConfig() *config.RuntimeConfig {
	return &config.RuntimeConfig{DefaultRPCURL: "http://default:8545"}
}

// memoryStore is an in-memory stand-in for the file backed repositories
type memoryStore[T any] struct {
	items []T
	id    func(T) string
}

func (s *memoryStore[T]) GetAll() []T {
	return append([]T(nil), s.items...)
}

func (s *memoryStore[T]) GetByID(id string) (T, bool) {
	for _, item := range s.items {
		if s.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (s *memoryStore[T]) index(id string) int {
	for i, item := range s.items {
		if s.id(item) == id {
			return i
		}
	}
	return -1
}

func (s *memoryStore[T]) Delete(id string) error {
	if i := s.index(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	return nil
}

func (s *memoryStore[T]) Load() error { return nil }

type walletStore struct{ memoryStore[models.Wallet] }

func newWalletStore(items ...models.Wallet) *walletStore {
	return &walletStore{memoryStore[models.Wallet]{items: items, id: func(w models.Wallet) string { return w.ID }}}
}

func (s *walletStore) Create(name, privateKey string) (models.Wallet, error) {
	w := models.Wallet{ID: "w" + name, Name: name, PrivateKey: privateKey}
	if err := w.Derive(); err != nil {
		return models.Wallet{}, err
	}
	s.items = append(s.items, w)
	return w, nil
}

func (s *walletStore) Update(id string, update models.WalletUpdate) error {
	if i := s.index(id); i >= 0 {
		return update.Apply(&s.items[i])
	}
	return nil
}

type environmentStore struct{ memoryStore[models.Environment] }

func newEnvironmentStore(items ...models.Environment) *environmentStore {
	return &environmentStore{memoryStore[models.Environment]{items: items, id: func(e models.Environment) string { return e.ID }}}
}

func (s *environmentStore) Create(name, rpcURL string) (models.Environment, error) {
	if err := domain.ValidateRPCURL(rpcURL); err != nil {
		return models.Environment{}, err
	}
	e := models.Environment{ID: "e" + name, Name: name, RPCURL: rpcURL}
	s.items = append(s.items, e)
	return e, nil
}

func (s *environmentStore) Update(id string, update models.EnvironmentUpdate) error {
	if i := s.index(id); i >= 0 {
		return update.Apply(&s.items[i])
	}
	return nil
}

type contractStore struct{ memoryStore[models.InteractContract] }

func newContractStore(items ...models.InteractContract) *contractStore {
	return &contractStore{memoryStore[models.InteractContract]{items: items, id: func(c models.InteractContract) string { return c.ID }}}
}

func (s *contractStore) Create(c models.InteractContract) (models.InteractContract, error) {
	if err := c.Validate(); err != nil {
		return models.InteractContract{}, err
	}
	c.ID = "c" + c.Name
	s.items = append(s.items, c)
	return c, nil
}

func (s *contractStore) Update(id string, update models.InteractContractUpdate) error {
	if i := s.index(id); i >= 0 {
		return update.Apply(&s.items[i])
	}
	return nil
}

func newDeployContractStore(items ...models.DeployContract) *memoryStore[models.DeployContract] {
	return &memoryStore[models.DeployContract]{items: items, id: func(c models.DeployContract) string { return c.ID }}
}

func newScriptStore(items ...models.Script) *memoryStore[models.Script] {
	return &memoryStore[models.Script]{items: items, id: func(s models.Script) string { return s.ID }}
}

// MockForgeRunner is a mock implementation of ForgeRunner
type MockForgeRunner struct {
	mock.Mock
}

func (m *MockForgeRunner) Script(ctx context.Context, run usecase.ScriptRun) (usecase.Execution, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(usecase.Execution), args.Error(1)
}

func (m *MockForgeRunner) Create(ctx context.Context, run usecase.CreateRun) (usecase.Execution, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(usecase.Execution), args.Error(1)
}

// finishedExecution replays canned chunks and a fixed result
type finishedExecution struct {
	chunks []usecase.Chunk
	result usecase.ExecResult
}

func (e *finishedExecution) Chunks() <-chan usecase.Chunk {
	ch := make(chan usecase.Chunk, len(e.chunks))
	for _, c := range e.chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func (e *finishedExecution) Wait() usecase.ExecResult {
	return e.result
}

// MockChainClient is a mock implementation of ChainClient
type MockChainClient struct {
	mock.Mock
}

func (m *MockChainClient) Call(ctx context.Context, req usecase.CallRequest) ([]any, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]any), args.Error(1)
}

func (m *MockChainClient) Transact(ctx context.Context, req usecase.TransactRequest) (common.Hash, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *MockChainClient) ChainID(ctx context.Context, rpcURL string) (*big.Int, error) {
	args := m.Called(ctx, rpcURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockChainClient) EstimateGas(ctx context.Context, req usecase.EstimateRequest) (uint64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(uint64), args.Error(1)
}

// recordingSink collects appended output
type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordingSink) Append(source, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, source+": "+text)
}

func (s *recordingSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}
