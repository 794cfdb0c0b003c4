package router

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

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

// finishedExecution replays canned stdout and a fixed result
type finishedExecution struct {
	stdout string
	result usecase.ExecResult
}

func (e *finishedExecution) Chunks() <-chan usecase.Chunk {
	ch := make(chan usecase.Chunk, 1)
	if e.stdout != "" {
		ch <- usecase.Chunk{Stream: usecase.Stdout, Data: []byte(e.stdout)}
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
