package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

// ClientAdapter implements ChainClient with go-ethereum's ethclient and bound contracts.
// Connections are dialed lazily per endpoint and reused.
type ClientAdapter struct {
	log     *slog.Logger
	mu      sync.Mutex
	clients map[string]*ethclient.Client
}

var _ usecase.ChainClient = (*ClientAdapter)(nil)

// NewClientAdapter creates a new chain client
func NewClientAdapter(log *slog.Logger) *ClientAdapter {
	return &ClientAdapter{
		log:     log.With("component", "ChainClient"),
		clients: make(map[string]*ethclient.Client),
	}
}

// Close releases every open connection
func (c *ClientAdapter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for url, client := range c.clients {
		client.Close()
		delete(c.clients, url)
	}
}

func (c *ClientAdapter) dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	if err := domain.ValidateRPCURL(rpcURL); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[rpcURL]; ok {
		return client, nil
	}

	c.log.Debug("connecting", "rpc", rpcURL, "websocket", domain.IsWebSocketURL(rpcURL))
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, newCallError(fmt.Errorf("failed to connect to RPC: %w", err))
	}
	c.clients[rpcURL] = client
	return client, nil
}

func (c *ClientAdapter) prepare(ctx context.Context, rpcURL string, contractABI *abi.ABI, method string) (*ethclient.Client, abi.Method, error) {
	if contractABI == nil {
		return nil, abi.Method{}, domain.ErrInvalidABI
	}
	m, ok := contractABI.Methods[method]
	if !ok {
		return nil, abi.Method{}, fmt.Errorf("%w: method %q not found in ABI", domain.ErrInvalidPayload, method)
	}
	client, err := c.dial(ctx, rpcURL)
	if err != nil {
		return nil, abi.Method{}, err
	}
	return client, m, nil
}

// Call performs a read-only call and returns normalized return values
func (c *ClientAdapter) Call(ctx context.Context, req usecase.CallRequest) ([]any, error) {
	client, method, err := c.prepare(ctx, req.RPCURL, req.ABI, req.Method)
	if err != nil {
		return nil, err
	}
	args, err := CoerceArgs(method.Inputs, req.Args)
	if err != nil {
		return nil, err
	}

	contract := bind.NewBoundContract(req.Address, *req.ABI, client, client, client)
	var out []any
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, req.Method, args...); err != nil {
		return nil, newCallError(err)
	}

	values := make([]any, len(out))
	for i, v := range out {
		values[i] = Normalize(v)
	}
	return values, nil
}

// Transact signs and submits a transaction and returns its hash
func (c *ClientAdapter) Transact(ctx context.Context, req usecase.TransactRequest) (common.Hash, error) {
	client, method, err := c.prepare(ctx, req.RPCURL, req.ABI, req.Method)
	if err != nil {
		return common.Hash{}, err
	}
	args, err := CoerceArgs(method.Inputs, req.Args)
	if err != nil {
		return common.Hash{}, err
	}
	if req.Key == nil {
		return common.Hash{}, domain.ErrInvalidPrivateKey
	}

	auth, err := bind.NewKeyedTransactorWithChainID(req.Key, req.ChainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx
	auth.GasLimit = req.GasLimit
	if req.Value != nil && req.Value.Sign() > 0 {
		auth.Value = req.Value
	}

	contract := bind.NewBoundContract(req.Address, *req.ABI, client, client, client)
	tx, err := contract.Transact(auth, req.Method, args...)
	if err != nil {
		return common.Hash{}, newCallError(err)
	}
	c.log.Debug("transaction submitted", "hash", tx.Hash().Hex(), "method", req.Method, "to", req.Address.Hex())
	return tx.Hash(), nil
}

// ChainID queries the chain id of an endpoint
func (c *ClientAdapter) ChainID(ctx context.Context, rpcURL string) (*big.Int, error) {
	client, err := c.dial(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		return nil, newCallError(err)
	}
	return id, nil
}

// EstimateGas estimates the gas of calling method with the packed arguments
func (c *ClientAdapter) EstimateGas(ctx context.Context, req usecase.EstimateRequest) (uint64, error) {
	client, method, err := c.prepare(ctx, req.RPCURL, req.ABI, req.Method)
	if err != nil {
		return 0, err
	}
	args, err := CoerceArgs(method.Inputs, req.Args)
	if err != nil {
		return 0, err
	}
	data, err := req.ABI.Pack(req.Method, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	to := req.Address
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{From: req.From, To: &to, Data: data})
	if err != nil {
		return 0, newCallError(err)
	}
	return gas, nil
}
