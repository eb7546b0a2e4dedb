package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/scholarly-labs/resource-indexer/internal/adapter"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
	"github.com/scholarly-labs/resource-indexer/internal/retry"
)

// Client wraps a node connection with per-call timeouts and reconnect support
//
//go:generate mockgen -source=client.go -destination=../mocks/chain_client.go -package=mocks -mock_names=Client=MockChainClient
type Client interface {
	// BlockNumber returns the most recent block number
	BlockNumber(ctx context.Context) (uint64, error)

	// HeaderByNumber returns a header by number, nil for latest
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)

	// FilterLogs retrieves logs that match the filter query
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// SubscribeFilterLogs opens a live log subscription. The caller owns the
	// subscription lifetime, no call timeout is applied.
	SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)

	// CallContract executes a read-only contract call
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)

	// BalanceAt returns the wei balance of an account
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)

	// PendingNonceAt returns the next nonce for an account
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)

	// SuggestGasPrice returns the currently suggested gas price
	SuggestGasPrice(ctx context.Context) (*big.Int, error)

	// SendTransaction submits a signed transaction
	SendTransaction(ctx context.Context, tx *types.Transaction) error

	// TransactionReceipt returns the receipt of a mined transaction
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	// CheckHealth verifies the node answers a cheap query
	CheckHealth(ctx context.Context) error

	// Reconnect drops the current connection and dials again with backoff
	Reconnect(ctx context.Context) error

	// Close closes the connection
	Close()
}

type client struct {
	dialer      adapter.EthClientDialer
	rawurl      string
	callTimeout time.Duration
	policy      retry.Policy

	mu  sync.RWMutex
	eth adapter.EthClient
}

// Connect dials the node with backoff and verifies the connection before
// returning. The returned client applies callTimeout to every request.
func Connect(ctx context.Context, dialer adapter.EthClientDialer, rawurl string, callTimeout time.Duration, policy retry.Policy) (Client, error) {
	c := &client{
		dialer:      dialer,
		rawurl:      rawurl,
		callTimeout: callTimeout,
		policy:      policy,
	}
	if err := c.dial(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *client) dial(ctx context.Context) error {
	var eth adapter.EthClient
	err := c.policy.Run(ctx, "dial node", func() error {
		var err error
		eth, err = c.dialer.Dial(ctx, c.rawurl)
		if err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
		if _, err := eth.NetworkID(callCtx); err != nil {
			eth.Close()
			return fmt.Errorf("verify connection: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to node: %w", err)
	}

	c.mu.Lock()
	if c.eth != nil {
		c.eth.Close()
	}
	c.eth = eth
	c.mu.Unlock()

	networkID, _ := eth.NetworkID(ctx)
	logger.InfoCtx(ctx, "Connected to node",
		zap.String("url", c.rawurl),
		zap.Stringer("networkID", networkID))
	return nil
}

func (c *client) conn() adapter.EthClient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eth
}

func (c *client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.callTimeout)
}

func (c *client) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.conn().BlockNumber(ctx)
}

func (c *client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.conn().HeaderByNumber(ctx, number)
}

func (c *client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.conn().FilterLogs(ctx, query)
}

func (c *client) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return c.conn().SubscribeFilterLogs(ctx, query, ch)
}

func (c *client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.conn().CallContract(ctx, msg, blockNumber)
}

func (c *client) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.conn().BalanceAt(ctx, account, blockNumber)
}

func (c *client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.conn().PendingNonceAt(ctx, account)
}

func (c *client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.conn().SuggestGasPrice(ctx)
}

func (c *client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.conn().SendTransaction(ctx, tx)
}

func (c *client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.conn().TransactionReceipt(ctx, txHash)
}

// CheckHealth verifies the node answers a cheap query
func (c *client) CheckHealth(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if _, err := c.conn().NetworkID(ctx); err != nil {
		return fmt.Errorf("node health check failed: %w", err)
	}
	return nil
}

// Reconnect drops the current connection and dials again with backoff
func (c *client) Reconnect(ctx context.Context) error {
	logger.WarnCtx(ctx, "Reconnecting to node", zap.String("url", c.rawurl))
	return c.dial(ctx)
}

// Close closes the connection
func (c *client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
}
