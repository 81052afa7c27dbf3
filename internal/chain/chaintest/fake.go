// Package chaintest provides an in-memory chain.Client for tests.
package chaintest

import (
	"context"
	"math/big"
	"sync"

	"ethverify/internal/chain"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var _ chain.Client = (*Client)(nil)

// Client serves transactions, receipts and contract calls from memory.
// Queued errors are returned, one per call, before stored data is consulted.
type Client struct {
	mu sync.Mutex

	txs      map[common.Hash]*types.Transaction
	pending  map[common.Hash]bool
	receipts map[common.Hash]*types.Receipt
	balances map[common.Address]*big.Int

	txErrs      []error
	receiptErrs []error
	heightErrs  []error

	height  uint64
	chainID *big.Int

	// OnBlockNumber, when set, runs before every BlockNumber call and may
	// mutate the client (e.g. mine a pending transaction).
	OnBlockNumber func(c *Client)
	// CallHandler answers CallContract.
	CallHandler func(msg ethereum.CallMsg) ([]byte, error)

	calls map[string]int
}

func NewClient() *Client {
	return &Client{
		txs:      make(map[common.Hash]*types.Transaction),
		pending:  make(map[common.Hash]bool),
		receipts: make(map[common.Hash]*types.Receipt),
		balances: make(map[common.Address]*big.Int),
		chainID:  big.NewInt(1),
		calls:    make(map[string]int),
	}
}

// AddPending stores a transaction that has no receipt yet.
func (c *Client) AddPending(hash common.Hash, tx *types.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[hash] = tx
	c.pending[hash] = true
}

// Mine stores a receipt for hash at blockNumber with the given status.
func (c *Client) Mine(hash common.Hash, blockNumber uint64, status uint64, gasUsed uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mineLocked(hash, blockNumber, status, gasUsed)
}

func (c *Client) mineLocked(hash common.Hash, blockNumber uint64, status uint64, gasUsed uint64) {
	delete(c.pending, hash)
	c.receipts[hash] = &types.Receipt{
		TxHash:      hash,
		Status:      status,
		BlockNumber: new(big.Int).SetUint64(blockNumber),
		GasUsed:     gasUsed,
	}
}

// AddMined stores a transaction together with its receipt.
func (c *Client) AddMined(hash common.Hash, tx *types.Transaction, blockNumber uint64, status uint64, gasUsed uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[hash] = tx
	c.mineLocked(hash, blockNumber, status, gasUsed)
}

// AddLogs appends event logs to the receipt of a mined transaction.
func (c *Client) AddLogs(hash common.Hash, logs ...*types.Log) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.receipts[hash]; ok {
		r.Logs = append(r.Logs, logs...)
	}
}

func (c *Client) SetHeight(height uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height = height
}

func (c *Client) SetBalance(account common.Address, balance *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[account] = balance
}

func (c *Client) QueueTxErrors(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txErrs = append(c.txErrs, errs...)
}

func (c *Client) QueueReceiptErrors(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receiptErrs = append(c.receiptErrs, errs...)
}

func (c *Client) QueueHeightErrors(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heightErrs = append(c.heightErrs, errs...)
}

// Calls returns how often method was invoked.
func (c *Client) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// TotalCalls counts every RPC call made so far.
func (c *Client) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["TransactionByHash"]++
	if err := popErr(&c.txErrs); err != nil {
		return nil, false, err
	}
	tx, ok := c.txs[hash]
	if !ok {
		return nil, false, ethereum.NotFound
	}
	return tx, c.pending[hash], nil
}

func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["TransactionReceipt"]++
	if err := popErr(&c.receiptErrs); err != nil {
		return nil, err
	}
	receipt, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	c.calls["BlockNumber"]++
	hook := c.OnBlockNumber
	c.mu.Unlock()
	if hook != nil {
		hook(c)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := popErr(&c.heightErrs); err != nil {
		return 0, err
	}
	return c.height, nil
}

func (c *Client) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["BalanceAt"]++
	if b, ok := c.balances[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	c.mu.Lock()
	c.calls["CallContract"]++
	handler := c.CallHandler
	c.mu.Unlock()
	if handler == nil {
		return nil, ethereum.NotFound
	}
	return handler(msg)
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["ChainID"]++
	return new(big.Int).Set(c.chainID), nil
}

func (c *Client) Close() {}

func popErr(queue *[]error) error {
	if len(*queue) == 0 {
		return nil
	}
	err := (*queue)[0]
	*queue = (*queue)[1:]
	return err
}
