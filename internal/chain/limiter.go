package chain

import (
	"context"
	"errors"
	"math/big"
	"time"

	"ethverify/internal/metrics"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/time/rate"
)

// LimitedClient throttles calls to a shared endpoint with a token bucket and
// counts every call by outcome. A zero rate disables throttling.
type LimitedClient struct {
	Client
	chain   string
	limiter *rate.Limiter
}

var _ Client = (*LimitedClient)(nil)

func NewLimitedClient(chainName string, client Client, rps float64, burst int) *LimitedClient {
	lc := &LimitedClient{Client: client, chain: chainName}
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		lc.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return lc
}

// wait consumes exactly one token, blocking until it is available or ctx is done.
func (c *LimitedClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	r := c.limiter.Reserve()
	if !r.OK() {
		return errors.New("rate: cannot reserve token")
	}
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}
	metrics.RPCRateLimitWaits.WithLabelValues(c.chain).Inc()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

func (c *LimitedClient) record(method string, err error) {
	metrics.RPCCallsTotal.WithLabelValues(c.chain, method, CallStatus(err)).Inc()
}

// CallStatus buckets an RPC error for metrics.
func CallStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ethereum.NotFound):
		return "not_found"
	case IsTransient(err):
		return "transient"
	default:
		return "error"
	}
}

func (c *LimitedClient) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	if err := c.wait(ctx); err != nil {
		return nil, false, err
	}
	tx, isPending, err := c.Client.TransactionByHash(ctx, hash)
	c.record("eth_getTransactionByHash", err)
	return tx, isPending, err
}

func (c *LimitedClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	receipt, err := c.Client.TransactionReceipt(ctx, txHash)
	c.record("eth_getTransactionReceipt", err)
	return receipt, err
}

func (c *LimitedClient) BlockNumber(ctx context.Context) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	height, err := c.Client.BlockNumber(ctx)
	c.record("eth_blockNumber", err)
	return height, err
}

func (c *LimitedClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	balance, err := c.Client.BalanceAt(ctx, account, blockNumber)
	c.record("eth_getBalance", err)
	return balance, err
}

func (c *LimitedClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	out, err := c.Client.CallContract(ctx, msg, blockNumber)
	c.record("eth_call", err)
	return out, err
}

func (c *LimitedClient) ChainID(ctx context.Context) (*big.Int, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	id, err := c.Client.ChainID(ctx)
	c.record("eth_chainId", err)
	return id, err
}
