package tracker

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"ethverify/internal/calldata"
	"ethverify/internal/chain/chaintest"
	"ethverify/internal/types"

	"github.com/ethereum/go-ethereum/common"
	evmTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const (
	testHashHex = "0x8a6d1b6bbf1f1cbb5c1b3f0cb2f2b4cf0e5e8ee4a8d1d1c8f5e2b0c4b6a7d9e1"
	tick        = time.Millisecond
)

var (
	testHash     = common.HexToHash(testHashHex)
	receiverAddr = common.HexToAddress("0xAbC0000000000000000000000000000000000aBc")
	tokenAddr    = common.HexToAddress("0x55d398326f99059fF775485246999027B3197955")
	oneEther     = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

type fetchResult struct {
	rec *types.TransactionRecord
	err error
}

// scriptedSource replays results in order and repeats the last one.
type scriptedSource struct {
	mu      sync.Mutex
	results []fetchResult
	calls   int
}

func (s *scriptedSource) Fetch(ctx context.Context, hash common.Hash) (*types.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	s.calls++
	r := s.results[idx]
	return r.rec, r.err
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeTokens struct {
	mu       sync.Mutex
	decimals map[common.Address]uint8
	calls    int
}

func (f *fakeTokens) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.decimals[token], nil
}

func newTestNetwork(client *chaintest.Client) (*Network, *fakeTokens) {
	tokens := &fakeTokens{decimals: map[common.Address]uint8{tokenAddr: 6}}
	return &Network{
		Name:           "test",
		Client:         client,
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
		Tokens:         tokens,
		Decoders:       calldata.DefaultRegistry(),
	}, tokens
}

func newTestTracker(t *testing.T, net *Network, opts ...Option) *Tracker {
	t.Helper()
	opts = append([]Option{WithPolicy(FixedPolicy(tick))}, opts...)
	tr, err := NewTracker(net, testHashHex, opts...)
	require.NoError(t, err)
	return tr
}

func minedRecord(status types.TxStatus, block uint64) *types.TransactionRecord {
	return &types.TransactionRecord{
		Hash:        testHash,
		Value:       big.NewInt(0),
		GasPrice:    big.NewInt(1),
		Status:      status,
		BlockNumber: &block,
	}
}

func pendingRecord() *types.TransactionRecord {
	return &types.TransactionRecord{Hash: testHash, Value: big.NewInt(0), GasPrice: big.NewInt(1)}
}

func transientErr() error {
	return &FetchError{Hash: testHash, Op: "get receipt", Transient: true, Err: context.DeadlineExceeded}
}

func legacyTx(to common.Address, value *big.Int, data []byte) *evmTypes.Transaction {
	return evmTypes.NewTx(&evmTypes.LegacyTx{
		Nonce:    1,
		To:       &to,
		Value:    value,
		Gas:      100000,
		GasPrice: big.NewInt(2_000_000_000),
		Data:     data,
	})
}

func transferCalldata(t *testing.T, to common.Address, raw int64) []byte {
	t.Helper()
	data, err := calldata.EncodeTransfer(to, big.NewInt(raw))
	require.NoError(t, err)
	return data
}
