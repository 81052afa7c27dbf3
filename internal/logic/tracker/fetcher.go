package tracker

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"ethverify/internal/chain"
	"ethverify/internal/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	evmTypes "github.com/ethereum/go-ethereum/core/types"
)

// RecordSource produces the current on-chain record for a hash.
type RecordSource interface {
	Fetch(ctx context.Context, hash common.Hash) (*types.TransactionRecord, error)
}

// RecordFetcher merges eth_getTransactionByHash and eth_getTransactionReceipt
// into one record. Both lookups must succeed.
type RecordFetcher struct {
	client chain.Client
}

func NewRecordFetcher(client chain.Client) *RecordFetcher {
	return &RecordFetcher{client: client}
}

// ParseHash rejects anything that is not a 0x-prefixed 32-byte hex string.
func ParseHash(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	raw, err := hexutil.Decode(s)
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, &InvalidInputError{Field: "transaction hash", Value: s}
	}
	return common.BytesToHash(raw), nil
}

// ParseAddress validates a hex address, any case.
func ParseAddress(field, s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, &InvalidInputError{Field: field, Value: s}
	}
	return common.HexToAddress(s), nil
}

func (f *RecordFetcher) Fetch(ctx context.Context, hash common.Hash) (*types.TransactionRecord, error) {
	tx, isPending, err := f.client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, classify(hash, "get transaction", err)
	}
	if tx == nil {
		return nil, &FetchError{Hash: hash, Op: "get transaction", Transient: true, Err: errors.New("empty transaction")}
	}
	if isPending {
		return nil, &FetchError{Hash: hash, Op: "get receipt", Transient: true, Err: errors.New("transaction is pending")}
	}

	receipt, err := f.client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, classify(hash, "get receipt", err)
	}
	if receipt == nil {
		return nil, &FetchError{Hash: hash, Op: "get receipt", Transient: true, Err: errors.New("empty receipt")}
	}

	return mergeRecord(hash, tx, receipt), nil
}

func classify(hash common.Hash, op string, err error) error {
	return &FetchError{Hash: hash, Op: op, Transient: chain.IsTransient(err), Err: err}
}

func mergeRecord(hash common.Hash, tx *evmTypes.Transaction, receipt *evmTypes.Receipt) *types.TransactionRecord {
	rec := &types.TransactionRecord{
		Hash:     hash,
		To:       tx.To(),
		Value:    bigOrZero(tx.Value()),
		GasPrice: bigOrZero(tx.GasPrice()),
		Input:    tx.Data(),
		GasUsed:  receipt.GasUsed,
		Logs:     receipt.Logs,
	}
	if receipt.EffectiveGasPrice != nil && receipt.EffectiveGasPrice.Sign() > 0 {
		rec.GasPrice = new(big.Int).Set(receipt.EffectiveGasPrice)
	}

	if from, err := evmTypes.Sender(evmTypes.LatestSignerForChainID(tx.ChainId()), tx); err == nil {
		rec.From = &from
	}

	if receipt.BlockNumber != nil {
		n := receipt.BlockNumber.Uint64()
		rec.BlockNumber = &n
		if receipt.Status == evmTypes.ReceiptStatusSuccessful {
			rec.Status = types.StatusSuccess
		} else {
			rec.Status = types.StatusFailure
		}
	}
	return rec
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
