package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	evmTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// TxStatus is the receipt status of a transaction. It is only meaningful
// once the transaction is mined.
type TxStatus uint8

const (
	StatusUnknown TxStatus = iota
	StatusSuccess
	StatusFailure
)

func (s TxStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// TransactionRecord merges a transaction with its receipt.
type TransactionRecord struct {
	Hash     common.Hash
	From     *common.Address // nil when the sender could not be recovered
	To       *common.Address // nil for contract creation
	Value    *big.Int
	GasPrice *big.Int
	GasUsed  uint64
	Status   TxStatus
	// BlockNumber is nil while the transaction is pending.
	BlockNumber *uint64
	Input       []byte
	// Logs are the receipt's event logs, empty while pending.
	Logs []*evmTypes.Log
}

// Mined reports whether the record has been included in a block.
func (r *TransactionRecord) Mined() bool {
	return r != nil && r.BlockNumber != nil
}

// TransferPayload is the decoded argument list of a transfer call.
type TransferPayload struct {
	Receiver  common.Address
	RawAmount *big.Int
}

// VerificationExpectation is what the caller expects a transfer to do.
// A nil Token means a native currency transfer is expected.
type VerificationExpectation struct {
	Receiver common.Address
	Amount   decimal.Decimal
	Token    *common.Address
}
