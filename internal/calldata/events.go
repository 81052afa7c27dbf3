package calldata

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	evmTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// TransferEventTopic is Transfer(address,address,uint256).
	TransferEventTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	// ApprovalEventTopic is Approval(address,address,uint256).
	ApprovalEventTopic = crypto.Keccak256Hash([]byte("Approval(address,address,uint256)"))
)

const (
	EventTransfer = "Transfer"
	EventApproval = "Approval"
)

// TokenEvent is an ERC20 Transfer or Approval log. For approvals From is the
// owner and To the spender.
type TokenEvent struct {
	Type      string
	Token     common.Address
	From      common.Address
	To        common.Address
	RawAmount *big.Int
	LogIndex  uint
}

// ParseTokenEvents picks the ERC20 Transfer and Approval events out of logs.
// ERC721 transfers share the Transfer topic but index the token id, so logs
// without a 32 byte data word are skipped.
func ParseTokenEvents(logs []*evmTypes.Log) []TokenEvent {
	var events []TokenEvent
	for _, vLog := range logs {
		if vLog == nil || vLog.Removed || len(vLog.Topics) < 3 || len(vLog.Data) != 32 {
			continue
		}

		var typ string
		switch vLog.Topics[0] {
		case TransferEventTopic:
			typ = EventTransfer
		case ApprovalEventTopic:
			typ = EventApproval
		default:
			continue
		}

		events = append(events, TokenEvent{
			Type:      typ,
			Token:     vLog.Address,
			From:      common.BytesToAddress(vLog.Topics[1].Bytes()),
			To:        common.BytesToAddress(vLog.Topics[2].Bytes()),
			RawAmount: new(big.Int).SetBytes(vLog.Data),
			LogIndex:  vLog.Index,
		})
	}
	return events
}

// TransferLog builds the log a token contract emits for a transfer.
func TransferLog(token, from, to common.Address, amount *big.Int) *evmTypes.Log {
	return &evmTypes.Log{
		Address: token,
		Topics: []common.Hash{
			TransferEventTopic,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: common.LeftPadBytes(amount.Bytes(), 32),
	}
}
