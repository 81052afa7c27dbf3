package tracker

import (
	"context"

	"ethverify/internal/calldata"
	"ethverify/internal/chain"

	"github.com/ethereum/go-ethereum/common"
)

// TokenDecimals looks up an ERC20 token's decimals on chain.
type TokenDecimals interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// Network is the read-only connection a tracker works against. One value
// per configured chain is built at startup and shared by every tracker.
type Network struct {
	Name           string
	Client         chain.Client
	NativeSymbol   string
	NativeDecimals uint8
	Tokens         TokenDecimals
	Decoders       *calldata.Registry
	// StrictTokenContract requires token transfers to target the token contract.
	StrictTokenContract bool
}

func (n *Network) decoders() *calldata.Registry {
	if n.Decoders == nil {
		return calldata.DefaultRegistry()
	}
	return n.Decoders
}
