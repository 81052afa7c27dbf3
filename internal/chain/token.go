package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"ethverify/internal/calldata"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/zeromicro/go-zero/core/collection"
)

const decimalsCacheExpiry = time.Hour

// TokenReader reads ERC20 state through eth_call. Decimals are cached per
// contract since a token never changes them.
type TokenReader struct {
	client   Client
	decimals *collection.Cache
}

func NewTokenReader(name string, client Client) (*TokenReader, error) {
	cache, err := collection.NewCache(decimalsCacheExpiry,
		collection.WithName("decimals-"+name), collection.WithLimit(4096))
	if err != nil {
		return nil, err
	}
	return &TokenReader{client: client, decimals: cache}, nil
}

func (r *TokenReader) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	v, err := r.decimals.Take(token.Hex(), func() (any, error) {
		var out uint8
		if err := r.call(ctx, token, &out, "decimals"); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(uint8), nil
}

func (r *TokenReader) Name(ctx context.Context, token common.Address) (string, error) {
	var out string
	err := r.call(ctx, token, &out, "name")
	return out, err
}

func (r *TokenReader) Symbol(ctx context.Context, token common.Address) (string, error) {
	var out string
	err := r.call(ctx, token, &out, "symbol")
	return out, err
}

func (r *TokenReader) TotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	out := new(big.Int)
	err := r.call(ctx, token, &out, "totalSupply")
	return out, err
}

func (r *TokenReader) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out := new(big.Int)
	err := r.call(ctx, token, &out, "balanceOf", owner)
	return out, err
}

func (r *TokenReader) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	out := new(big.Int)
	err := r.call(ctx, token, &out, "allowance", owner, spender)
	return out, err
}

// call packs method, runs it against the latest block and unpacks the single
// return value into out.
func (r *TokenReader) call(ctx context.Context, token common.Address, out any, method string, args ...any) error {
	input, err := calldata.ERC20.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("pack %s: %w", method, err)
	}

	result, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: input}, nil)
	if err != nil {
		return fmt.Errorf("call %s on %s: %w", method, token.Hex(), err)
	}
	if len(result) == 0 {
		return fmt.Errorf("call %s on %s: empty result, not a contract", method, token.Hex())
	}

	if err := calldata.ERC20.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("unpack %s from %s: %w", method, token.Hex(), err)
	}
	return nil
}
