package tracker

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"ethverify/internal/calldata"
	"ethverify/internal/constant"
	"ethverify/internal/types"
	"ethverify/internal/unit"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"
)

// IsCoinTransfer reports whether rec moves native currency.
func IsCoinTransfer(rec *types.TransactionRecord) bool {
	return rec != nil && rec.Value != nil && rec.Value.Sign() != 0
}

// IsTokenTransfer reports whether rec is a contract call at all; what the
// call does is only known after decoding.
func IsTokenTransfer(rec *types.TransactionRecord) bool {
	return rec != nil && len(rec.Input) > 0
}

// CoinTransferMatches compares the native value and recipient of rec with exp.
func CoinTransferMatches(rec *types.TransactionRecord, exp types.VerificationExpectation, nativeDecimals uint8) bool {
	if !IsCoinTransfer(rec) || rec.To == nil {
		return false
	}
	return sameAddress(*rec.To, exp.Receiver) && unit.Equal(rec.Value, nativeDecimals, exp.Amount)
}

// TokenTransferMatches decodes rec's calldata and compares the transfer with
// exp. Calldata that does not decode is an error, never a plain false.
func TokenTransferMatches(ctx context.Context, rec *types.TransactionRecord, exp types.VerificationExpectation,
	decoders *calldata.Registry, tokens TokenDecimals) (bool, error) {
	if !IsTokenTransfer(rec) {
		return false, nil
	}
	if exp.Token == nil {
		return false, &InvalidInputError{Field: "token address", Value: ""}
	}

	payload, err := decoders.Decode(rec.Input)
	if err != nil {
		return false, err
	}
	decimals, err := tokens.Decimals(ctx, *exp.Token)
	if err != nil {
		return false, fmt.Errorf("decimals of token %s: %w", exp.Token.Hex(), err)
	}

	return sameAddress(payload.Receiver, exp.Receiver) && unit.Equal(payload.RawAmount, decimals, exp.Amount), nil
}

// sameAddress compares parsed addresses, so hex letter case never matters.
func sameAddress(a, b common.Address) bool {
	return a == b
}

// transferKind is the coin or token flavour of a verification.
type transferKind interface {
	name() string
	present(rec *types.TransactionRecord) bool
	matches(ctx context.Context, rec *types.TransactionRecord, exp types.VerificationExpectation) (bool, error)
}

type coinKind struct {
	decimals uint8
}

func (coinKind) name() string {
	return constant.KindCoin
}

func (coinKind) present(rec *types.TransactionRecord) bool {
	return IsCoinTransfer(rec)
}

func (k coinKind) matches(_ context.Context, rec *types.TransactionRecord, exp types.VerificationExpectation) (bool, error) {
	return CoinTransferMatches(rec, exp, k.decimals), nil
}

type tokenKind struct {
	net   *Network
	token common.Address
}

func (tokenKind) name() string {
	return constant.KindToken
}

func (k tokenKind) present(rec *types.TransactionRecord) bool {
	if !IsTokenTransfer(rec) {
		return false
	}
	if k.net.StrictTokenContract {
		return rec.To != nil && sameAddress(*rec.To, k.token)
	}
	return true
}

func (k tokenKind) matches(ctx context.Context, rec *types.TransactionRecord, exp types.VerificationExpectation) (bool, error) {
	if !k.present(rec) {
		return false, nil
	}
	return TokenTransferMatches(ctx, rec, exp, k.net.decoders(), k.net.Tokens)
}

// kindFor picks the coin path for an empty token address and the token path
// otherwise. The token address is validated before anything touches the
// network.
func (t *Tracker) kindFor(tokenAddress string) (transferKind, *common.Address, error) {
	if strings.TrimSpace(tokenAddress) == "" {
		return coinKind{decimals: t.net.NativeDecimals}, nil, nil
	}
	token, err := ParseAddress("token address", tokenAddress)
	if err != nil {
		return nil, nil, err
	}
	if t.net.Tokens == nil {
		return nil, nil, fmt.Errorf("network %s has no token reader", t.net.Name)
	}
	return tokenKind{net: t.net, token: token}, &token, nil
}

// VerifyTransfer waits for the transaction to be mined and reports whether
// it is a successful coin transfer (empty tokenAddress) or token call.
func (t *Tracker) VerifyTransfer(ctx context.Context, tokenAddress string) (bool, error) {
	kind, _, err := t.kindFor(tokenAddress)
	if err != nil {
		return false, err
	}

	ok, err := t.Validate(ctx)
	if err != nil || !ok {
		return false, err
	}

	present := kind.present(t.record)
	logx.WithContext(ctx).Infof("tx %s %s transfer present: %t", t.hash.Hex(), kind.name(), present)
	return present, nil
}

// VerifyTransferWithData waits for the transaction to be mined and checks
// that it sent amount to receiver, in native currency for an empty
// tokenAddress and in that token otherwise.
func (t *Tracker) VerifyTransferWithData(ctx context.Context, receiver string, amount decimal.Decimal, tokenAddress string) (bool, error) {
	to, err := ParseAddress("receiver address", receiver)
	if err != nil {
		return false, err
	}
	kind, token, err := t.kindFor(tokenAddress)
	if err != nil {
		return false, err
	}

	ok, err := t.Validate(ctx)
	if err != nil || !ok {
		return false, err
	}
	if !kind.present(t.record) {
		return false, nil
	}

	exp := types.VerificationExpectation{Receiver: to, Amount: amount, Token: token}
	matched, err := kind.matches(ctx, t.record, exp)
	if err != nil {
		logx.WithContext(ctx).Errorf("verify %s transfer of tx %s: %v", kind.name(), t.hash.Hex(), err)
		return false, err
	}
	logx.WithContext(ctx).Infof("tx %s %s transfer of %s to %s matched: %t",
		t.hash.Hex(), kind.name(), amount.String(), to.Hex(), matched)
	return matched, nil
}

// Fee is gas used times the effective gas price, in native currency.
func (t *Tracker) Fee(ctx context.Context) (decimal.Decimal, error) {
	rec, err := t.Refresh(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if !rec.Mined() {
		return decimal.Zero, ErrNotMined
	}
	return unit.ToDecimal(feeWei(rec), t.net.NativeDecimals), nil
}

func feeWei(rec *types.TransactionRecord) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(rec.GasUsed), bigOrZero(rec.GasPrice))
}

// TokenEvents lists the ERC20 Transfer and Approval events the transaction
// emitted. It fetches once and fails with ErrNotMined while pending.
func (t *Tracker) TokenEvents(ctx context.Context) ([]calldata.TokenEvent, error) {
	rec, err := t.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if !rec.Mined() {
		return nil, ErrNotMined
	}
	return calldata.ParseTokenEvents(rec.Logs), nil
}
