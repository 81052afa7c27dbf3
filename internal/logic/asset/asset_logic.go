package asset

import (
	"context"
	"fmt"
	"math/big"

	"ethverify/internal/logic/tracker"
	"ethverify/internal/svc"
	"ethverify/internal/types"
	"ethverify/internal/unit"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"
)

// maxUint256 is 2^256 - 1, the allowance wallets set for "unlimited".
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// AssetLogic 链上资产查询逻辑
type AssetLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewAssetLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AssetLogic {
	return &AssetLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// CoinInfo 查询原生币信息及地址余额
func (l *AssetLogic) CoinInfo(req *types.CoinReq) (*types.CoinResp, error) {
	net, err := l.svcCtx.Network(req.Chain)
	if err != nil {
		return nil, err
	}

	resp := &types.CoinResp{
		Chain:    req.Chain,
		ChainId:  l.svcCtx.ChainIds[req.Chain],
		Symbol:   net.NativeSymbol,
		Decimals: net.NativeDecimals,
	}
	if req.Address == "" {
		return resp, nil
	}

	account, err := tracker.ParseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}
	balance, err := net.Client.BalanceAt(l.ctx, account, nil)
	if err != nil {
		l.Errorf("查询余额失败: chain=%s, address=%s, err=%v", req.Chain, account.Hex(), err)
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	resp.Address = account.Hex()
	resp.RawValue = balance.String()
	resp.Balance = unit.ToDecimal(balance, net.NativeDecimals).String()
	return resp, nil
}

// TokenInfo 查询 ERC20 代币信息，可选查询 owner 余额和对 spender 的授权额度
func (l *AssetLogic) TokenInfo(req *types.TokenReq) (*types.TokenResp, error) {
	l.Infof("查询代币信息: chain=%s, token=%s, owner=%s, spender=%s", req.Chain, req.TokenAddress, req.Owner, req.Spender)

	if _, err := l.svcCtx.Network(req.Chain); err != nil {
		return nil, err
	}
	reader := l.svcCtx.TokenReaders[req.Chain]

	token, err := tracker.ParseAddress("token address", req.TokenAddress)
	if err != nil {
		return nil, err
	}
	var owner, spender common.Address
	if req.Owner != "" {
		if owner, err = tracker.ParseAddress("owner address", req.Owner); err != nil {
			return nil, err
		}
	}
	if req.Spender != "" {
		if req.Owner == "" {
			return nil, &tracker.InvalidInputError{Field: "owner address", Value: ""}
		}
		if spender, err = tracker.ParseAddress("spender address", req.Spender); err != nil {
			return nil, err
		}
	}

	var (
		name, symbol    string
		decimals        uint8
		supply, balance *big.Int
		allowance       *big.Int
	)
	g, ctx := errgroup.WithContext(l.ctx)
	g.Go(func() (err error) {
		name, err = reader.Name(ctx, token)
		return err
	})
	g.Go(func() (err error) {
		symbol, err = reader.Symbol(ctx, token)
		return err
	})
	g.Go(func() (err error) {
		decimals, err = reader.Decimals(ctx, token)
		return err
	})
	g.Go(func() (err error) {
		supply, err = reader.TotalSupply(ctx, token)
		return err
	})
	if req.Owner != "" {
		g.Go(func() (err error) {
			balance, err = reader.BalanceOf(ctx, token, owner)
			return err
		})
	}
	if req.Spender != "" {
		g.Go(func() (err error) {
			allowance, err = reader.Allowance(ctx, token, owner, spender)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		l.Errorf("查询代币信息失败: token=%s, err=%v", token.Hex(), err)
		return nil, err
	}

	resp := &types.TokenResp{
		Chain:        req.Chain,
		TokenAddress: token.Hex(),
		Name:         name,
		Symbol:       symbol,
		Decimals:     decimals,
		TotalSupply:  unit.ToDecimal(supply, decimals).String(),
	}
	if balance != nil {
		resp.Owner = owner.Hex()
		resp.Balance = unit.ToDecimal(balance, decimals).String()
	}
	if allowance != nil {
		resp.Spender = spender.Hex()
		resp.Unlimited = isUnlimitedApproval(allowance)
		resp.Allowance = unit.ToDecimal(allowance, decimals).String()
	}
	return resp, nil
}

// isUnlimitedApproval 授权额度超过 uint256 最大值的 90% 视为无限授权
func isUnlimitedApproval(allowance *big.Int) bool {
	threshold := new(big.Int).Div(maxUint256, big.NewInt(10))
	threshold.Mul(threshold, big.NewInt(9))
	return allowance.Cmp(threshold) > 0
}
