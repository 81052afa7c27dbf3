package verify

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"ethverify/internal/constant"
	"ethverify/internal/logic/tracker"
	"ethverify/internal/metrics"
	"ethverify/internal/model"
	"ethverify/internal/svc"
	"ethverify/internal/types"
	"ethverify/internal/unit"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"
)

// ErrHistoryDisabled 未配置数据库时查询历史返回
var ErrHistoryDisabled = errors.New("verification history is disabled")

// VerifyLogic 交易确认与转账校验逻辑
type VerifyLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewVerifyLogic(ctx context.Context, svcCtx *svc.ServiceContext) *VerifyLogic {
	return &VerifyLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// WaitForConfirmations 等待交易达到指定确认数
func (l *VerifyLogic) WaitForConfirmations(req *types.ConfirmationsReq) (*types.ConfirmationsResp, error) {
	if req.Threshold == 0 {
		req.Threshold = l.svcCtx.Config.Verify.ConfirmThreshold
	}
	l.Infof("等待确认: chain=%s, tx=%s, threshold=%d", req.Chain, req.TxHash, req.Threshold)

	tr, _, err := l.newTracker(req.Chain, req.TxHash, req.PollOptions)
	if err != nil {
		return nil, err
	}
	ctx, cancel := l.waitContext(req.PollOptions)
	defer cancel()

	start := time.Now()
	achieved, err := tr.WaitForConfirmations(ctx, req.Threshold)
	l.audit(req.Chain, tr, constant.KindConfirmations, nil, err == nil, err, start)
	if err != nil {
		return nil, err
	}

	return &types.ConfirmationsResp{
		Chain:         req.Chain,
		TxHash:        tr.Hash().Hex(),
		Confirmations: achieved,
		Threshold:     req.Threshold,
		BlockNumber:   blockNumber(tr),
		ExplorerUrl:   constant.ExplorerUrl(req.Chain, tr.Hash().Hex()),
	}, nil
}

// ValidateTransaction 等待交易上链并返回回执状态，失败的交易不是错误
func (l *VerifyLogic) ValidateTransaction(req *types.ValidateReq) (*types.ValidateResp, error) {
	l.Infof("校验交易: chain=%s, tx=%s", req.Chain, req.TxHash)

	tr, _, err := l.newTracker(req.Chain, req.TxHash, req.PollOptions)
	if err != nil {
		return nil, err
	}
	ctx, cancel := l.waitContext(req.PollOptions)
	defer cancel()

	start := time.Now()
	ok, err := tr.Validate(ctx)
	l.audit(req.Chain, tr, constant.KindValidate, nil, ok, err, start)
	if err != nil {
		return nil, err
	}
	return validateResp(req.Chain, tr, ok), nil
}

// ValidateBatch 并发校验同一条链上的多笔交易，单笔失败记录在结果中
func (l *VerifyLogic) ValidateBatch(req *types.ValidateBatchReq) (*types.ValidateBatchResp, error) {
	l.Infof("批量校验交易: chain=%s, count=%d", req.Chain, len(req.TxHashes))

	if _, err := l.svcCtx.Network(req.Chain); err != nil {
		return nil, err
	}
	if len(req.TxHashes) == 0 {
		return nil, &tracker.InvalidInputError{Field: "tx_hashes", Value: ""}
	}

	ctx, cancel := l.waitContext(req.PollOptions)
	defer cancel()

	results := make([]types.ValidateResp, len(req.TxHashes))
	var g errgroup.Group
	g.SetLimit(l.batchConcurrency())
	for i, hash := range req.TxHashes {
		i, hash := i, hash
		g.Go(func() error {
			results[i] = l.validateOne(ctx, req.Chain, hash, req.PollOptions)
			return nil
		})
	}
	_ = g.Wait()

	resp := &types.ValidateBatchResp{Chain: req.Chain, Results: results}
	for _, r := range results {
		if r.Success {
			resp.Success++
		} else {
			resp.Failed++
		}
	}
	l.Infof("批量校验完成: chain=%s, success=%d, failed=%d", req.Chain, resp.Success, resp.Failed)
	return resp, nil
}

func (l *VerifyLogic) validateOne(ctx context.Context, chainName, hash string, opts types.PollOptions) types.ValidateResp {
	tr, _, err := l.newTracker(chainName, hash, opts)
	if err != nil {
		return types.ValidateResp{Chain: chainName, TxHash: hash, State: string(constant.StatePending), Error: err.Error()}
	}

	start := time.Now()
	ok, err := tr.Validate(ctx)
	l.audit(chainName, tr, constant.KindValidate, nil, ok, err, start)
	resp := validateResp(chainName, tr, ok)
	if err != nil {
		resp.Error = err.Error()
	}
	return *resp
}

// VerifyTransfer 校验交易是否为原生币转账（token_address 为空）或代币合约调用
func (l *VerifyLogic) VerifyTransfer(req *types.VerifyReq) (*types.VerifyResp, error) {
	l.Infof("校验转账类型: chain=%s, tx=%s, token=%s", req.Chain, req.TxHash, req.TokenAddress)

	tr, _, err := l.newTracker(req.Chain, req.TxHash, req.PollOptions)
	if err != nil {
		return nil, err
	}
	ctx, cancel := l.waitContext(req.PollOptions)
	defer cancel()

	start := time.Now()
	ok, err := tr.VerifyTransfer(ctx, req.TokenAddress)
	l.audit(req.Chain, tr, kindOf(req.TokenAddress), &expectation{token: req.TokenAddress}, ok, err, start)
	if err != nil {
		return nil, err
	}
	return verifyResp(req.Chain, tr, req.TokenAddress, ok), nil
}

// VerifyTransferWithData 校验交易是否向 receiver 转了 amount（按 decimals 换算后的数量）
func (l *VerifyLogic) VerifyTransferWithData(req *types.VerifyDataReq) (*types.VerifyResp, error) {
	l.Infof("校验转账数据: chain=%s, tx=%s, receiver=%s, amount=%s, token=%s",
		req.Chain, req.TxHash, req.Receiver, req.Amount, req.TokenAddress)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		return nil, &tracker.InvalidInputError{Field: "amount", Value: req.Amount}
	}
	tr, _, err := l.newTracker(req.Chain, req.TxHash, req.PollOptions)
	if err != nil {
		return nil, err
	}
	ctx, cancel := l.waitContext(req.PollOptions)
	defer cancel()

	start := time.Now()
	ok, err := tr.VerifyTransferWithData(ctx, req.Receiver, amount, req.TokenAddress)
	exp := &expectation{token: req.TokenAddress, receiver: req.Receiver, amount: amount.String()}
	l.audit(req.Chain, tr, kindOf(req.TokenAddress), exp, ok, err, start)
	if err != nil {
		return nil, err
	}
	return verifyResp(req.Chain, tr, req.TokenAddress, ok), nil
}

// TransactionFee 查询已上链交易的手续费
func (l *VerifyLogic) TransactionFee(req *types.FeeReq) (*types.FeeResp, error) {
	tr, net, err := l.newTracker(req.Chain, req.TxHash, types.PollOptions{})
	if err != nil {
		return nil, err
	}

	fee, err := tr.Fee(l.ctx)
	if err != nil {
		return nil, err
	}
	rec := tr.Record()
	return &types.FeeResp{
		Chain:    req.Chain,
		TxHash:   tr.Hash().Hex(),
		GasUsed:  rec.GasUsed,
		GasPrice: rec.GasPrice.String(),
		Fee:      fee.String(),
		Symbol:   net.NativeSymbol,
	}, nil
}

// TokenEvents 解析交易回执中的 ERC20 Transfer/Approval 事件
func (l *VerifyLogic) TokenEvents(req *types.EventsReq) (*types.EventsResp, error) {
	tr, net, err := l.newTracker(req.Chain, req.TxHash, types.PollOptions{})
	if err != nil {
		return nil, err
	}

	events, err := tr.TokenEvents(l.ctx)
	if err != nil {
		return nil, err
	}

	resp := &types.EventsResp{
		Chain:       req.Chain,
		TxHash:      tr.Hash().Hex(),
		BlockNumber: blockNumber(tr),
		Events:      make([]types.TokenEventItem, 0, len(events)),
	}
	decimals := make(map[common.Address]int)
	for _, ev := range events {
		item := types.TokenEventItem{
			Type:      ev.Type,
			Token:     ev.Token.Hex(),
			From:      ev.From.Hex(),
			To:        ev.To.Hex(),
			RawAmount: ev.RawAmount.String(),
			LogIndex:  ev.LogIndex,
		}
		if d := l.tokenDecimals(net, ev.Token, decimals); d >= 0 {
			item.Amount = unit.ToDecimal(ev.RawAmount, uint8(d)).String()
		}
		resp.Events = append(resp.Events, item)
	}
	return resp, nil
}

// tokenDecimals returns -1 when the token cannot report its decimals.
func (l *VerifyLogic) tokenDecimals(net *tracker.Network, token common.Address, seen map[common.Address]int) int {
	if d, ok := seen[token]; ok {
		return d
	}
	d := -1
	if net.Tokens != nil {
		if v, err := net.Tokens.Decimals(l.ctx, token); err == nil {
			d = int(v)
		} else {
			l.Infof("读取代币精度失败: token=%s, err=%v", token.Hex(), err)
		}
	}
	seen[token] = d
	return d
}

// History 查询交易的历史校验记录，tx_hash 为空时返回最近的记录
func (l *VerifyLogic) History(req *types.HistoryReq) (*types.HistoryResp, error) {
	if l.svcCtx.VerificationsDao == nil {
		return nil, ErrHistoryDisabled
	}

	var (
		rows []*model.Verifications
		resp = &types.HistoryResp{}
		err  error
	)
	if req.TxHash == "" {
		rows, err = l.svcCtx.VerificationsDao.FindRecent(l.ctx, req.Limit)
	} else {
		hash, parseErr := tracker.ParseHash(req.TxHash)
		if parseErr != nil {
			return nil, parseErr
		}
		resp.TxHash = hash.Hex()
		rows, err = l.svcCtx.VerificationsDao.FindByTxHash(l.ctx, req.Chain, hash.Hex(), req.Limit)
	}
	if err != nil {
		l.Errorf("查询校验历史失败: %v", err)
		return nil, err
	}

	resp.Items = make([]types.HistoryItem, 0, len(rows))
	for _, row := range rows {
		resp.Items = append(resp.Items, types.HistoryItem{
			Chain:        row.Chain,
			TxHash:       row.TxHash,
			Kind:         row.Kind,
			TokenAddress: row.TokenAddress.String,
			Receiver:     row.Receiver.String,
			Amount:       row.Amount.String,
			Result:       row.Result,
			State:        row.State,
			Error:        row.Error.String,
			CreatedAt:    row.CreatedAt.Unix(),
		})
	}
	return resp, nil
}

func (l *VerifyLogic) newTracker(chainName, hash string, opts types.PollOptions) (*tracker.Tracker, *tracker.Network, error) {
	net, err := l.svcCtx.Network(chainName)
	if err != nil {
		return nil, nil, err
	}

	policy := l.svcCtx.RetryPolicy()
	if opts.PollIntervalMs > 0 {
		policy.Interval = time.Duration(opts.PollIntervalMs) * time.Millisecond
	}
	tr, err := tracker.NewTracker(net, hash, tracker.WithPolicy(policy))
	if err != nil {
		return nil, nil, err
	}
	return tr, net, nil
}

// waitContext bounds a wait by timeout_seconds; without it the wait lasts as
// long as the request.
func (l *VerifyLogic) waitContext(opts types.PollOptions) (context.Context, context.CancelFunc) {
	if opts.TimeoutSeconds > 0 {
		return context.WithTimeout(l.ctx, time.Duration(opts.TimeoutSeconds)*time.Second)
	}
	return context.WithCancel(l.ctx)
}

func (l *VerifyLogic) batchConcurrency() int {
	if n := l.svcCtx.Config.Verify.BatchConcurrency; n > 0 {
		return n
	}
	return 1
}

type expectation struct {
	token    string
	receiver string
	amount   string
}

// audit counts the outcome of a wait and stores it. Input errors never
// reached the chain and are not stored.
func (l *VerifyLogic) audit(chainName string, tr *tracker.Tracker, kind string, exp *expectation, result bool, err error, start time.Time) {
	state := string(tr.State())
	if errors.Is(err, tracker.ErrInvalidInput) {
		state = "invalid_input"
	}
	metrics.VerificationsTotal.WithLabelValues(chainName, kind, state).Inc()
	metrics.WaitDuration.WithLabelValues(chainName, kind).Observe(time.Since(start).Seconds())

	if l.svcCtx.VerificationsDao == nil || errors.Is(err, tracker.ErrInvalidInput) {
		return
	}

	row := &model.Verifications{
		Chain:  chainName,
		TxHash: tr.Hash().Hex(),
		Kind:   kind,
		Result: result,
		State:  state,
	}
	if exp != nil {
		row.TokenAddress = nullString(exp.token)
		row.Receiver = nullString(exp.receiver)
		row.Amount = nullString(exp.amount)
	}
	if err != nil {
		row.Error = nullString(err.Error())
	}

	// 请求超时后仍需落库
	if insertErr := l.svcCtx.VerificationsDao.Insert(context.WithoutCancel(l.ctx), row); insertErr != nil {
		l.Errorf("保存校验记录失败: tx=%s, err=%v", row.TxHash, insertErr)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func kindOf(tokenAddress string) string {
	if strings.TrimSpace(tokenAddress) == "" {
		return constant.KindCoin
	}
	return constant.KindToken
}

func blockNumber(tr *tracker.Tracker) uint64 {
	if rec := tr.Record(); rec.Mined() {
		return *rec.BlockNumber
	}
	return 0
}

func validateResp(chainName string, tr *tracker.Tracker, ok bool) *types.ValidateResp {
	return &types.ValidateResp{
		Chain:       chainName,
		TxHash:      tr.Hash().Hex(),
		Success:     ok,
		State:       string(tr.State()),
		BlockNumber: blockNumber(tr),
		ExplorerUrl: constant.ExplorerUrl(chainName, tr.Hash().Hex()),
	}
}

func verifyResp(chainName string, tr *tracker.Tracker, tokenAddress string, ok bool) *types.VerifyResp {
	return &types.VerifyResp{
		Chain:        chainName,
		TxHash:       tr.Hash().Hex(),
		Kind:         kindOf(tokenAddress),
		TokenAddress: tokenAddress,
		Verified:     ok,
		State:        string(tr.State()),
		ExplorerUrl:  constant.ExplorerUrl(chainName, tr.Hash().Hex()),
	}
}
