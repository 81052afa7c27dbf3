package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"ethverify/internal/calldata"
	"ethverify/internal/chain/chaintest"
	"ethverify/internal/config"
	"ethverify/internal/logic/tracker"
	"ethverify/internal/logic/verify"
	"ethverify/internal/svc"

	"github.com/ethereum/go-ethereum/common"
	evmTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/rest/httpx"
)

const txHash = "0x4444444444444444444444444444444444444444444444444444444444444444"

func TestMain(m *testing.M) {
	httpx.SetErrorHandlerCtx(ErrorHandler)
	os.Exit(m.Run())
}

func TestErrorHandler(t *testing.T) {
	hash := common.HexToHash(txHash)
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "parse", err: badRequest{errors.New(`field "chain" is not set`)}, status: 400, code: "bad_request"},
		{name: "invalid input", err: &tracker.InvalidInputError{Field: "token address", Value: "0x12"}, status: 400, code: "invalid_input"},
		{name: "unsupported chain", err: &svc.UnsupportedChainError{Chain: "Solana"}, status: 400, code: "unsupported_chain"},
		{name: "decode", err: &calldata.DecodeError{Selector: "0x095ea7b3", Reason: "no decoder registered"}, status: 422, code: "undecodable_calldata"},
		{name: "cancelled", err: fmt.Errorf("%w: %w", tracker.ErrCancelled, context.DeadlineExceeded), status: 408, code: "cancelled"},
		{name: "exhausted", err: fmt.Errorf("%w after 3 polls", tracker.ErrRetriesExhausted), status: 504, code: "retries_exhausted"},
		{name: "not mined", err: &tracker.FetchError{Hash: hash, Op: "get receipt", Transient: true, Err: errors.New("pending")}, status: 404, code: "not_mined"},
		{name: "fatal", err: &tracker.FetchError{Hash: hash, Op: "get transaction", Err: errors.New("boom")}, status: 502, code: "rpc_error"},
		{name: "history", err: verify.ErrHistoryDisabled, status: 503, code: "history_disabled"},
		{name: "other", err: errors.New("unexpected"), status: 500, code: "internal_error"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			status, body := ErrorHandler(context.Background(), tc.err)
			assert.Equal(t, tc.status, status)
			resp, ok := body.(*ErrorResp)
			require.True(t, ok)
			assert.Equal(t, tc.code, resp.Code)
			assert.Equal(t, tc.err.Error(), resp.Message)
		})
	}
}

func newTestService(t *testing.T) *svc.ServiceContext {
	t.Helper()
	to := common.HexToAddress("0xAbC0000000000000000000000000000000000aBc")
	client := chaintest.NewClient()
	client.AddMined(common.HexToHash(txHash), evmTypes.NewTx(&evmTypes.LegacyTx{
		To:       &to,
		Value:    big.NewInt(1),
		Gas:      21000,
		GasPrice: big.NewInt(1),
	}), 8, 1, 21000)

	svcCtx := &svc.ServiceContext{Config: config.Config{Verify: config.VerifyConf{PollInterval: time.Millisecond}}}
	require.NoError(t, svcCtx.AddChain("ETH", config.ChainConf{}, client))
	return svcCtx
}

func post(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestValidateHandler(t *testing.T) {
	h := ValidateHandler(newTestService(t))

	rec := post(t, h, `{"chain":"ETH","tx_hash":"`+txHash+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "mined_success", resp["state"])

	rec = post(t, h, `{"chain":"ETH"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, `{"chain":"ETH","tx_hash":"0x12"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_input")

	rec = post(t, h, `{"chain":"Solana","tx_hash":"`+txHash+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported_chain")
}

func TestVerifyDataHandler_InvalidToken(t *testing.T) {
	h := VerifyDataHandler(newTestService(t))

	rec := post(t, h, `{"chain":"ETH","tx_hash":"`+txHash+`","receiver":"0xAbC0000000000000000000000000000000000aBc","amount":"1","token_address":"0xNotAnAddress"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "token address")
}

func TestCoinHandler(t *testing.T) {
	rec := post(t, CoinHandler(newTestService(t)), `{"chain":"ETH"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"symbol":"ETH"`)
}

func TestEventsHandler(t *testing.T) {
	h := EventsHandler(newTestService(t))

	rec := post(t, h, `{"chain":"ETH","tx_hash":"`+txHash+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"events":[]`)

	rec = post(t, h, `{"chain":"ETH","tx_hash":"0x5555555555555555555555555555555555555555555555555555555555555555"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_mined")
}
