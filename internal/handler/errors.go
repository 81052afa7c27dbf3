package handler

import (
	"context"
	"errors"
	"net/http"

	"ethverify/internal/calldata"
	"ethverify/internal/logic/tracker"
	"ethverify/internal/logic/verify"
	"ethverify/internal/svc"

	"github.com/zeromicro/go-zero/core/logx"
)

// ErrorResp is the body of every non-2xx response.
type ErrorResp struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// badRequest marks a body that httpx.Parse rejected.
type badRequest struct {
	err error
}

func (e badRequest) Error() string {
	return e.err.Error()
}

func (e badRequest) Unwrap() error {
	return e.err
}

// ErrorHandler maps service errors to HTTP statuses; register it with
// httpx.SetErrorHandlerCtx.
func ErrorHandler(ctx context.Context, err error) (int, any) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logx.WithContext(ctx).Errorf("request failed with %d: %v", status, err)
	}
	return status, &ErrorResp{Code: code, Message: err.Error()}
}

func classify(err error) (int, string) {
	var (
		parseErr    badRequest
		unsupported *svc.UnsupportedChainError
	)
	switch {
	case errors.As(err, &parseErr):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, tracker.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.As(err, &unsupported):
		return http.StatusBadRequest, "unsupported_chain"
	case errors.Is(err, calldata.ErrDecode):
		return http.StatusUnprocessableEntity, "undecodable_calldata"
	case errors.Is(err, tracker.ErrCancelled):
		return http.StatusRequestTimeout, "cancelled"
	case errors.Is(err, tracker.ErrRetriesExhausted):
		return http.StatusGatewayTimeout, "retries_exhausted"
	case errors.Is(err, tracker.ErrTransientFetch), errors.Is(err, tracker.ErrNotMined):
		return http.StatusNotFound, "not_mined"
	case errors.Is(err, tracker.ErrFatalFetch):
		return http.StatusBadGateway, "rpc_error"
	case errors.Is(err, verify.ErrHistoryDisabled):
		return http.StatusServiceUnavailable, "history_disabled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
