package handler

import (
	"net/http"
	"time"

	"ethverify/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

const queryTimeout = 30000 * time.Millisecond

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	// --- 等待类接口，超时由 Verify.WaitTimeout 控制 ---
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/tx/confirmations",
				Handler: ConfirmationsHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/tx/validate",
				Handler: ValidateHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/tx/validate_batch",
				Handler: ValidateBatchHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/tx/verify",
				Handler: VerifyHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/tx/verify_data",
				Handler: VerifyDataHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api/"),
		rest.WithTimeout(waitTimeout(serverCtx)),
	)

	// --- 查询类接口 ---
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/tx/fee",
				Handler: FeeHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/tx/events",
				Handler: EventsHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/tx/history",
				Handler: HistoryHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/asset/coin",
				Handler: CoinHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/asset/token",
				Handler: TokenHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api/"),
		rest.WithTimeout(queryTimeout),
	)
}

func waitTimeout(serverCtx *svc.ServiceContext) time.Duration {
	if d := serverCtx.Config.Verify.WaitTimeout; d > 0 {
		return d
	}
	return queryTimeout
}
