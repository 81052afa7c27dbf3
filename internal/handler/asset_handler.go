package handler

import (
	"net/http"

	"ethverify/internal/logic/asset"
	"ethverify/internal/svc"
	"ethverify/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

// CoinHandler 查询原生币信息
func CoinHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CoinReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, badRequest{err})
			return
		}

		l := asset.NewAssetLogic(r.Context(), svcCtx)
		resp, err := l.CoinInfo(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

// TokenHandler 查询代币信息、余额与授权额度
func TokenHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TokenReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, badRequest{err})
			return
		}

		l := asset.NewAssetLogic(r.Context(), svcCtx)
		resp, err := l.TokenInfo(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
