package handler

import (
	"io"
	"net/http"

	"haojuleling/app/notification/api/internal/logic"
	"haojuleling/app/notification/api/internal/svc"
	"haojuleling/app/notification/api/internal/types"
	"haojuleling/common/errorx"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/rest/httpx"
)

const maxBodyBytes = 1 << 20

func DispatchHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			response.Fail(r.Context(), w, errorx.ErrInvalidParams("读取请求失败"))
			return
		}

		req, err := types.DecodeRequest(body)
		if err != nil {
			response.Fail(r.Context(), w, err)
			return
		}

		resp, err := logic.Dispatch(r.Context(), svcCtx, req)
		response.Write(r.Context(), w, resp, err)
	}
}

func HealthHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := svcCtx.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil || !svcCtx.Redis.PingCtx(r.Context()) {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
			return
		}
		httpx.OkJsonCtx(r.Context(), w, map[string]string{"status": "ok"})
	}
}
