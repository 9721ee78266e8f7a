package handler

import (
	"net/http"

	"haojuleling/app/activity/api/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

// RegisterHandlers 注册路由
// 中间件执行顺序：RequestID -> Auth -> Handler
func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	server.Use(svcCtx.RequestID)

	// ==================== 公开路由 ====================
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/health",
				Handler: HealthHandler(svcCtx),
			},
		},
	)

	// ==================== 认证路由 ====================
	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{svcCtx.Auth},
			rest.Route{
				Method:  http.MethodPost,
				Path:    "/dispatch",
				Handler: DispatchHandler(svcCtx),
			},
		),
		rest.WithPrefix("/api/activity"),
	)
}
