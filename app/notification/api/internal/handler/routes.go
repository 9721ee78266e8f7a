package handler

import (
	"net/http"

	"haojuleling/app/notification/api/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

// RegisterHandlers 注册路由
func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	server.Use(svcCtx.RequestID)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/health",
				Handler: HealthHandler(svcCtx),
			},
		},
	)

	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{svcCtx.Auth},
			rest.Route{
				Method:  http.MethodPost,
				Path:    "/dispatch",
				Handler: DispatchHandler(svcCtx),
			},
		),
		rest.WithPrefix("/api/notification"),
	)
}
