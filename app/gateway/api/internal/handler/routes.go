package handler

import (
	"net/http"

	"haojuleling/app/gateway/api/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

// RegisterHandlers 注册所有路由
//
// 中间件执行顺序：RequestID -> RateLimit -> Handler
// 鉴权由后端服务完成，网关只转发 Authorization 头
func RegisterHandlers(server *rest.Server, ctx *svc.ServiceContext) {
	server.Use(ctx.RequestID)
	server.Use(ctx.RateLimit)

	// ==================== 公开路由 ====================
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/health",
				Handler: HealthHandler(ctx),
			},
		},
	)

	// ==================== 转发路由 ====================
	routes := make([]rest.Route, 0, len(ctx.Proxies.All()))
	for _, upstream := range ctx.Proxies.All() {
		routes = append(routes, rest.Route{
			Method:  http.MethodPost,
			Path:    "/api/" + upstream.Name + "/dispatch",
			Handler: upstream.Proxy.ServeHTTP,
		})
	}
	server.AddRoutes(routes)
}
