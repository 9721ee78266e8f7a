package main

import (
	"flag"
	"fmt"
	"net/http"

	"haojuleling/app/gateway/api/internal/config"
	"haojuleling/app/gateway/api/internal/handler"
	"haojuleling/app/gateway/api/internal/svc"
	"haojuleling/common/errorx"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"
)

var configFile = flag.String("f", "etc/gateway.yaml", "配置文件路径")

func main() {
	flag.Parse()

	// ==================== 1. 加载配置 ====================
	var c config.Config
	conf.MustLoad(*configFile, &c)

	// ==================== 2. 创建 REST 服务器 ====================
	opts := []rest.RunOption{rest.WithNotFoundHandler(notFoundHandler())}
	if len(c.Cors.AllowOrigins) > 0 {
		opts = append(opts, rest.WithCors(c.Cors.AllowOrigins...))
	}
	server := rest.MustNewServer(c.RestConf, opts...)
	defer server.Stop()

	// ==================== 3. 初始化服务上下文 ====================
	ctx := svc.NewServiceContext(c)

	// ==================== 4. 注册路由和中间件 ====================
	handler.RegisterHandlers(server, ctx)

	// ==================== 5. 启动服务 ====================
	fmt.Printf("Starting gateway server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}

// notFoundHandler 404 处理
func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(r.Context(), w, errorx.NewWithMessage(errorx.CodeNotFound, "接口不存在"))
	})
}
