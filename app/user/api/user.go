package main

import (
	"flag"
	"fmt"

	"haojuleling/app/user/api/internal/config"
	"haojuleling/app/user/api/internal/handler"
	"haojuleling/app/user/api/internal/svc"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"
)

var configFile = flag.String("f", "etc/user-api.yaml", "配置文件路径")

func main() {
	flag.Parse()

	// 加载配置
	var c config.Config
	conf.MustLoad(*configFile, &c)
	response.SetExposeDetail(c.ExposeErrorDetail)

	// 创建 HTTP 服务器
	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	// 创建服务上下文
	ctx := svc.NewServiceContext(c)
	defer ctx.Close()

	// 注册路由
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting user-api server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
