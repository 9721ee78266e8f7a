package main

import (
	"flag"
	"fmt"

	"haojuleling/app/notification/api/internal/config"
	"haojuleling/app/notification/api/internal/handler"
	"haojuleling/app/notification/api/internal/svc"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"
)

var configFile = flag.String("f", "etc/notification-api.yaml", "配置文件路径")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)
	response.SetExposeDetail(c.ExposeErrorDetail)

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(c)
	defer ctx.Close()

	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting notification-api server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
