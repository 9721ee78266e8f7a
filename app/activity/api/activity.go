package main

import (
	"flag"
	"fmt"

	"haojuleling/app/activity/api/internal/config"
	"haojuleling/app/activity/api/internal/cron"
	"haojuleling/app/activity/api/internal/handler"
	"haojuleling/app/activity/api/internal/svc"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"
)

var configFile = flag.String("f", "etc/activity-api.yaml", "配置文件路径")

func main() {
	flag.Parse()

	// 1. 加载配置文件
	var c config.Config
	conf.MustLoad(*configFile, &c)
	response.SetExposeDetail(c.ExposeErrorDetail)

	// 2. 创建 REST 服务器
	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	// 3. 初始化服务上下文
	ctx := svc.NewServiceContext(c)
	defer ctx.Close()

	// 4. 计数校准任务
	if c.Reconciler.Enable {
		reconciler := cron.NewCounterReconciler(
			ctx.Redis, ctx.DB,
			ctx.ActivityModel, ctx.EnrollmentModel, ctx.FavoriteModel,
			ctx.ActivityCache,
		)
		reconciler.SetInterval(c.Reconciler.IntervalSeconds)
		reconciler.SetBatchSize(c.Reconciler.BatchSize)
		reconciler.Start()
		defer reconciler.Stop()
	}

	// 5. 注册路由处理器
	handler.RegisterHandlers(server, ctx)

	// 6. 启动服务
	fmt.Printf("Starting activity-api server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
