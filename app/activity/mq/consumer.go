package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"haojuleling/app/activity/mq/consumer"
	"haojuleling/app/activity/mq/internal/config"
	"haojuleling/app/activity/mq/internal/svc"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

var configFile = flag.String("f", "etc/activity-mq.yaml", "配置文件路径")

func main() {
	flag.Parse()

	// 加载配置
	var c config.Config
	conf.MustLoad(*configFile, &c)

	// 初始化日志
	c.Log.ServiceName = c.Name
	logx.MustSetup(c.Log)
	defer logx.Close()

	// 创建服务上下文
	svcCtx := svc.NewServiceContext(c)
	defer svcCtx.Close()

	// 注册消费者
	consumer.NewProfileUpdatedConsumer(svcCtx.ActivityModel, svcCtx.EnrollmentModel).Subscribe(svcCtx.MsgClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		logx.Info("活动消费者服务启动中...")
		if err := svcCtx.MsgClient.Run(ctx); err != nil {
			logx.Errorf("消息路由停止: %v", err)
		}
	}()

	<-svcCtx.MsgClient.Running()
	logx.Info("活动消费者服务已启动")

	<-sigChan
	logx.Info("收到关闭信号，正在优雅关闭...")
}
