package svc

import (
	"log"

	"haojuleling/app/activity/model"
	"haojuleling/app/activity/mq/internal/config"
	"haojuleling/common/database"
	"haojuleling/common/messaging"

	"gorm.io/gorm"
)

// ServiceContext 消费者服务上下文
type ServiceContext struct {
	Config config.Config

	DB              *gorm.DB
	ActivityModel   *model.ActivityModel
	EnrollmentModel *model.EnrollmentModel

	// 消息中间件客户端
	MsgClient *messaging.Client
}

// NewServiceContext 创建服务上下文
func NewServiceContext(c config.Config) *ServiceContext {
	db := database.MustOpen(c.DataSource)

	msgClient, err := messaging.NewClient(c.Messaging)
	if err != nil {
		log.Fatalf("消息中间件初始化失败: %v", err)
	}

	return &ServiceContext{
		Config:          c,
		DB:              db,
		ActivityModel:   model.NewActivityModel(db),
		EnrollmentModel: model.NewEnrollmentModel(db),
		MsgClient:       msgClient,
	}
}

// Close 释放资源
func (s *ServiceContext) Close() {
	if err := s.MsgClient.Close(); err != nil {
		log.Printf("关闭消息客户端失败: %v", err)
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
