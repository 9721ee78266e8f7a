package svc

import (
	"log"

	"haojuleling/app/notification/cache"
	"haojuleling/app/notification/model"
	"haojuleling/app/notification/mq/internal/config"
	"haojuleling/common/database"
	"haojuleling/common/messaging"

	"github.com/zeromicro/go-zero/core/stores/redis"
	"gorm.io/gorm"
)

type ServiceContext struct {
	Config config.Config

	DB                *gorm.DB
	NotificationModel model.INotificationModel
	UnreadCache       *cache.UnreadCache

	MsgClient *messaging.Client
}

func NewServiceContext(c config.Config) *ServiceContext {
	db := database.MustOpen(c.DataSource)
	if c.DataSource.AutoMigrate {
		if err := db.AutoMigrate(&model.Notification{}); err != nil {
			log.Fatalf("自动建表失败: %v", err)
		}
	}

	msgClient, err := messaging.NewClient(c.Messaging)
	if err != nil {
		log.Fatalf("消息中间件初始化失败: %v", err)
	}

	notificationModel := model.NewNotificationModel(db)
	return &ServiceContext{
		Config:            c,
		DB:                db,
		NotificationModel: notificationModel,
		UnreadCache:       cache.NewUnreadCache(redis.MustNewRedis(c.BizRedis), notificationModel),
		MsgClient:         msgClient,
	}
}

func (s *ServiceContext) Close() {
	if err := s.MsgClient.Close(); err != nil {
		log.Printf("关闭消息客户端失败: %v", err)
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
