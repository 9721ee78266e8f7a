package svc

import (
	"haojuleling/app/notification/api/internal/config"
	"haojuleling/app/notification/cache"
	"haojuleling/app/notification/model"
	userModel "haojuleling/app/user/model"
	"haojuleling/common/database"
	"haojuleling/common/middleware"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"
	"gorm.io/gorm"
)

type ServiceContext struct {
	Config config.Config

	DB    *gorm.DB
	Redis *redis.Redis

	// 中间件
	Auth      rest.Middleware
	RequestID rest.Middleware

	// Model 层
	NotificationModel model.INotificationModel
	UserModel         userModel.IUserModel

	UnreadCache *cache.UnreadCache
}

func NewServiceContext(c config.Config) *ServiceContext {
	db := database.MustOpen(c.DataSource)
	if c.DataSource.AutoMigrate {
		MustMigrate(db)
	}

	rds := redis.MustNewRedis(c.BizRedis)
	logx.Info("Redis 连接成功")

	return NewServiceContextWithDeps(c, db, rds)
}

// NewServiceContextWithDeps 使用已建立的连接组装上下文
func NewServiceContextWithDeps(c config.Config, db *gorm.DB, rds *redis.Redis) *ServiceContext {
	notificationModel := model.NewNotificationModel(db)

	return &ServiceContext{
		Config: c,

		DB:    db,
		Redis: rds,

		Auth:      middleware.NewAuthMiddleware(c.Auth.AccessSecret).Handle,
		RequestID: middleware.RequestIDMiddleware,

		NotificationModel: notificationModel,
		UserModel:         userModel.NewUserModel(db),

		UnreadCache: cache.NewUnreadCache(rds, notificationModel),
	}
}

// MustMigrate 建表
func MustMigrate(db *gorm.DB) {
	if err := db.AutoMigrate(&model.Notification{}, &userModel.User{}); err != nil {
		logx.Errorf("自动建表失败: %v", err)
		panic(err)
	}
}

func (s *ServiceContext) Close() {
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
