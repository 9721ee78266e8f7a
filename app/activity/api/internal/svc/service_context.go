package svc

import (
	"haojuleling/app/activity/api/internal/cache"
	"haojuleling/app/activity/api/internal/config"
	"haojuleling/app/activity/api/internal/mq"
	"haojuleling/app/activity/model"
	userModel "haojuleling/app/user/model"
	"haojuleling/common/breakerx"
	commonCache "haojuleling/common/cache"
	"haojuleling/common/database"
	"haojuleling/common/messaging"
	"haojuleling/common/middleware"

	"github.com/zeromicro/go-zero/core/breaker"
	"github.com/zeromicro/go-zero/core/limit"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"
	"gorm.io/gorm"
)

type ServiceContext struct {
	Config config.Config

	// 数据存储
	DB    *gorm.DB
	Redis *redis.Redis

	// 中间件
	Auth      rest.Middleware
	RequestID rest.Middleware

	// 高并发、熔断限流组件
	RegistrationLimiter *limit.TokenLimiter
	RegistrationBreaker breaker.Breaker

	// Model 层
	ActivityModel   *model.ActivityModel
	EnrollmentModel *model.EnrollmentModel
	FavoriteModel   *model.FavoriteModel
	UserModel       userModel.IUserModel

	// 缓存
	ActivityCache *cache.ActivityCache

	// 消息发布（可为 nil）
	MsgClient   *messaging.Client
	MsgProducer *mq.Producer
}

func NewServiceContext(c config.Config) *ServiceContext {
	// 1. 初始化数据库连接
	db := database.MustOpen(c.DataSource)
	if c.DataSource.AutoMigrate {
		MustMigrate(db)
	}

	// 2. 初始化业务 Redis（缓存、限流、分布式锁）
	rds := initRedis(c.BizRedis)

	// 3. 初始化消息客户端，失败时降级为不发布事件
	var msgClient *messaging.Client
	if c.Messaging.Enabled() {
		client, err := messaging.NewClient(c.Messaging)
		if err != nil {
			logx.Errorf("初始化消息客户端失败，事件发布已禁用: %v", err)
		} else {
			msgClient = client
		}
	}

	return NewServiceContextWithDeps(c, db, rds, msgClient)
}

// NewServiceContextWithDeps 使用已建立的连接组装上下文
func NewServiceContextWithDeps(c config.Config, db *gorm.DB, rds *redis.Redis, msgClient *messaging.Client) *ServiceContext {
	activityModel := model.NewActivityModel(db)

	registrationLimiter := limit.NewTokenLimiter(
		c.RegistrationLimit.Rate,
		c.RegistrationLimit.Burst,
		rds,
		commonCache.RegistrationLimitKey(),
	)
	breakerConf := c.RegistrationBreaker
	if breakerConf.Name == "" {
		breakerConf.Name = "activity-registration"
	}
	registrationBreaker := breakerx.New(breakerConf)

	return &ServiceContext{
		Config: c,

		DB:    db,
		Redis: rds,

		Auth:      middleware.NewAuthMiddleware(c.Auth.AccessSecret).Handle,
		RequestID: middleware.RequestIDMiddleware,

		RegistrationLimiter: registrationLimiter,
		RegistrationBreaker: registrationBreaker,

		ActivityModel:   activityModel,
		EnrollmentModel: model.NewEnrollmentModel(db),
		FavoriteModel:   model.NewFavoriteModel(db),
		UserModel:       userModel.NewUserModel(db),

		ActivityCache: cache.NewActivityCache(rds, activityModel),

		MsgClient:   msgClient,
		MsgProducer: mq.NewProducer(msgClient),
	}
}

// MustMigrate 建表
func MustMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&model.Activity{},
		&model.Enrollment{},
		&model.Favorite{},
		&userModel.User{},
	)
	if err != nil {
		logx.Errorf("自动建表失败: %v", err)
		panic(err)
	}
}

// Close 释放资源
func (s *ServiceContext) Close() {
	if s.MsgClient != nil {
		if err := s.MsgClient.Close(); err != nil {
			logx.Errorf("关闭消息客户端失败: %v", err)
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// initRedis 初始化 Redis 连接
func initRedis(c redis.RedisConf) *redis.Redis {
	rds := redis.MustNewRedis(c)
	logx.Info("Redis 连接成功")
	return rds
}
