package svc

import (
	"context"

	"haojuleling/app/user/api/internal/config"
	"haojuleling/app/user/api/internal/mq"
	"haojuleling/app/user/api/internal/wechat"
	"haojuleling/app/user/model"
	"haojuleling/common/database"
	"haojuleling/common/messaging"
	"haojuleling/common/middleware"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"
	"gorm.io/gorm"
)

// SessionExchanger 登录 code 换取会话
type SessionExchanger interface {
	Code2Session(ctx context.Context, code string) (*wechat.Session, error)
}

type ServiceContext struct {
	Config config.Config

	DB *gorm.DB

	// 登录、校验 Token 允许匿名
	OptionalAuth rest.Middleware
	RequestID    rest.Middleware

	UserModel model.IUserModel
	WeChat    SessionExchanger

	MsgClient   *messaging.Client
	MsgProducer *mq.Producer
}

func NewServiceContext(c config.Config) *ServiceContext {
	db := database.MustOpen(c.DataSource)
	if c.DataSource.AutoMigrate {
		if err := db.AutoMigrate(&model.User{}); err != nil {
			logx.Errorf("自动建表失败: %v", err)
			panic(err)
		}
	}

	var msgClient *messaging.Client
	if c.Messaging.Enabled() {
		client, err := messaging.NewClient(c.Messaging)
		if err != nil {
			logx.Errorf("初始化消息客户端失败，事件发布已禁用: %v", err)
		} else {
			msgClient = client
		}
	}

	return NewServiceContextWithDeps(c, db, wechat.NewClient(c.WeChat), msgClient)
}

// NewServiceContextWithDeps 使用已建立的依赖组装上下文
func NewServiceContextWithDeps(c config.Config, db *gorm.DB, exchanger SessionExchanger, msgClient *messaging.Client) *ServiceContext {
	return &ServiceContext{
		Config: c,

		DB: db,

		OptionalAuth: middleware.NewOptionalAuthMiddleware(c.Auth.AccessSecret).Handle,
		RequestID:    middleware.RequestIDMiddleware,

		UserModel: model.NewUserModel(db),
		WeChat:    exchanger,

		MsgClient:   msgClient,
		MsgProducer: mq.NewProducer(msgClient),
	}
}

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
