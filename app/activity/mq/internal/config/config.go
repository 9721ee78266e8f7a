package config

import (
	"haojuleling/common/database"
	"haojuleling/common/messaging"

	"github.com/zeromicro/go-zero/core/logx"
)

// Config 活动消费者服务配置
type Config struct {
	Name string
	Log  logx.LogConf `json:",optional"`

	DataSource database.Config

	// 消息中间件配置（ServiceName 作为消费组名）
	Messaging messaging.Config
}
