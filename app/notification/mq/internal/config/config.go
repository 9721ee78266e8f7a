package config

import (
	"haojuleling/common/database"
	"haojuleling/common/messaging"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// Config 通知消费者服务配置
type Config struct {
	Name string
	Log  logx.LogConf `json:",optional"`

	DataSource database.Config
	BizRedis   redis.RedisConf // 未读数缓存

	Messaging messaging.Config
}
