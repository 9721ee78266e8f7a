package config

import (
	"haojuleling/common/database"
	"haojuleling/common/utils/jwt"

	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"
)

type Config struct {
	rest.RestConf

	// JWT 认证配置
	Auth jwt.AuthConfig

	// 数据存储
	DataSource database.Config
	BizRedis   redis.RedisConf // 未读数缓存

	// 内部错误是否把原始错误信息返回给客户端，仅用于开发环境
	ExposeErrorDetail bool `json:",default=false"`
}
