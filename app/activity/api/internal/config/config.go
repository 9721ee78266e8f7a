package config

import (
	"haojuleling/common/breakerx"
	"haojuleling/common/database"
	"haojuleling/common/messaging"
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
	BizRedis   redis.RedisConf // 缓存、限流、分布式锁

	// 消息队列，未配置 Redis 地址时不发布事件
	Messaging messaging.Config `json:",optional"`

	// 高并发、熔断限流配置
	RegistrationLimit   RegistrationLimit
	RegistrationBreaker breakerx.Config

	// 冗余计数校准任务
	Reconciler Reconciler

	// 列表附加信息查询并发数
	ListConcurrency int `json:",default=8"`

	// 内部错误是否把原始错误信息返回给客户端，仅用于开发环境
	ExposeErrorDetail bool `json:",default=false"`
}

// ==================== 高并发、熔断限流配置 ====================
type RegistrationLimit struct {
	Rate  int `json:",default=100"` // 每秒允许的请求数
	Burst int `json:",default=200"` // 突发容量
}

// Reconciler 计数校准配置
type Reconciler struct {
	Enable          bool `json:",default=true"`
	IntervalSeconds int  `json:",default=300"`
	BatchSize       int  `json:",default=200"`
}
