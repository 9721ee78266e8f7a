package config

import (
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"
)

// Config API 网关配置
type Config struct {
	rest.RestConf

	// 限流计数存放在 Redis，多实例共享
	BizRedis redis.RedisConf

	// 后端服务地址
	Upstreams Upstreams

	// CORS 跨域配置
	Cors CorsConfig `json:",optional"`

	// 限流配置
	RateLimit RateLimitConfig
}

// Upstreams 后端服务基础地址，如 http://127.0.0.1:8801
type Upstreams struct {
	Activity     string
	Notification string
	User         string
}

// CorsConfig CORS 跨域配置，为空时不开启
type CorsConfig struct {
	AllowOrigins []string `json:",optional"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Rate  int `json:",default=1000"` // 全局每秒请求数
	Burst int `json:",default=2000"` // 全局突发容量

	IPQuota  int `json:",default=20"` // 单 IP 每周期请求数
	IPPeriod int `json:",default=1"`  // 单 IP 统计周期（秒）
}
