package messaging

import (
	"time"
)

// Config 消息中间件配置
type Config struct {
	// Redis 配置，Addr 为空时不启用消息
	Redis RedisConfig `json:",optional"`

	// 服务配置，同时作为 Redis Streams 消费组名
	ServiceName string `json:",optional"`

	// 中间件配置
	EnableMetrics bool `json:",default=true"`

	// 重试配置
	RetryConfig RetryConfig `json:",optional"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Addr     string `json:",optional"`
	Password string `json:",optional"`
	DB       int    `json:",default=0"`
}

// RetryConfig 重试配置
type RetryConfig struct {
	MaxRetries      int           `json:",default=3"`
	InitialInterval time.Duration `json:",default=100ms"`
	MaxInterval     time.Duration `json:",default=10s"`
	Multiplier      float64       `json:",default=2"` // 退避倍数
}

// Enabled 是否配置了消息中间件
func (c Config) Enabled() bool {
	return c.Redis.Addr != ""
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		ServiceName:   "default-service",
		EnableMetrics: true,
		RetryConfig: RetryConfig{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     10 * time.Second,
			Multiplier:      2.0,
		},
	}
}
