package svc

import (
	"haojuleling/app/gateway/api/internal/config"
	"haojuleling/app/gateway/api/internal/middleware"
	commonCache "haojuleling/common/cache"
	commonMiddleware "haojuleling/common/middleware"

	"github.com/zeromicro/go-zero/core/limit"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"
)

// ServiceContext API 网关服务上下文
type ServiceContext struct {
	Config config.Config

	RequestID rest.Middleware
	RateLimit rest.Middleware

	Proxies *Proxies
}

func NewServiceContext(c config.Config) *ServiceContext {
	return NewServiceContextWithRedis(c, redis.MustNewRedis(c.BizRedis))
}

// NewServiceContextWithRedis 使用已建立的 Redis 连接组装上下文
func NewServiceContextWithRedis(c config.Config, rds *redis.Redis) *ServiceContext {
	global := limit.NewTokenLimiter(c.RateLimit.Rate, c.RateLimit.Burst, rds, commonCache.GatewayGlobalLimitKey())
	perIP := limit.NewPeriodLimit(c.RateLimit.IPPeriod, c.RateLimit.IPQuota, rds, commonCache.GatewayIPLimitPrefix())

	return &ServiceContext{
		Config: c,

		RequestID: commonMiddleware.RequestIDMiddleware,
		RateLimit: middleware.NewRateLimitMiddleware(global, perIP).Handle,

		Proxies: MustNewProxies(c.Upstreams),
	}
}
