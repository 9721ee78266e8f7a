// Package cache 提供通用缓存工具
//
// 设计原则：
//   - Key 命名规范：{业务}:{模块}:{标识}，如 activity:detail:123
//   - 随机 TTL 防止缓存雪崩
package cache

import (
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/mathx"
)

// ==================== 默认配置 ====================

const (
	// DefaultTTL 默认缓存过期时间（5 分钟）
	DefaultTTL = 5 * time.Minute

	// ShortTTL 短缓存过期时间，适用于频繁变化的计数
	ShortTTL = time.Minute

	// NullTTL 空值占位过期时间，防缓存穿透
	NullTTL = 60 * time.Second

	// DefaultJitter 默认 TTL 抖动系数（±10%）
	DefaultJitter = 0.1

	// NullPlaceholder 空值占位内容
	NullPlaceholder = `{"null":true}`
)

// unstable 随机数生成器，用于 TTL 抖动
var unstable = mathx.NewUnstable(DefaultJitter)

// ==================== TTL 工具函数 ====================

// RandomTTL 生成带抖动的 TTL，防止缓存雪崩
//
//	RandomTTL(5 * time.Minute) => 4.5min ~ 5.5min
func RandomTTL(base time.Duration) time.Duration {
	return unstable.AroundDuration(base)
}

// RandomTTLSeconds 返回带抖动的 TTL（秒数），用于 Redis SETEX
func RandomTTLSeconds(base time.Duration) int {
	seconds := int(RandomTTL(base).Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}

// ==================== Key 生成函数 ====================

// ActivityDetailKey 活动详情缓存 Key
//
// 格式：activity:detail:{id}
func ActivityDetailKey(id uint64) string {
	return fmt.Sprintf("activity:detail:%d", id)
}

// UnreadCountKey 未读通知数缓存 Key
//
// 格式：notification:unread:{openid}
func UnreadCountKey(openid string) string {
	return fmt.Sprintf("notification:unread:%s", openid)
}

// ReconcilerLockKey 计数校准任务分布式锁 Key
func ReconcilerLockKey() string {
	return "activity:lock:reconcile"
}

// RegistrationLimitKey 报名限流 Key 前缀
func RegistrationLimitKey() string {
	return "activity:limit:join"
}

// GatewayGlobalLimitKey 网关全局限流 Key
func GatewayGlobalLimitKey() string {
	return "gateway:limit:global"
}

// GatewayIPLimitPrefix 网关单 IP 限流 Key 前缀，后接客户端 IP
func GatewayIPLimitPrefix() string {
	return "gateway:limit:ip:"
}
