// Package cache 未读通知数缓存
package cache

import (
	"context"
	"errors"
	"strconv"

	commonCache "haojuleling/common/cache"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"golang.org/x/sync/singleflight"
)

// unreadCounter 回源查询
type unreadCounter interface {
	CountUnread(ctx context.Context, receiverID string) (int64, error)
}

// UnreadCache 未读数缓存
//
// Key: notification:unread:{openid}，TTL 1min ± 10%
// 任何写操作（发送、已读、删除）后删除对应接收者的 Key
type UnreadCache struct {
	rds     *redis.Redis
	counter unreadCounter
	sfGroup singleflight.Group
}

func NewUnreadCache(rds *redis.Redis, counter unreadCounter) *UnreadCache {
	return &UnreadCache{
		rds:     rds,
		counter: counter,
	}
}

// Get 获取未读数，Redis 不可用时直接查库
func (c *UnreadCache) Get(ctx context.Context, receiverID string) (int64, error) {
	key := commonCache.UnreadCountKey(receiverID)

	val, err := c.rds.GetCtx(ctx, key)
	if err != nil && !errors.Is(err, redis.Nil) {
		logx.WithContext(ctx).Errorf("[UnreadCache] Redis 错误，降级查 DB: key=%s, err=%v", key, err)
		return c.counter.CountUnread(ctx, receiverID)
	}
	if val != "" {
		count, err := strconv.ParseInt(val, 10, 64)
		if err == nil && count >= 0 {
			return count, nil
		}
		logx.WithContext(ctx).Errorf("[UnreadCache] 缓存内容非法: key=%s, val=%q", key, val)
		_, _ = c.rds.DelCtx(ctx, key)
	}

	result, err, _ := c.sfGroup.Do(key, func() (interface{}, error) {
		count, err := c.counter.CountUnread(ctx, receiverID)
		if err != nil {
			return int64(0), err
		}
		ttl := commonCache.RandomTTLSeconds(commonCache.ShortTTL)
		if err := c.rds.SetexCtx(ctx, key, strconv.FormatInt(count, 10), ttl); err != nil {
			logx.WithContext(ctx).Errorf("[UnreadCache] 写缓存失败: key=%s, err=%v", key, err)
		}
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// Invalidate 删除接收者的未读数缓存，失败只记日志
func (c *UnreadCache) Invalidate(ctx context.Context, receiverID string) {
	key := commonCache.UnreadCountKey(receiverID)
	if _, err := c.rds.DelCtx(ctx, key); err != nil {
		logx.WithContext(ctx).Errorf("[UnreadCache] 删除缓存失败: key=%s, err=%v", key, err)
	}
}
