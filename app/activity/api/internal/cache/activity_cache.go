// Package cache 活动详情缓存
//
// 旁路缓存：读时回源写缓存，写时删缓存
//   - singleflight 防止缓存击穿
//   - 空值标记防止缓存穿透
//   - 随机 TTL 防止缓存雪崩
package cache

import (
	"context"
	"encoding/json"
	"errors"

	"haojuleling/app/activity/model"
	commonCache "haojuleling/common/cache"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"golang.org/x/sync/singleflight"
)

// activityLoader 回源查询
type activityLoader interface {
	FindByID(ctx context.Context, id uint64) (*model.Activity, error)
}

// ActivityCache 活动详情缓存服务
//
// 缓存策略：
//   - Key: activity:detail:{id}
//   - TTL: 5min ± 10%，空值 60s
//   - 失效时机: 更新、删除、报名、收藏后主动删除
type ActivityCache struct {
	rds     *redis.Redis
	loader  activityLoader
	sfGroup singleflight.Group
}

// NewActivityCache 创建活动缓存服务
func NewActivityCache(rds *redis.Redis, loader activityLoader) *ActivityCache {
	return &ActivityCache{
		rds:    rds,
		loader: loader,
	}
}

// GetByID 获取活动（带缓存），不存在返回 model.ErrActivityNotFound
func (c *ActivityCache) GetByID(ctx context.Context, id uint64) (*model.Activity, error) {
	key := commonCache.ActivityDetailKey(id)

	// 1. 尝试从缓存获取
	val, err := c.rds.GetCtx(ctx, key)
	if err != nil && !errors.Is(err, redis.Nil) {
		// Redis 错误，降级查询 DB
		logx.WithContext(ctx).Errorf("[ActivityCache] Redis 错误，降级查 DB: key=%s, err=%v", key, err)
		return c.loader.FindByID(ctx, id)
	}

	// 2. 缓存命中
	if val != "" {
		if val == commonCache.NullPlaceholder {
			return nil, model.ErrActivityNotFound
		}

		var activity model.Activity
		if err := json.Unmarshal([]byte(val), &activity); err != nil {
			logx.WithContext(ctx).Errorf("[ActivityCache] 反序列化失败: key=%s, err=%v", key, err)
			// 删除损坏的缓存，下次重建
			_, _ = c.rds.DelCtx(ctx, key)
			return c.loader.FindByID(ctx, id)
		}
		return &activity, nil
	}

	// 3. 缓存未命中，singleflight 合并并发回源
	result, err, _ := c.sfGroup.Do(key, func() (interface{}, error) {
		return c.loadAndCache(ctx, id, key)
	})
	if err != nil {
		return nil, err
	}
	// 共享结果，返回副本
	activity := *result.(*model.Activity)
	return &activity, nil
}

// loadAndCache 从 DB 查询并写入缓存
func (c *ActivityCache) loadAndCache(ctx context.Context, id uint64, key string) (*model.Activity, error) {
	activity, err := c.loader.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrActivityNotFound) {
			_ = c.rds.SetexCtx(ctx, key, commonCache.NullPlaceholder, int(commonCache.NullTTL.Seconds()))
		}
		return nil, err
	}

	data, err := json.Marshal(activity)
	if err != nil {
		logx.WithContext(ctx).Errorf("[ActivityCache] 序列化失败: id=%d, err=%v", id, err)
		return activity, nil
	}

	ttl := commonCache.RandomTTLSeconds(commonCache.DefaultTTL)
	if err := c.rds.SetexCtx(ctx, key, string(data), ttl); err != nil {
		logx.WithContext(ctx).Errorf("[ActivityCache] 写入缓存失败: key=%s, err=%v", key, err)
	}
	return activity, nil
}

// Invalidate 删除活动缓存，失败只记日志
func (c *ActivityCache) Invalidate(ctx context.Context, id uint64) {
	key := commonCache.ActivityDetailKey(id)
	if _, err := c.rds.DelCtx(ctx, key); err != nil {
		logx.WithContext(ctx).Errorf("[ActivityCache] 删除缓存失败: key=%s, err=%v", key, err)
	}
}

// InvalidateBatch 批量删除活动缓存
func (c *ActivityCache) InvalidateBatch(ctx context.Context, ids []uint64) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = commonCache.ActivityDetailKey(id)
	}
	if _, err := c.rds.DelCtx(ctx, keys...); err != nil {
		logx.WithContext(ctx).Errorf("[ActivityCache] 批量删除缓存失败: keys=%v, err=%v", keys, err)
	}
}
