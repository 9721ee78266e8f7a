package cron

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"haojuleling/app/activity/api/internal/metrics"
	"haojuleling/app/activity/model"
	"haojuleling/common/cache"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"gorm.io/gorm"
)

// ==================== 常量定义 ====================

const (
	lockExpireSeconds = 120

	defaultBatchSize       = 200
	defaultIntervalSeconds = 300
)

// ==================== CounterReconciler 计数校准任务 ====================

// CounterReconciler 按报名记录、收藏记录重算活动上的 enroll_count / favorite_count
//
// 执行策略：
//   - Redis 分布式锁，多实例部署时只有一个实例执行
//   - 按 ID 升序分批扫描
//   - 不一致的活动在事务内加行锁后重算，与报名/收藏流程串行
type CounterReconciler struct {
	redis           *redis.Redis
	db              *gorm.DB
	activityModel   *model.ActivityModel
	enrollModel     *model.EnrollmentModel
	favoriteModel   *model.FavoriteModel
	cache           invalidator
	batchSize       int
	intervalSeconds int

	stopChan chan struct{}
	running  atomic.Bool
	stopOnce sync.Once
	ownerID  string
}

// invalidator 校准后删除详情缓存
type invalidator interface {
	InvalidateBatch(ctx context.Context, ids []uint64)
}

// NewCounterReconciler 创建计数校准任务
func NewCounterReconciler(
	rds *redis.Redis,
	db *gorm.DB,
	activityModel *model.ActivityModel,
	enrollModel *model.EnrollmentModel,
	favoriteModel *model.FavoriteModel,
	cache invalidator,
) *CounterReconciler {
	return &CounterReconciler{
		redis:           rds,
		db:              db,
		activityModel:   activityModel,
		enrollModel:     enrollModel,
		favoriteModel:   favoriteModel,
		cache:           cache,
		batchSize:       defaultBatchSize,
		intervalSeconds: defaultIntervalSeconds,
		stopChan:        make(chan struct{}),
		ownerID:         uuid.New().String(),
	}
}

// SetInterval 设置执行间隔（秒）
func (c *CounterReconciler) SetInterval(seconds int) {
	if seconds > 0 {
		c.intervalSeconds = seconds
	}
}

// SetBatchSize 设置每批扫描数量
func (c *CounterReconciler) SetBatchSize(size int) {
	if size > 0 {
		c.batchSize = size
	}
}

// Start 启动定时任务
func (c *CounterReconciler) Start() {
	if !c.running.CompareAndSwap(false, true) {
		logx.Info("[CounterReconciler] 定时任务已在运行中，跳过重复启动")
		return
	}

	logx.Infof("[CounterReconciler] 启动计数校准任务，执行间隔: %d 秒, owner: %s", c.intervalSeconds, c.ownerID)

	go func() {
		ticker := time.NewTicker(time.Duration(c.intervalSeconds) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.execute()
			case <-c.stopChan:
				logx.Info("[CounterReconciler] 定时任务已停止")
				return
			}
		}
	}()
}

// Stop 停止定时任务
func (c *CounterReconciler) Stop() {
	if !c.running.Load() {
		return
	}
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	c.running.Store(false)
}

func (c *CounterReconciler) execute() {
	if _, err := c.RunOnce(context.Background()); err != nil {
		logx.Errorf("[CounterReconciler] 校准失败: %v", err)
	}
}

// RunOnce 执行一次全量校准，返回修正的活动数
// 未拿到锁时直接返回 0
func (c *CounterReconciler) RunOnce(ctx context.Context) (int, error) {
	key := cache.ReconcilerLockKey()
	locked, err := c.redis.SetnxExCtx(ctx, key, c.ownerID, lockExpireSeconds)
	if err != nil {
		return 0, errors.Wrap(err, "acquire reconcile lock")
	}
	if !locked {
		return 0, nil
	}
	defer c.unlock(ctx, key)

	var (
		afterID  uint64
		repaired int
	)
	for {
		rows, err := c.activityModel.ListCountersAfter(ctx, afterID, c.batchSize)
		if err != nil {
			return repaired, errors.Wrap(err, "list counters")
		}
		if len(rows) == 0 {
			break
		}

		n, err := c.reconcileBatch(ctx, rows)
		repaired += n
		if err != nil {
			return repaired, err
		}

		afterID = rows[len(rows)-1].ID
		if len(rows) < c.batchSize {
			break
		}
	}

	if repaired > 0 {
		logx.Infof("[CounterReconciler] 校准完成: 修正 %d 个活动", repaired)
	}
	return repaired, nil
}

// reconcileBatch 先批量比对，只对不一致的活动加锁重算
func (c *CounterReconciler) reconcileBatch(ctx context.Context, rows []model.CounterRow) (int, error) {
	ids := make([]uint64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	enrollCounts, err := c.enrollModel.CountActiveByActivities(ctx, ids)
	if err != nil {
		return 0, err
	}
	favoriteCounts, err := c.favoriteModel.CountByActivities(ctx, ids)
	if err != nil {
		return 0, err
	}

	var fixedIDs []uint64
	for _, row := range rows {
		if row.EnrollCount == enrollCounts[row.ID] && row.FavoriteCount == favoriteCounts[row.ID] {
			continue
		}
		fixed, err := c.repairOne(ctx, row.ID)
		if err != nil {
			logx.Errorf("[CounterReconciler] 修正活动 %d 失败: %v", row.ID, err)
			continue
		}
		if fixed {
			fixedIDs = append(fixedIDs, row.ID)
		}
	}
	c.cache.InvalidateBatch(ctx, fixedIDs)
	return len(fixedIDs), nil
}

// repairOne 行锁内重算单个活动
func (c *CounterReconciler) repairOne(ctx context.Context, id uint64) (bool, error) {
	fixed := false
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activityModel := c.activityModel.WithTx(tx)

		activity, err := activityModel.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		enrollCount, err := c.enrollModel.WithTx(tx).CountActive(ctx, id)
		if err != nil {
			return err
		}
		favoriteCount, err := c.favoriteModel.WithTx(tx).Count(ctx, id)
		if err != nil {
			return err
		}

		if activity.EnrollCount != enrollCount {
			metrics.CounterRepaired.WithLabelValues("enroll_count").Inc()
			logx.Errorf("[CounterReconciler] 报名数不一致: activityId=%d, stored=%d, actual=%d",
				id, activity.EnrollCount, enrollCount)
			fixed = true
		}
		if activity.FavoriteCount != favoriteCount {
			metrics.CounterRepaired.WithLabelValues("favorite_count").Inc()
			logx.Errorf("[CounterReconciler] 收藏数不一致: activityId=%d, stored=%d, actual=%d",
				id, activity.FavoriteCount, favoriteCount)
			fixed = true
		}
		if !fixed {
			return nil
		}
		return activityModel.SetCounters(ctx, id, enrollCount, favoriteCount)
	})
	return fixed, err
}

// ==================== 分布式锁 ====================

// unlockScript 只有 owner 匹配时才删除锁
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`

func (c *CounterReconciler) unlock(ctx context.Context, key string) {
	result, err := c.redis.EvalCtx(ctx, unlockScript, []string{key}, c.ownerID)
	if err != nil {
		logx.Errorf("[CounterReconciler] 释放锁失败: key=%s, err=%v", key, err)
		return
	}
	if fmt.Sprintf("%v", result) == "0" {
		logx.Infof("[CounterReconciler] 锁已被其他实例持有，跳过释放: key=%s", key)
	}
}
