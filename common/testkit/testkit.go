// Package testkit 单元测试用的真实依赖：内存 SQLite 与 miniredis
package testkit

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"haojuleling/common/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB 为每个测试创建独立的内存库，并迁移给定的模型
func NewDB(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		Path:   dsn,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewRedis 启动 miniredis 并返回 go-zero Redis 客户端
func NewRedis(t testing.TB) (*redis.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rds, err := redis.NewRedis(redis.RedisConf{
		Host: mr.Addr(),
		Type: redis.NodeType,
	})
	if err != nil {
		t.Fatalf("connect miniredis: %v", err)
	}
	return rds, mr
}
