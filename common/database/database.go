// Package database 统一的 gorm 连接初始化
//
// 生产使用 MySQL，本地开发与单元测试使用 SQLite（纯 Go 实现，无需 CGO）
package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	// mysqlDuplicateEntry MySQL 唯一键冲突错误码
	mysqlDuplicateEntry = 1062
)

// Config 数据库配置
type Config struct {
	Driver          string `json:",default=mysql,options=mysql|sqlite"`
	Host            string `json:",default=127.0.0.1"`
	Port            int    `json:",default=3306"`
	Username        string `json:",optional"`
	Password        string `json:",optional"`
	Database        string `json:",optional"`
	Path            string `json:",optional"`        // SQLite 文件路径或 DSN
	MaxOpenConns    int    `json:",default=100"`     // 最大打开连接数
	MaxIdleConns    int    `json:",default=10"`      // 最大空闲连接数
	ConnMaxLifetime int    `json:",default=3600"`    // 连接生命周期（秒）
	AutoMigrate     bool   `json:",optional"`        // 启动时自动建表
	LogSQL          bool   `json:",default=false"`   // 打印 SQL
}

// MustOpen 打开数据库连接，失败直接 panic
func MustOpen(c Config) *gorm.DB {
	db, err := Open(c)
	if err != nil {
		logx.Errorf("连接数据库失败: %v", err)
		panic(err)
	}
	logx.Info("数据库连接成功")
	return db
}

// Open 打开数据库连接并设置连接池
func Open(c Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if c.LogSQL {
		logLevel = logger.Info
	}
	gormConf := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch c.Driver {
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(c.Path), gormConf)
	case DriverMySQL, "":
		db, err = gorm.Open(mysql.Open(BuildMySQLDSN(c)), gormConf)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.Driver == DriverSQLite {
		// SQLite 单写者，内存库必须保持唯一连接存活
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return db, nil
	}

	maxOpenConns := c.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 100
	}
	maxIdleConns := c.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 10
	}
	connMaxLifetime := c.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 3600
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	return db, nil
}

// BuildMySQLDSN 拼接 MySQL DSN
func BuildMySQLDSN(c Config) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// IsDuplicateKeyErr 判断是否为唯一键冲突
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return true
	}
	// SQLite: "UNIQUE constraint failed: enrolls.active_key"
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
