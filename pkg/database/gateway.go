// Package database 嵌入式 sqlite 存储网关：每次操作独立获取、用完即关的连接。
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrStorageUnavailable 数据库文件不存在或无法打开
var ErrStorageUnavailable = errors.New("storage unavailable")

// ConnectionRecorder 每成功获取一次连接回调一次
type ConnectionRecorder interface {
	RecordConnection()
}

// Conn 单次操作使用的连接，按列名映射到结构体
type Conn struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// Close 释放连接
func (c *Conn) Close() error {
	if c == nil || c.sqlDB == nil {
		return nil
	}
	return c.sqlDB.Close()
}

// Gateway 存储网关
type Gateway struct {
	path     string
	recorder ConnectionRecorder
	logLevel gormlogger.LogLevel
}

// GatewayOption 网关选项
type GatewayOption func(*Gateway)

// WithLogLevel 设置 gorm SQL 日志级别（默认 Silent）
func WithLogLevel(level gormlogger.LogLevel) GatewayOption {
	return func(g *Gateway) { g.logLevel = level }
}

// NewGateway 创建存储网关，recorder 可为 nil
func NewGateway(path string, recorder ConnectionRecorder, opts ...GatewayOption) *Gateway {
	g := &Gateway{path: path, recorder: recorder, logLevel: gormlogger.Silent}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Path 数据库文件路径
func (g *Gateway) Path() string { return g.path }

// Exists 数据库文件是否存在（且为普通文件）
func (g *Gateway) Exists() bool {
	info, err := os.Stat(g.path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Acquire 打开一个新连接。文件不存在时不会创建，返回 ErrStorageUnavailable。
func (g *Gateway) Acquire(ctx context.Context) (*Conn, error) {
	sqlDB, err := sql.Open(sqlite.DriverName, readWriteDSN(g.path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, g.path, err)
	}

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger:               gormlogger.Default.LogMode(g.logLevel),
		DisableAutomaticPing: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if g.recorder != nil {
		g.recorder.RecordConnection()
	}
	return &Conn{DB: db.WithContext(ctx), sqlDB: sqlDB}, nil
}

func readWriteDSN(path string) string {
	return "file:" + path + "?mode=rw"
}
