package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/d60-Lab/techtrends/pkg/database"
	"github.com/d60-Lab/techtrends/pkg/logger"
)

const (
	HealthyResult   = "OK - healthy"
	UnhealthyResult = "ERROR - unhealthy"
)

// ErrSchemaMissing 数据库文件存在但缺少 posts 表
var ErrSchemaMissing = errors.New("schema missing")

// Store 健康检查需要的存储能力
type Store interface {
	Path() string
	Exists() bool
	Acquire(ctx context.Context) (*database.Conn, error)
}

// HealthReport 健康检查结果，Result 原样作为 JSON 返回
type HealthReport struct {
	Status int    `json:"-"`
	Result string `json:"result"`
	Err    error  `json:"-"`
}

// Healthy 是否健康
func (r HealthReport) Healthy() bool { return r.Err == nil }

// HealthService 依次检查数据库文件与 posts 表，首个失败即返回
type HealthService struct {
	store Store
	table string
}

func NewHealthService(store Store) *HealthService {
	return &HealthService{store: store, table: database.PostsTable}
}

// Check 执行健康检查
func (s *HealthService) Check(ctx context.Context) HealthReport {
	if !s.store.Exists() {
		logger.Fatal("No database was found or created", zap.String("path", s.store.Path()))
		return unhealthy(fmt.Errorf("%w: %s does not exist", database.ErrStorageUnavailable, s.store.Path()))
	}

	found, err := s.tableExists(ctx)
	if err != nil {
		logger.Error("Health check query failed", zap.Error(err))
		return unhealthy(err)
	}
	if !found {
		logger.Error("No table 'posts' found", zap.String("path", s.store.Path()))
		return unhealthy(fmt.Errorf("%w: table %q", ErrSchemaMissing, s.table))
	}

	logger.Info("Health request successful")
	return HealthReport{Status: http.StatusOK, Result: HealthyResult}
}

// tableExists 查询 sqlite_master，逐行迭代计数，不依赖驱动的 rowcount
func (s *HealthService) tableExists(ctx context.Context) (bool, error) {
	conn, err := s.store.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	rows, err := conn.DB.Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", s.table).Rows()
	if err != nil {
		return false, fmt.Errorf("failed to query schema: %w", err)
	}
	defer rows.Close()

	matches := 0
	for rows.Next() {
		matches++
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("failed to read schema rows: %w", err)
	}
	return matches > 0, nil
}

func unhealthy(err error) HealthReport {
	return HealthReport{Status: http.StatusInternalServerError, Result: UnhealthyResult, Err: err}
}
