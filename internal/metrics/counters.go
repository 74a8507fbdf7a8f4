// Package metrics 进程内诊断计数器（/metrics）及其 Prometheus 暴露
package metrics

import "sync/atomic"

// Snapshot 计数器的某一时刻快照
type Snapshot struct {
	DBConnectionCount int64 `json:"db_connection_count"`
	PostCount         int64 `json:"post_count"`
}

// Counters 由 server 持有并注入网关、仓储与 handler；从 0 开始，不持久化
type Counters struct {
	connections atomic.Int64
	postCount   atomic.Int64
}

// NewCounters 创建计数器
func NewCounters() *Counters {
	return &Counters{}
}

// RecordConnection 每成功获取一次连接调用一次
func (c *Counters) RecordConnection() { c.connections.Add(1) }

// RecordPostCount 覆盖为最近一次全量列表的条数
func (c *Counters) RecordPostCount(n int) { c.postCount.Store(int64(n)) }

// ConnectionCount 累计连接数
func (c *Counters) ConnectionCount() int64 { return c.connections.Load() }

// PostCount 最近一次列表的帖子数
func (c *Counters) PostCount() int64 { return c.postCount.Load() }

// Snapshot 读取当前快照，无副作用
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		DBConnectionCount: c.connections.Load(),
		PostCount:         c.postCount.Load(),
	}
}
