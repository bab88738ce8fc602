package monitoring

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// IngestCollector 统计接收管线的吞吐与错误。
//
// 所有并发连接处理单元调用原子递增；一个周期性任务按固定
// 墙钟间隔读取并清零计数，输出一条运营日志。计数只用于
// 运维观测，不要求精确的历史一致性。
type IngestCollector struct {
	processed atomic.Int64
	errors    atomic.Int64
}

// NewIngestCollector 创建接收计数器。
func NewIngestCollector() *IngestCollector {
	return &IngestCollector{}
}

// RecordProcessed 递增已处理邮件计数。
func (c *IngestCollector) RecordProcessed() {
	c.processed.Add(1)
}

// RecordError 递增错误计数。
func (c *IngestCollector) RecordError() {
	c.errors.Add(1)
}

// Snapshot 读取当前计数并清零。
func (c *IngestCollector) Snapshot() (processed, errors int64) {
	return c.processed.Swap(0), c.errors.Swap(0)
}

// Run 按 interval 周期输出吞吐日志，直到 ctx 取消。
func (c *IngestCollector) Run(ctx context.Context, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed, errors := c.Snapshot()
			log.Info("ingest throughput",
				zap.Duration("interval", interval),
				zap.Int64("processed", processed),
				zap.Int64("errors", errors),
			)
		}
	}
}
