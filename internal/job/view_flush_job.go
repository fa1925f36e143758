package job

import (
	"Atheneum/internal/pkg/logger"
	"Atheneum/internal/service"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// ViewFlushJob 周期性把快速存储里的阅读量冲进落库存储。
// 多个实例同时跑也是安全的，正确性由 GetDel 的原子性和加法 upsert 保证。
type ViewFlushJob struct {
	viewSvc service.ViewService
}

func NewViewFlushJob(viewSvc service.ViewService) *ViewFlushJob {
	return &ViewFlushJob{viewSvc: viewSvc}
}

func (s *ViewFlushJob) Run() {
	traceID := "job-view-flush-" + uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), traceID)

	result, err := s.viewSvc.RunFlushWithTelemetry(ctx)
	if err != nil {
		log.ErrorContext(ctx, "view flush failed", "err", err)
		return
	}

	log.InfoContext(ctx, "view flush success",
		"flushed_totals", result.FlushedTotals,
		"flushed_daily", result.FlushedDaily)
}
