package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"couplet_studio_202602/internal/repository"
)

// DefaultRetentionSpec 每天 03:30:00 执行
const DefaultRetentionSpec = "0 30 3 * * *"

// LogRetentionTask 定期清理过期的调用记录
type LogRetentionTask struct {
	repo          repository.GenerationLogRepository
	retentionDays int
	logger        *zap.Logger
	cron          *cron.Cron
	now           func() time.Time
}

func NewLogRetentionTask(repo repository.GenerationLogRepository, retentionDays int, logger *zap.Logger) *LogRetentionTask {
	return &LogRetentionTask{
		repo:          repo,
		retentionDays: retentionDays,
		logger:        logger,
		cron:          cron.New(cron.WithSeconds()), // 支持秒级控制
		now:           time.Now,
	}
}

// Start 注册并启动定时任务
func (t *LogRetentionTask) Start(spec string) error {
	_, err := t.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := t.RunOnce(ctx); err != nil {
			t.logger.Error("清理调用记录失败", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("无法启动调用记录清理任务: %w", err)
	}

	t.cron.Start()
	t.logger.Info("调用记录清理任务已启动", zap.String("spec", spec), zap.Int("retentionDays", t.retentionDays))
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (t *LogRetentionTask) Stop() {
	<-t.cron.Stop().Done()
}

// RunOnce 删除保留期之前的记录
func (t *LogRetentionTask) RunOnce(ctx context.Context) (int64, error) {
	cutoff := t.now().AddDate(0, 0, -t.retentionDays)

	deleted, err := t.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	t.logger.Info("调用记录清理完成", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	return deleted, nil
}
