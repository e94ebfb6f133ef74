package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"couplet_studio_202602/internal/model"
)

// ==================== 仓储接口 ====================

// GenerationLogRepository 调用记录仓储接口
type GenerationLogRepository interface {
	Create(ctx context.Context, log *model.GenerationLog) error
	GetByRequestID(ctx context.Context, requestID string) (*model.GenerationLog, error)

	// 统计查询
	GetUsage(ctx context.Context, since time.Time) ([]EndpointUsageStats, error)

	// 清理
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// ==================== 统计结构 ====================

// EndpointUsageStats 单接口用量统计
type EndpointUsageStats struct {
	Endpoint      string  `json:"endpoint"`
	TotalCalls    int64   `json:"total_calls"`
	SuccessCount  int64   `json:"success_count"`
	FailedCount   int64   `json:"failed_count"`
	TimeoutCount  int64   `json:"timeout_count"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

// ==================== 仓储实现 ====================

type generationLogRepo struct {
	db *gorm.DB
}

// NewGenerationLogRepository 创建调用记录仓储
func NewGenerationLogRepository(db *gorm.DB) GenerationLogRepository {
	return &generationLogRepo{db: db}
}

func (r *generationLogRepo) Create(ctx context.Context, log *model.GenerationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *generationLogRepo) GetByRequestID(ctx context.Context, requestID string) (*model.GenerationLog, error) {
	var log model.GenerationLog
	if err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *generationLogRepo) GetUsage(ctx context.Context, since time.Time) ([]EndpointUsageStats, error) {
	var stats []EndpointUsageStats

	query := r.db.WithContext(ctx).Model(&model.GenerationLog{})
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}

	err := query.Select(`
		endpoint,
		COUNT(*) as total_calls,
		SUM(CASE WHEN status_code = 200 THEN 1 ELSE 0 END) as success_count,
		SUM(CASE WHEN status_code <> 200 THEN 1 ELSE 0 END) as failed_count,
		SUM(CASE WHEN status_code = 504 THEN 1 ELSE 0 END) as timeout_count,
		COALESCE(AVG(duration_ms), 0) as avg_duration_ms
	`).
		Group("endpoint").
		Order("endpoint ASC").
		Scan(&stats).Error

	return stats, err
}

// DeleteBefore 物理删除指定时间之前的记录，返回删除条数
func (r *generationLogRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Unscoped().
		Where("created_at < ?", before).
		Delete(&model.GenerationLog{})
	return result.RowsAffected, result.Error
}
