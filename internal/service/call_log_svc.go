package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"couplet_studio_202602/internal/model"
	"couplet_studio_202602/internal/repository"
)

// CallRecord 单次接口调用的结果
type CallRecord struct {
	RequestID  string
	Endpoint   string
	Provider   string
	Model      string
	DurationMs int64
	StatusCode int
	ErrorType  *string // 成功时为 nil
	ErrorMsg   string
}

// CallRecorder 记录每次调用的结果：结构化日志 + 可选落库
type CallRecorder struct {
	logger *zap.Logger
	repo   repository.GenerationLogRepository
}

// NewCallRecorder repo 为 nil 时只写日志
func NewCallRecorder(logger *zap.Logger, repo repository.GenerationLogRepository) *CallRecorder {
	return &CallRecorder{logger: logger, repo: repo}
}

// Record 写入一条调用记录，落库失败只记日志
func (r *CallRecorder) Record(ctx context.Context, rec CallRecord) {
	fields := []zap.Field{
		zap.String("requestId", rec.RequestID),
		zap.Int64("durationMs", rec.DurationMs),
		zap.Int("statusCode", rec.StatusCode),
		zap.Stringp("errorType", rec.ErrorType),
		zap.String("endpoint", rec.Endpoint),
		zap.String("model", rec.Model),
	}
	if rec.ErrorMsg != "" {
		fields = append(fields, zap.String("error", rec.ErrorMsg))
	}

	if rec.ErrorType == nil {
		r.logger.Info("couplet api call", fields...)
	} else {
		r.logger.Warn("couplet api call", fields...)
	}

	if r.repo == nil {
		return
	}

	// 请求上下文可能已结束，落库使用独立超时
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	log := &model.GenerationLog{
		RequestID:  rec.RequestID,
		Endpoint:   rec.Endpoint,
		Provider:   rec.Provider,
		ModelName:  rec.Model,
		DurationMs: rec.DurationMs,
		StatusCode: rec.StatusCode,
		ErrorType:  rec.ErrorType,
		ErrorMsg:   truncate(rec.ErrorMsg, 1000),
	}
	if err := r.repo.Create(saveCtx, log); err != nil {
		r.logger.Error("保存调用记录失败", zap.String("requestId", rec.RequestID), zap.Error(err))
	}
}

// ErrorTypeOf 提取错误分类，非 *AIError 归为网络/服务错误
func ErrorTypeOf(err error) *string {
	if err == nil {
		return nil
	}
	t := string(ErrTypeNetworkOrService)
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		t = string(aiErr.Type)
	}
	return &t
}
