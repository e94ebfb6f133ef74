package service

import (
	"context"
	"time"

	"couplet_studio_202602/internal/api/dto"
	"couplet_studio_202602/internal/repository"
)

const (
	DefaultStatsDays = 7
	MaxStatsDays     = 90
)

// StatsService 调用统计
type StatsService struct {
	repo repository.GenerationLogRepository
}

func NewStatsService(repo repository.GenerationLogRepository) *StatsService {
	return &StatsService{repo: repo}
}

// GetUsage 统计最近 days 天各接口的调用情况
func (s *StatsService) GetUsage(ctx context.Context, days int, now time.Time) (*dto.UsageStatsResp, error) {
	since := now.Add(-time.Duration(days) * 24 * time.Hour)

	stats, err := s.repo.GetUsage(ctx, since)
	if err != nil {
		return nil, err
	}

	resp := &dto.UsageStatsResp{
		Days:      days,
		Since:     since.UnixMilli(),
		Endpoints: make([]dto.EndpointUsage, 0, len(stats)),
	}
	for _, st := range stats {
		resp.Endpoints = append(resp.Endpoints, dto.EndpointUsage{
			Endpoint:      st.Endpoint,
			TotalCalls:    st.TotalCalls,
			SuccessCount:  st.SuccessCount,
			FailedCount:   st.FailedCount,
			TimeoutCount:  st.TimeoutCount,
			AvgDurationMs: st.AvgDurationMs,
		})
	}
	return resp, nil
}
