package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"couplet_studio_202602/internal/api/dto"
	"couplet_studio_202602/internal/model"
	"couplet_studio_202602/internal/service"
)

type CoupletController struct {
	aiService      *service.AIService
	recorder       *service.CallRecorder
	storageService *service.StorageService // 可为 nil：不归档
	statsService   *service.StatsService   // 可为 nil：未开启持久化
	logger         *zap.Logger
}

func NewCoupletController(
	aiService *service.AIService,
	recorder *service.CallRecorder,
	storageService *service.StorageService,
	statsService *service.StatsService,
	logger *zap.Logger,
) *CoupletController {
	return &CoupletController{
		aiService:      aiService,
		recorder:       recorder,
		storageService: storageService,
		statsService:   statsService,
		logger:         logger,
	}
}

// apiCall 单个接口的业务部分：校验 + 调用上游
type apiCall func(ctx context.Context, requestID string, payload any) (data any, err error)

// maxRequestBodyBytes 超出部分按非法请求体处理
const maxRequestBodyBytes = 64 << 10

// serve 两个生成接口共用的处理流程
func (h *CoupletController) serve(c *gin.Context, endpoint, modelName string, call apiCall) {
	requestID := uuid.NewString()
	startedAt := time.Now()

	record := service.CallRecord{
		RequestID: requestID,
		Endpoint:  endpoint,
		Provider:  h.aiService.Provider(),
		Model:     modelName,
	}

	// panic 交给 gin.Recovery 返回 500，这里先补一条调用记录
	defer func() {
		if r := recover(); r != nil {
			record.StatusCode = http.StatusInternalServerError
			record.ErrorType = service.ErrorTypeOf(&service.AIError{Type: service.ErrTypeNetworkOrService})
			record.ErrorMsg = fmt.Sprintf("panic: %v", r)
			record.DurationMs = time.Since(startedAt).Milliseconds()
			h.recorder.Record(c.Request.Context(), record)
			panic(r)
		}
	}()

	// 请求体不是合法 JSON 或超长时按 nil 交给校验
	var payload any
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes)
	if raw, err := io.ReadAll(body); err == nil {
		if err := json.Unmarshal(raw, &payload); err != nil {
			payload = nil
		}
	}

	data, err := call(c.Request.Context(), requestID, payload)

	if err != nil {
		var aiErr *service.AIError
		if !errors.As(err, &aiErr) {
			aiErr = &service.AIError{Type: service.ErrTypeNetworkOrService, Message: "服务暂时不可用，请稍后重试。", Cause: err}
		}
		record.StatusCode = aiErr.StatusCode()
		record.ErrorType = service.ErrorTypeOf(aiErr)
		record.ErrorMsg = aiErr.Error()
		c.JSON(record.StatusCode, dto.ErrorResp{RequestID: requestID, Error: aiErr.Message})
	} else {
		record.StatusCode = http.StatusOK
		c.JSON(http.StatusOK, dto.SuccessResp[any]{
			RequestID: requestID,
			Data:      data,
			Provider:  h.aiService.Provider(),
			Model:     modelName,
		})
	}

	record.DurationMs = time.Since(startedAt).Milliseconds()
	h.recorder.Record(c.Request.Context(), record)
}

// ==========================================
// 1. 春联生成
// ==========================================

// Generate 生成春联
// @Summary 生成春联
// @Description 根据主题、风格、行业、语气与禁忌词生成上联、下联、横批、解释与风格标签
// @Tags Couplet
// @Accept json
// @Produce json
// @Param request body dto.GenerateCoupletReq true "生成参数"
// @Success 200 {object} dto.CoupletResp
// @Failure 400 {object} dto.ErrorResp "参数错误"
// @Failure 500 {object} dto.ErrorResp "配置缺失"
// @Failure 502 {object} dto.ErrorResp "上游失败"
// @Failure 504 {object} dto.ErrorResp "上游超时"
// @Router /api/couplet/generate [post]
func (h *CoupletController) Generate(c *gin.Context) {
	h.serve(c, model.EndpointGenerate, h.aiService.TextModel(), func(ctx context.Context, _ string, payload any) (any, error) {
		parsed := service.ParseGenerateRequest(payload)
		if !parsed.OK {
			return nil, service.NewValidationError(parsed.Error)
		}

		result, err := h.aiService.GenerateCouplet(ctx, &parsed.Data)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}

// ==========================================
// 2. 海报生成
// ==========================================

// Poster 生成春联海报
// @Summary 生成春联海报
// @Description 根据已生成的春联绘制竖版海报，返回 Base64 或图片地址；开启归档时附带 archiveUrl
// @Tags Couplet
// @Accept json
// @Produce json
// @Param request body dto.PosterReq true "海报参数"
// @Success 200 {object} dto.PosterResp
// @Failure 400 {object} dto.ErrorResp "参数错误"
// @Failure 500 {object} dto.ErrorResp "配置缺失"
// @Failure 502 {object} dto.ErrorResp "上游失败"
// @Failure 504 {object} dto.ErrorResp "上游超时"
// @Router /api/couplet/poster [post]
func (h *CoupletController) Poster(c *gin.Context) {
	h.serve(c, model.EndpointPoster, h.aiService.ImageModel(), func(ctx context.Context, requestID string, payload any) (any, error) {
		parsed := service.ParsePosterRequest(payload)
		if !parsed.OK {
			return nil, service.NewValidationError(parsed.Error)
		}

		result, err := h.aiService.GeneratePoster(ctx, &parsed.Data)
		if err != nil {
			return nil, err
		}

		h.archivePoster(ctx, requestID, result)
		return result, nil
	})
}

// archivePoster 归档失败不影响响应
func (h *CoupletController) archivePoster(ctx context.Context, requestID string, result *dto.PosterResult) {
	if h.storageService == nil || result.ImageBase64 == "" {
		return
	}

	url, err := h.storageService.SavePoster(ctx, requestID, result.ImageBase64)
	if err != nil {
		h.logger.Warn("海报归档失败", zap.String("requestId", requestID), zap.Error(err))
		return
	}
	result.ArchiveURL = url
}

// ==========================================
// 3. 调用统计
// ==========================================

// Stats 调用统计
// @Summary 获取调用统计
// @Description 按接口汇总最近 N 天的调用次数、成功/失败/超时次数与平均耗时，需开启 DATABASE_DSN
// @Tags Couplet
// @Produce json
// @Param days query int false "统计天数 (1-90，默认 7)"
// @Success 200 {object} dto.UsageStatsResp
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 503 {object} map[string]string "未开启持久化"
// @Router /api/couplet/stats [get]
func (h *CoupletController) Stats(c *gin.Context) {
	if h.statsService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "调用统计未开启"})
		return
	}

	days := service.DefaultStatsDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > service.MaxStatsDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days 必须是 1-90 之间的整数"})
			return
		}
		days = parsed
	}

	resp, err := h.statsService.GetUsage(c.Request.Context(), days, time.Now())
	if err != nil {
		h.logger.Error("查询调用统计失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询调用统计失败"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
