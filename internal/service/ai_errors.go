package service

import (
	"fmt"
	"net/http"
)

// ==================== 错误分类 ====================

// ErrorType 接口失败分类，写入调用日志
type ErrorType string

const (
	ErrTypeValidation           ErrorType = "ValidationError"
	ErrTypeServerConfig         ErrorType = "ServerConfigError"
	ErrTypeUpstream             ErrorType = "UpstreamError"
	ErrTypeUpstreamEmptyContent ErrorType = "UpstreamEmptyContent"
	ErrTypeUpstreamEmptyImage   ErrorType = "UpstreamEmptyImage"
	ErrTypeModelOutputParse     ErrorType = "ModelOutputParseError"
	ErrTypeUpstreamTimeout      ErrorType = "UpstreamTimeout"
	ErrTypeNetworkOrService     ErrorType = "NetworkOrServiceError"
)

// AIError 面向用户的失败：Message 已本地化，可直接返回给前端
type AIError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AIError) Unwrap() error {
	return e.Cause
}

// StatusCode 分类对应的 HTTP 状态码
func (e *AIError) StatusCode() int {
	switch e.Type {
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeServerConfig:
		return http.StatusInternalServerError
	case ErrTypeUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// NewValidationError 请求参数错误
func NewValidationError(reason string) *AIError {
	return &AIError{
		Type:    ErrTypeValidation,
		Message: fmt.Sprintf("请求参数有误：%s。请检查后重试。", reason),
	}
}

// NewServerConfigError 服务端缺少上游凭证
func NewServerConfigError() *AIError {
	return &AIError{
		Type:    ErrTypeServerConfig,
		Message: "服务暂时不可用（配置缺失）。请联系管理员后重试。",
	}
}

// ==================== 分操作文案 ====================

// operationText 单个上游操作的失败文案
type operationText struct {
	upstream  string // 参数：上游 HTTP 状态码
	empty     string
	emptyType ErrorType
	timeout   string // 参数：超时秒数
	network   string
}

var (
	coupletText = operationText{
		upstream:  "上游服务暂时不可用（HTTP %d）。请稍后重试。",
		empty:     "生成结果为空，请稍后重试。",
		emptyType: ErrTypeUpstreamEmptyContent,
		timeout:   "生成请求超时（>%d 秒），请稍后重试。",
		network:   "调用上游服务失败，请检查网络后重试。",
	}
	posterText = operationText{
		upstream:  "海报服务暂时不可用（HTTP %d）。请稍后重试。",
		empty:     "海报生成结果为空，请稍后重试。",
		emptyType: ErrTypeUpstreamEmptyImage,
		timeout:   "海报生成超时（>%d 秒），请稍后重试。",
		network:   "调用海报服务失败，请检查网络后重试。",
	}
)

func (t operationText) emptyError() *AIError {
	return &AIError{Type: t.emptyType, Message: t.empty}
}
