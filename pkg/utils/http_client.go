package utils

import (
	"github.com/go-resty/resty/v2"
)

// NewUpstreamClient 创建访问上游 AI 服务的 Resty 客户端
// 超时由调用方通过 context 控制，这里不设全局超时，也不做重试（每次请求只尝试一次）
func NewUpstreamClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(0).
		SetHeader("User-Agent", "Couplet-Studio/1.0")
}
