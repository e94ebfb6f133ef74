package net

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// NewUpstreamRequest 上游请求构建器
// 统一封装鉴权头 (Authorization: Bearer) 和标准头 (Accept, Content-Type)
func NewUpstreamRequest(ctx context.Context, client *resty.Client, token string) *resty.Request {
	return client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(token)
}
