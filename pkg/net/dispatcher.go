package net

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrTimeout 上游请求超过截止时间被取消
// 调用方通过 errors.Is(err, ErrTimeout) 区分超时与其他网络错误
var ErrTimeout = errors.New("upstream request timed out")

// Dispatcher 网络调度器：为单次上游请求施加截止时间
type Dispatcher interface {
	// Send 发送请求，只尝试一次
	// 超时返回的错误满足 errors.Is(err, ErrTimeout)，其余传输错误原样返回
	Send(ctx context.Context, req *resty.Request, method, url string) (*resty.Response, error)

	// Timeout 当前生效的截止时长
	Timeout() time.Duration
}

type httpDispatcher struct {
	timeout time.Duration
}

var _ Dispatcher = (*httpDispatcher)(nil)

func NewDispatcher(timeout time.Duration) Dispatcher {
	return &httpDispatcher{timeout: timeout}
}

func (d *httpDispatcher) Timeout() time.Duration {
	return d.timeout
}

func (d *httpDispatcher) Send(ctx context.Context, req *resty.Request, method, url string) (*resty.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	// 无论成功与否都取消，释放底层连接
	defer cancel()

	resp, err := req.SetContext(ctx).Execute(method, url)
	if err == nil {
		return resp, nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return resp, fmt.Errorf("%w after %s: %w", ErrTimeout, d.timeout, err)
	}
	return resp, err
}
