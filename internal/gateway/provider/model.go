package provider

import (
	"context"
	"errors"
)

// ChatPayload 一次文本补全请求的材料。
type ChatPayload struct {
	System string
	User   string
}

// ModelProvider 统一不同模型后端的调用方式。调用方不区分失败种类的
// 轻重：超时、限流、坏响应在上层一律按同一种传输失败降级处理。
type ModelProvider interface {
	ID() string
	Enabled() bool
	Call(ctx context.Context, payload ChatPayload) (string, error)
}

// 失败分类，errors.Is 可判。
var (
	ErrUnavailable = errors.New("provider unavailable")
	ErrRateLimited = errors.New("provider rate limited")
	ErrBadResponse = errors.New("provider bad response")
)
