package source

import (
	"context"

	"tradecouncil/internal/market"
)

// Request 描述一次行情拉取：range 为 Yahoo 风格窗口（"1mo"/"1y"/...），
// interval 目前只支持日线 "1d"。
type Request struct {
	Ticker   string
	Range    string
	Interval string
}

// BarSource 统一不同上游行情提供方的拉取行为；实现方负责把各自的
// wire 格式解析成归一化的 PriceSeries，失败时返回 *Error。
type BarSource interface {
	Fetch(ctx context.Context, req Request) (market.PriceSeries, error)
	Name() string
}
