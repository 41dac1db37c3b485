package backtest

// Side 标记成交方向。
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Trade 是一笔模拟成交，写入后不再修改。
type Trade struct {
	Timestamp int64   `json:"t"`
	Side      Side    `json:"side"`
	Price     float64 `json:"price"`
	Shares    int64   `json:"shares"`
	Fee       float64 `json:"fee"`
}

// EquityPoint 资金曲线上的一个点：value = cash + shares*close。
type EquityPoint struct {
	Timestamp int64   `json:"t"`
	Value     float64 `json:"v"`
}

// Params 一次回测的全部输入参数。
type Params struct {
	FastWindow  int     `json:"fast_window"`
	SlowWindow  int     `json:"slow_window"`
	InitialCash float64 `json:"initial_cash"`
	FeeBps      float64 `json:"fee_bps"`
	SlipBps     float64 `json:"slip_bps"`
}

// Result 一次回测的产出；空输入得到空曲线和空账本，不算失败。
type Result struct {
	EquityCurve []EquityPoint `json:"equity_curve"`
	Trades      []Trade       `json:"trades"`
}
