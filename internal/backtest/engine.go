package backtest

import (
	"math"

	"tradecouncil/internal/indicator"
	"tradecouncil/internal/market"
)

// Engine 按日推进双均线交叉策略：FLAT/LONG 两态，快线上穿慢线做多，
// 下穿平仓，只做多不做空，一次最多持有一个仓位。
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// position 单次回测的模拟仓位；整个 run 只有这一份，走完即弃。
type position struct {
	shares int64
	cash   float64
}

func (p *position) equity(close float64) float64 {
	return p.cash + float64(p.shares)*close
}

// Run 执行一次完整推演。每根 K 线都会记一个资金点（先记值再看信号）；
// 唯一的例外是最后一根：若当根发生了成交（含强制平仓），资金点在成交
// 之后重算，保证报告的最终权益是已落袋的现金而不是持仓市值。
func (e *Engine) Run(series market.PriceSeries, p Params) Result {
	res := Result{
		EquityCurve: []EquityPoint{},
		Trades:      []Trade{},
	}
	if len(series) == 0 {
		return res
	}

	closes := series.Closes()
	fast := indicator.SMA(closes, p.FastWindow)
	slow := indicator.SMA(closes, p.SlowWindow)

	pos := &position{cash: p.InitialCash}
	for i, bar := range series {
		res.EquityCurve = append(res.EquityCurve, EquityPoint{
			Timestamp: bar.Timestamp,
			Value:     pos.equity(bar.Close),
		})
		if indicator.Absent(fast[i]) || indicator.Absent(slow[i]) {
			continue
		}
		switch {
		case fast[i] > slow[i] && pos.shares == 0:
			if t, ok := e.buy(pos, bar, p); ok {
				res.Trades = append(res.Trades, t)
			}
		case fast[i] < slow[i] && pos.shares > 0:
			res.Trades = append(res.Trades, e.sell(pos, bar, p))
		}
		// fast == slow 不触发任何转换。
	}

	last := series[len(series)-1]
	if pos.shares > 0 {
		// 收尾强平，用普通卖出公式，让最终权益完全兑现为现金。
		res.Trades = append(res.Trades, e.sell(pos, last, p))
	}
	res.EquityCurve[len(res.EquityCurve)-1] = EquityPoint{
		Timestamp: last.Timestamp,
		Value:     pos.equity(last.Close),
	}
	return res
}

func (e *Engine) buy(pos *position, bar market.Bar, p Params) (Trade, bool) {
	execPrice := bar.Close * (1 + p.SlipBps/10000)
	if execPrice <= 0 {
		return Trade{}, false
	}
	shares := int64(math.Floor(pos.cash / execPrice))
	if shares <= 0 {
		return Trade{}, false
	}
	notional := float64(shares) * execPrice
	fee := notional * p.FeeBps / 10000
	pos.cash -= notional + fee
	pos.shares = shares
	return Trade{
		Timestamp: bar.Timestamp,
		Side:      SideBuy,
		Price:     execPrice,
		Shares:    shares,
		Fee:       fee,
	}, true
}

func (e *Engine) sell(pos *position, bar market.Bar, p Params) Trade {
	execPrice := bar.Close * (1 - p.SlipBps/10000)
	notional := float64(pos.shares) * execPrice
	fee := notional * p.FeeBps / 10000
	pos.cash += notional - fee
	t := Trade{
		Timestamp: bar.Timestamp,
		Side:      SideSell,
		Price:     execPrice,
		Shares:    pos.shares,
		Fee:       fee,
	}
	pos.shares = 0
	return t
}
