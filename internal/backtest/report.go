package backtest

import "github.com/shopspring/decimal"

// Stats 汇总一次回测的收益指标，数值统一用 decimal 四舍五入到两位，
// 避免前端展示时出现 0.30000000000000004 之类的浮点尾巴。
type Stats struct {
	FinalEquity float64 `json:"final_equity"`
	Profit      float64 `json:"profit"`
	ReturnPct   float64 `json:"return_pct"`
	Trades      int     `json:"trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	TotalFees   float64 `json:"total_fees"`
	MaxDrawdown float64 `json:"max_drawdown_pct"`
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func round4(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(4).Float64()
	return f
}

// Summarize 从回测结果推导统计：逐对 BUY/SELL 结算胜负，资金曲线
// 推导最大回撤。空结果返回零值统计。
func Summarize(res Result, p Params) Stats {
	st := Stats{Trades: len(res.Trades)}
	if len(res.EquityCurve) == 0 {
		return st
	}
	final := res.EquityCurve[len(res.EquityCurve)-1].Value
	st.FinalEquity = round2(final)
	st.Profit = round2(final - p.InitialCash)
	if p.InitialCash > 0 {
		st.ReturnPct = round4((final - p.InitialCash) / p.InitialCash)
	}

	fees := decimal.Zero
	var entry *Trade
	for i := range res.Trades {
		t := res.Trades[i]
		fees = fees.Add(decimal.NewFromFloat(t.Fee))
		switch t.Side {
		case SideBuy:
			entry = &res.Trades[i]
		case SideSell:
			if entry == nil {
				continue
			}
			proceeds := decimal.NewFromFloat(t.Price).Mul(decimal.NewFromInt(t.Shares)).Sub(decimal.NewFromFloat(t.Fee))
			cost := decimal.NewFromFloat(entry.Price).Mul(decimal.NewFromInt(entry.Shares)).Add(decimal.NewFromFloat(entry.Fee))
			if proceeds.GreaterThanOrEqual(cost) {
				st.Wins++
			} else {
				st.Losses++
			}
			entry = nil
		}
	}
	st.TotalFees = round2(fees.InexactFloat64())

	peak := res.EquityCurve[0].Value
	maxDD := 0.0
	for _, pt := range res.EquityCurve {
		if pt.Value > peak {
			peak = pt.Value
		}
		if peak > 0 {
			if dd := (peak - pt.Value) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	st.MaxDrawdown = round4(maxDD)
	return st
}
