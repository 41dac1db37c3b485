// Package chart renders backtest results as self-contained HTML charts.
package chart

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"tradecouncil/internal/backtest"
)

const (
	colorBackground = "#060c1b"
	colorTextMain   = "#eceff4"
	colorTextMuted  = "#9ca3af"
	colorEquity     = "#3b82f6"
	colorBuyMark    = "#34d399"
	colorSellMark   = "#f87171"
)

// RenderEquity writes an HTML line chart of the equity curve with trade
// markers to w.
func RenderEquity(w io.Writer, ticker string, res backtest.Result, st backtest.Stats) error {
	if len(res.EquityCurve) == 0 {
		return fmt.Errorf("empty equity curve for %s", ticker)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           "1200px",
			Height:          "560px",
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         fmt.Sprintf("%s equity curve", strings.ToUpper(ticker)),
			Subtitle:      fmt.Sprintf("final %.2f | return %.2f%% | trades %d | max drawdown %.2f%%", st.FinalEquity, st.ReturnPct*100, st.Trades, st.MaxDrawdown*100),
			Left:          "left",
			TitleStyle:    &opts.TextStyle{Color: colorTextMain, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextMuted},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextMuted},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextMuted},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextMuted, Opacity: opts.Float(0.2)}},
		}),
	)

	xAxis := make([]string, len(res.EquityCurve))
	data := make([]opts.LineData, len(res.EquityCurve))
	for i, pt := range res.EquityCurve {
		xAxis[i] = time.UnixMilli(pt.Timestamp).UTC().Format("2006-01-02")
		data[i] = opts.LineData{Value: pt.Value}
	}
	line.SetXAxis(xAxis)
	line.AddSeries("Equity", data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorEquity, Width: 2}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	line.AddSeries("Buys", tradeMarkers(res, backtest.SideBuy),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorBuyMark}),
		charts.WithLineStyleOpts(opts.LineStyle{Opacity: opts.Float(0)}),
	)
	line.AddSeries("Sells", tradeMarkers(res, backtest.SideSell),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorSellMark}),
		charts.WithLineStyleOpts(opts.LineStyle{Opacity: opts.Float(0)}),
	)
	return line.Render(w)
}

// tradeMarkers projects one side of the trade ledger onto the equity axis
// so fills show up as colored dots on the curve.
func tradeMarkers(res backtest.Result, side backtest.Side) []opts.LineData {
	byTS := make(map[int64]bool, len(res.Trades))
	for _, t := range res.Trades {
		if t.Side == side {
			byTS[t.Timestamp] = true
		}
	}
	marks := make([]opts.LineData, len(res.EquityCurve))
	for i, pt := range res.EquityCurve {
		if !byTS[pt.Timestamp] {
			marks[i] = opts.LineData{Value: nil}
			continue
		}
		marks[i] = opts.LineData{
			Value:      pt.Value,
			Symbol:     "circle",
			SymbolSize: 10,
		}
	}
	return marks
}
