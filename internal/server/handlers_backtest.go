package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tradecouncil/internal/backtest"
	"tradecouncil/internal/chart"
	"tradecouncil/internal/source"
)

// backtestRequest 单次回测请求；零值字段落到配置里的默认参数。
type backtestRequest struct {
	Ticker      string  `json:"ticker" form:"ticker" binding:"required"`
	Range       string  `json:"range" form:"range"`
	Interval    string  `json:"interval" form:"interval"`
	Source      string  `json:"source" form:"source"`
	FastWindow  int     `json:"fast_window" form:"fast_window"`
	SlowWindow  int     `json:"slow_window" form:"slow_window"`
	InitialCash float64 `json:"initial_cash" form:"initial_cash"`
	FeeBps      float64 `json:"fee_bps" form:"fee_bps"`
	SlipBps     float64 `json:"slip_bps" form:"slip_bps"`
}

func (r *backtestRequest) normalize(defaults backtest.Params) backtest.Params {
	r.Ticker = strings.ToUpper(strings.TrimSpace(r.Ticker))
	if r.Range == "" {
		r.Range = "1y"
	}
	if r.Interval == "" {
		r.Interval = "1d"
	}
	if r.Source == "" {
		r.Source = source.HintAuto
	}
	p := defaults
	if r.FastWindow > 0 {
		p.FastWindow = r.FastWindow
	}
	if r.SlowWindow > 0 {
		p.SlowWindow = r.SlowWindow
	}
	if r.InitialCash > 0 {
		p.InitialCash = r.InitialCash
	}
	if r.FeeBps > 0 {
		p.FeeBps = r.FeeBps
	}
	if r.SlipBps > 0 {
		p.SlipBps = r.SlipBps
	}
	return p
}

func (s *Server) defaultParams() backtest.Params {
	return backtest.Params{
		FastWindow:  s.defaults.FastWindow,
		SlowWindow:  s.defaults.SlowWindow,
		InitialCash: s.defaults.InitialCash,
		FeeBps:      s.defaults.FeeBps,
		SlipBps:     s.defaults.SlipBps,
	}
}

func (s *Server) handleBacktestRun(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := req.normalize(s.defaultParams())
	if p.FastWindow >= p.SlowWindow {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fast_window must be smaller than slow_window"})
		return
	}

	series, ok := s.resolveSeries(c, req.Ticker, req.Range, req.Interval, req.Source)
	if !ok {
		return
	}
	res := s.engine.Run(series, p)
	c.JSON(http.StatusOK, gin.H{
		"ticker":       req.Ticker,
		"params":       p,
		"stats":        backtest.Summarize(res, p),
		"equity_curve": res.EquityCurve,
		"trades":       res.Trades,
	})
}

func (s *Server) handleBacktestChart(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := req.normalize(s.defaultParams())
	if p.FastWindow >= p.SlowWindow {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fast_window must be smaller than slow_window"})
		return
	}

	series, ok := s.resolveSeries(c, req.Ticker, req.Range, req.Interval, req.Source)
	if !ok {
		return
	}
	res := s.engine.Run(series, p)
	if len(res.EquityCurve) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no bars in range, nothing to chart"})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := chart.RenderEquity(c.Writer, req.Ticker, res, backtest.Summarize(res, p)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
