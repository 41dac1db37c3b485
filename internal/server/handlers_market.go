package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tradecouncil/internal/market"
	"tradecouncil/internal/source"
)

// priceQuery 行情查询参数；source 为空等同 auto。
type priceQuery struct {
	Ticker   string `form:"ticker" binding:"required"`
	Range    string `form:"range"`
	Interval string `form:"interval"`
	Source   string `form:"source"`
}

func (q *priceQuery) normalize() {
	q.Ticker = strings.ToUpper(strings.TrimSpace(q.Ticker))
	if q.Range == "" {
		q.Range = "1y"
	}
	if q.Interval == "" {
		q.Interval = "1d"
	}
	if q.Source == "" {
		q.Source = source.HintAuto
	}
}

func (s *Server) handlePrices(c *gin.Context) {
	var q priceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q.normalize()

	resolved, err := s.resolver.Resolve(c.Request.Context(), source.Request{
		Ticker:   q.Ticker,
		Range:    q.Range,
		Interval: q.Interval,
	}, q.Source)
	if err != nil {
		writeSourceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ticker":   q.Ticker,
		"range":    q.Range,
		"interval": q.Interval,
		"source":   resolved.Source,
		"attempts": resolved.Attempts,
		"bars":     resolved.Series,
	})
}

// writeSourceError 把数据源失败映射为带逐源明细的 HTTP 响应。没有兜底
// 数据：拿不到行情就明说。
func writeSourceError(c *gin.Context, err error) {
	var all *source.AllSourcesFailed
	if errors.As(err, &all) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":    "all sources failed",
			"ticker":   all.Ticker,
			"attempts": all.Attempts,
		})
		return
	}
	var se *source.Error
	if errors.As(err, &se) {
		status := http.StatusBadGateway
		if se.Kind == source.KindNoData {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": se.Error(), "source": se.Source, "kind": se.Kind})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// resolveSeries 是回测两个端点共用的取数逻辑。
func (s *Server) resolveSeries(c *gin.Context, ticker, rng, interval, hint string) (market.PriceSeries, bool) {
	resolved, err := s.resolver.Resolve(c.Request.Context(), source.Request{
		Ticker:   ticker,
		Range:    rng,
		Interval: interval,
	}, hint)
	if err != nil {
		writeSourceError(c, err)
		return nil, false
	}
	return resolved.Series, true
}
