package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tradecouncil/internal/market"

	"github.com/tidwall/gjson"
)

// YahooSource 解析 Yahoo Finance v8 chart 接口的嵌套 JSON。
// 该接口的 quote 数组经常是"锯齿状"的：单根 K 线的任意字段都可能是
// null，数组之间长度也可能不一致，解析时逐下标容错处理。
type YahooSource struct {
	baseURL string
	client  *http.Client
}

func NewYahooSource(base string, timeout time.Duration) *YahooSource {
	if base == "" {
		base = "https://query1.finance.yahoo.com"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &YahooSource{
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}
}

func (y *YahooSource) Name() string { return "yahoo" }

func (y *YahooSource) Fetch(ctx context.Context, req Request) (market.PriceSeries, error) {
	if req.Ticker == "" {
		return nil, unavailable(y.Name(), fmt.Errorf("ticker 不能为空"))
	}
	interval := req.Interval
	if interval == "" {
		interval = "1d"
	}
	rangeKey := req.Range
	if rangeKey == "" {
		rangeKey = "1y"
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		y.baseURL, url.PathEscape(req.Ticker), url.QueryEscape(interval), url.QueryEscape(rangeKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, unavailable(y.Name(), err)
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.client.Do(httpReq)
	if err != nil {
		return nil, unavailable(y.Name(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(y.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(y.Name(), fmt.Errorf("status %d", resp.StatusCode))
	}
	series, err := ParseYahooChart(body)
	if err != nil {
		return nil, err
	}
	return series.Tail(LookbackDays(rangeKey)), nil
}

// ParseYahooChart 把 chart JSON 原始字节解析成归一化序列。
// 补值规则：open/high/low 缺失时用同下标 close 顶替，volume 缺失记 0，
// close 缺失的下标整根丢弃。
func ParseYahooChart(body []byte) (market.PriceSeries, error) {
	const src = "yahoo"
	if !gjson.ValidBytes(body) {
		return nil, formatErr(src, fmt.Errorf("payload is not valid JSON"))
	}
	root := gjson.ParseBytes(body)
	if apiErr := root.Get("chart.error"); apiErr.Exists() && apiErr.Type != gjson.Null {
		desc := apiErr.Get("description").String()
		if desc == "" {
			desc = apiErr.Raw
		}
		return nil, unavailable(src, fmt.Errorf("api error: %s", desc))
	}
	result := root.Get("chart.result.0")
	if !result.Exists() {
		return nil, formatErr(src, fmt.Errorf("chart.result missing"))
	}
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil, noData(src)
	}
	quote := result.Get("indicators.quote.0")
	if !quote.Exists() {
		return nil, formatErr(src, fmt.Errorf("indicators.quote missing"))
	}
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	bars := make([]market.Bar, 0, len(timestamps))
	for i, ts := range timestamps {
		c, ok := floatAt(closes, i)
		if !ok {
			continue
		}
		o, ok := floatAt(opens, i)
		if !ok {
			o = c
		}
		h, ok := floatAt(highs, i)
		if !ok {
			h = c
		}
		l, ok := floatAt(lows, i)
		if !ok {
			l = c
		}
		v := int64(0)
		if f, ok := floatAt(volumes, i); ok {
			v = int64(f)
		}
		bars = append(bars, market.Bar{
			Timestamp: ts.Int() * 1000,
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    v,
		})
	}
	if len(bars) == 0 {
		return nil, noData(src)
	}
	return market.Normalize(bars), nil
}

func floatAt(arr []gjson.Result, i int) (float64, bool) {
	if i >= len(arr) {
		return 0, false
	}
	v := arr[i]
	if v.Type == gjson.Null || !v.Exists() {
		return 0, false
	}
	return v.Float(), true
}
