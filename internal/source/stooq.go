package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tradecouncil/internal/market"
)

// StooqSource 读取 stooq.com 的日线 CSV（表头 Date,Open,High,Low,Close,Volume）。
// 美股代码带 .us 后缀；日期按 UTC 零点换算成毫秒时间戳。
type StooqSource struct {
	baseURL string
	client  *http.Client
}

func NewStooqSource(base string, timeout time.Duration) *StooqSource {
	if base == "" {
		base = "https://stooq.com"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &StooqSource{
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *StooqSource) Name() string { return "stooq" }

func stooqSymbol(ticker string) string {
	return strings.ToLower(strings.TrimSpace(ticker)) + ".us"
}

func (s *StooqSource) Fetch(ctx context.Context, req Request) (market.PriceSeries, error) {
	if req.Ticker == "" {
		return nil, unavailable(s.Name(), fmt.Errorf("ticker 不能为空"))
	}
	// stooq 的公开导出只有日线。
	u := fmt.Sprintf("%s/q/d/l/?s=%s&i=d", s.baseURL, stooqSymbol(req.Ticker))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(s.Name(), fmt.Errorf("status %d", resp.StatusCode))
	}
	series, err := ParseStooqCSV(resp.Body)
	if err != nil {
		return nil, err
	}
	return series.Tail(LookbackDays(req.Range)), nil
}

// ParseStooqCSV 解析日线 CSV。Close 为空或为 0 的行丢弃；
// Open/High/Low 为空时用 Close 顶替，Volume 为空记 0。
func ParseStooqCSV(r io.Reader) (market.PriceSeries, error) {
	const src = "stooq"
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, formatErr(src, fmt.Errorf("reading header: %w", err))
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, need := range []string{"date", "close"} {
		if _, ok := col[need]; !ok {
			return nil, formatErr(src, fmt.Errorf("missing %q column", need))
		}
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var bars []market.Bar
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, formatErr(src, err)
		}
		closeStr := field(row, "close")
		c, err := strconv.ParseFloat(closeStr, 64)
		if err != nil || c == 0 {
			continue
		}
		day, err := time.ParseInLocation("2006-01-02", field(row, "date"), time.UTC)
		if err != nil {
			continue
		}
		parseOr := func(name string, fallback float64) float64 {
			v, err := strconv.ParseFloat(field(row, name), 64)
			if err != nil {
				return fallback
			}
			return v
		}
		vol := int64(0)
		if v, err := strconv.ParseInt(field(row, "volume"), 10, 64); err == nil {
			vol = v
		}
		bars = append(bars, market.Bar{
			Timestamp: day.UnixMilli(),
			Open:      parseOr("open", c),
			High:      parseOr("high", c),
			Low:       parseOr("low", c),
			Close:     c,
			Volume:    vol,
		})
	}
	if len(bars) == 0 {
		return nil, noData(src)
	}
	return market.Normalize(bars), nil
}
