package market

import "sort"

// Bar 是单根日线（或其它周期）的 OHLCV 样本，时间戳为 Unix 毫秒。
// 归一化之后 Close 一定有值；上游缺失 Close 的行在解析阶段就被丢弃。
type Bar struct {
	Timestamp int64   `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    int64   `json:"v"`
}

// PriceSeries 是同一 ticker 在一个 range/interval 下的有序序列，
// 按时间升序且时间戳唯一，由发起请求的调用方独占。
type PriceSeries []Bar

// Normalize 排序并按时间戳去重（保留后出现的一根）。
func Normalize(bars []Bar) PriceSeries {
	if len(bars) == 0 {
		return nil
	}
	sorted := append([]Bar(nil), bars...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })
	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Timestamp == b.Timestamp {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return PriceSeries(out)
}

// Closes 返回收盘价序列，与 bars 下标对齐。
func (s PriceSeries) Closes() []float64 {
	if len(s) == 0 {
		return nil
	}
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Tail 保留最近的 n 根；n<=0 表示不截断。
func (s PriceSeries) Tail(n int) PriceSeries {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Timestamps 返回毫秒时间戳序列。
func (s PriceSeries) Timestamps() []int64 {
	if len(s) == 0 {
		return nil
	}
	out := make([]int64, len(s))
	for i, b := range s {
		out[i] = b.Timestamp
	}
	return out
}
