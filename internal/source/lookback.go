package source

import "strings"

// rangeLookback 把 range 关键字换算成交易日数量；上游多给的历史按
// 该数量右截断，保留最近的 K 线。"max" 不截断。
var rangeLookback = map[string]int{
	"5d":  5,
	"1mo": 22,
	"3mo": 66,
	"6mo": 126,
	"1y":  252,
	"2y":  504,
	"5y":  1260,
	"max": 0,
}

// LookbackDays 返回 range 对应的交易日窗口；未知 range 按 1y 处理。
func LookbackDays(rangeKey string) int {
	key := strings.ToLower(strings.TrimSpace(rangeKey))
	if n, ok := rangeLookback[key]; ok {
		return n
	}
	return rangeLookback["1y"]
}
