package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMAAlignedOutput(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5}
	out := SMA(in, 3)
	require.Len(t, out, len(in))

	assert.True(t, Absent(out[0]))
	assert.True(t, Absent(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestSMANonAbsentCount(t *testing.T) {
	// L 根无空洞输入、窗口 W 产出恰好 L-W+1 个有效值
	in := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	for w := 1; w <= len(in); w++ {
		out := SMA(in, w)
		count := 0
		for _, v := range out {
			if !Absent(v) {
				count++
			}
		}
		assert.Equal(t, len(in)-w+1, count, "window=%d", w)
	}
}

func TestSMAWindowOne(t *testing.T) {
	in := []float64{7, 8, 9}
	out := SMA(in, 1)
	for i, v := range in {
		assert.InDelta(t, v, out[i], 1e-9)
	}
}

func TestSMAConstantSeries(t *testing.T) {
	in := make([]float64, 10)
	for i := range in {
		in[i] = 42
	}
	out := SMA(in, 4)
	for i := 3; i < len(out); i++ {
		assert.InDelta(t, 42.0, out[i], 1e-9)
	}
}

func TestSMANullsExcludedFromWindow(t *testing.T) {
	nan := math.NaN()
	in := []float64{1, nan, 2, 3, nan, 4}
	out := SMA(in, 3)

	// null 下标本身缺值
	assert.True(t, Absent(out[1]))
	assert.True(t, Absent(out[4]))
	// 第三个非空观测出现在下标 3：(1+2+3)/3
	assert.True(t, Absent(out[0]))
	assert.True(t, Absent(out[2]))
	assert.InDelta(t, 2.0, out[3], 1e-9)
	// 下标 5 时窗口是 2,3,4
	assert.InDelta(t, 3.0, out[5], 1e-9)
}

func TestSMAWindowLargerThanInput(t *testing.T) {
	out := SMA([]float64{1, 2}, 5)
	for _, v := range out {
		assert.True(t, Absent(v))
	}
}

func TestSMANonPositiveWindow(t *testing.T) {
	out := SMA([]float64{1, 2, 3}, 0)
	for _, v := range out {
		assert.True(t, Absent(v))
	}
}

func TestRSIBounds(t *testing.T) {
	in := []float64{10, 11, 10.5, 12, 11.8, 13, 12.5, 14, 13.7, 15, 14.2, 16}
	out := RSI(in, 5)
	require.Len(t, out, len(in))
	assert.True(t, Absent(out[0]))
	for i := 1; i < len(out); i++ {
		if Absent(out[i]) {
			continue
		}
		assert.GreaterOrEqual(t, out[i], 0.0)
		assert.LessOrEqual(t, out[i], 100.0)
	}
}

func TestRSIAllGainsNearHundred(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	out := RSI(in, 3)
	last := out[len(out)-1]
	require.False(t, Absent(last))
	// 没有任何下跌时 RSI 贴近 100（epsilon 防止除零）
	assert.Greater(t, last, 99.0)
}
