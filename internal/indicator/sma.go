// Package indicator implements the streaming indicators the backtest
// engine consumes. Output slices are index-aligned with their input;
// gaps are represented as NaN and tested with Absent.
package indicator

import "math"

// Absent reports whether a slot carries no value (window not yet full,
// or a null input at that index).
func Absent(v float64) bool { return math.IsNaN(v) }

func absentValue() float64 { return math.NaN() }

// SMA computes a simple moving average with a running sum and a bounded
// queue of the last `window` observed values. Null inputs (NaN) are not
// pushed into the queue and produce an absent output at their index;
// the window needs `window` non-null observations before the first value.
func SMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 0 {
		for i := range out {
			out[i] = absentValue()
		}
		return out
	}
	queue := make([]float64, 0, window)
	sum := 0.0
	for i, v := range values {
		if Absent(v) {
			out[i] = absentValue()
			continue
		}
		queue = append(queue, v)
		sum += v
		if len(queue) > window {
			sum -= queue[0]
			queue = queue[1:]
		}
		if len(queue) == window {
			out[i] = sum / float64(window)
		} else {
			out[i] = absentValue()
		}
	}
	return out
}
