package indicator

// rsiEpsilon floors the smoothed loss average so RS never divides by zero
// on monotonically rising input.
const rsiEpsilon = 1e-9

// RSI computes the relative strength index with exponential smoothing of
// gains and losses (alpha = 1/window). Index 0 and null inputs are absent;
// the smoothing state skips over nulls rather than resetting.
func RSI(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = absentValue()
	}
	if window <= 0 || len(values) < 2 {
		return out
	}
	alpha := 1.0 / float64(window)
	var avgGain, avgLoss float64
	prev := absentValue()
	seeded := false
	for i, v := range values {
		if Absent(v) {
			continue
		}
		if Absent(prev) {
			prev = v
			continue
		}
		delta := v - prev
		prev = v
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		if !seeded {
			avgGain, avgLoss = gain, loss
			seeded = true
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		rs := avgGain / (avgLoss + rsiEpsilon)
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
