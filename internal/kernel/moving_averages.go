package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// All functions below leave out untouched when period is out of range.

// SMA is the simple moving average; the first period-1 values are the
// running mean of what is available.
func SMA(data, out []float64, period int) {
	n := len(data)
	if period <= 0 || period > n {
		return
	}
	sum := 0.0
	i := 0
	for ; i < period; i++ {
		sum += data[i]
		out[i] = sum / float64(i+1)
	}
	for ; i < n; i++ {
		sum += data[i] - data[i-period]
		out[i] = sum / float64(period)
	}
}

// ESMA is exponential smoothing seeded with the first value.
func ESMA(data, out []float64, period int, alpha float64) {
	n := len(data)
	if period <= 0 || period > n || alpha < 0 {
		return
	}
	out[0] = data[0]
	for i := 1; i < n; i++ {
		out[i] = alpha*data[i] + (1-alpha)*out[i-1]
	}
}

func EMA(data, out []float64, period int) {
	ESMA(data, out, period, 2/(float64(period)+1))
}

// RMA is Wilder's smoothing.
func RMA(data, out []float64, period int) {
	if period <= 0 {
		return
	}
	ESMA(data, out, period, 1/float64(period))
}

// WMA weights the newest value in the window the most.
func WMA(data, out []float64, period int) {
	n := len(data)
	if period <= 0 || period > n {
		return
	}
	weights := make([]float64, period)
	for i := range weights {
		weights[i] = float64(i + 1)
	}
	for i := 0; i < n; i++ {
		w := period
		if i+1 < period {
			w = i + 1
		}
		window := data[i-w+1 : i+1]
		out[i] = floats.Dot(weights[:w], window) / floats.Sum(weights[:w])
	}
}

func HMA(data, out []float64, period int) {
	n := len(data)
	if period <= 0 || period > n {
		return
	}
	half := make([]float64, n)
	full := make([]float64, n)
	WMA(data, half, max(period/2, 1))
	WMA(data, full, period)
	diff := make([]float64, n)
	floats.ScaleTo(diff, 2, half)
	floats.Sub(diff, full)
	WMA(diff, out, max(int(math.Sqrt(float64(period))), 1))
}

func DEMA(data, out []float64, period int) {
	n := len(data)
	if period <= 0 || period > n {
		return
	}
	e1 := make([]float64, n)
	e2 := make([]float64, n)
	EMA(data, e1, period)
	EMA(e1, e2, period)
	for i := range out {
		out[i] = 2*e1[i] - e2[i]
	}
}

func TEMA(data, out []float64, period int) {
	n := len(data)
	if period <= 0 || period > n {
		return
	}
	e1 := make([]float64, n)
	e2 := make([]float64, n)
	e3 := make([]float64, n)
	EMA(data, e1, period)
	EMA(e1, e2, period)
	EMA(e2, e3, period)
	for i := range out {
		out[i] = 3*e1[i] - 3*e2[i] + e3[i]
	}
}

// KAMA is Kaufman's adaptive moving average seeded with the SMA.
func KAMA(data, out []float64, period, fast, slow int) {
	n := len(data)
	if period <= 0 || period > n || fast <= 0 || slow <= 0 || fast > n || slow > n {
		return
	}
	if fast > slow {
		fast, slow = slow, fast
	}
	scFast := 2 / (float64(fast) + 1)
	scSlow := 2 / (float64(slow) + 1)

	SMA(data[:period], out[:period], period)
	for i := period; i < n; i++ {
		noise := 0.0
		for j := 0; j < period; j++ {
			noise += math.Abs(data[i-j] - data[i-j-1])
		}
		er := 0.0
		if noise > 0 {
			er = math.Abs(data[i]-data[i-period]) / noise
		}
		sc := math.Pow(er*(scFast-scSlow)+scSlow, 2)
		out[i] = out[i-1] + sc*(data[i]-out[i-1])
	}
}

// FRAMA is Ehlers' fractal adaptive moving average.
func FRAMA(data, out, high, low []float64, period int) {
	n := len(data)
	if period <= 0 || period > n {
		return
	}
	if period < 2 {
		copy(out, data)
		return
	}
	half := period / 2
	for t := 0; t < n; t++ {
		if t < period-1 {
			out[t] = floats.Sum(data[:t+1]) / float64(t+1)
			continue
		}
		if t == period-1 {
			out[t] = floats.Sum(data[:period]) / float64(period)
			continue
		}
		start := t - period + 1
		whole := floats.Max(high[start:t+1]) - floats.Min(low[start:t+1])
		first := floats.Max(high[start:start+half]) - floats.Min(low[start:start+half])
		second := floats.Max(high[t-half+1:t+1]) - floats.Min(low[t-half+1:t+1])

		d := 0.0
		if whole > 0 && first+second > 0 {
			d = (math.Log(first+second) - math.Log(whole)) / math.Log(2)
		}
		d = math.Min(math.Max(d, 1), 2)
		alpha := math.Min(math.Max(math.Exp(-4.6*(d-1)), 0.01), 1)
		out[t] = alpha*data[t] + (1-alpha)*out[t-1]
	}
}
