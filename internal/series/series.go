package series

import "math"

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(values)))
}

// Volatility returns the coefficient of variation (stddev/mean).
// Fewer than 2 samples or a zero mean yields 0.
func Volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return StdDev(values) / math.Abs(mean)
}

// LinearFit fits y = slope*x + intercept over x = 0..n-1 by least squares
// and reports R². Fewer than 2 points yields a flat zero fit.
func LinearFit(y []float64) (slope, intercept, r2 float64) {
	n := len(y)
	if n < 2 {
		return 0, 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0, Mean(y), 0
	}

	slope = (fn*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / fn

	meanY := sumY / fn
	var ssTot, ssRes float64
	for i, v := range y {
		fit := slope*float64(i) + intercept
		ssTot += (v - meanY) * (v - meanY)
		ssRes += (v - fit) * (v - fit)
	}
	if ssTot == 0 {
		// Flat series: the fit is exact
		return slope, intercept, 1
	}
	r2 = 1 - ssRes/ssTot
	return slope, intercept, r2
}

// Resample keeps every stride-th sample, anchored so the most recent
// sample is always included. Stride 1 returns a copy.
func Resample(values []float64, stride int) []float64 {
	if stride <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	var out []float64
	for i := len(values) - 1; i >= 0; i -= stride {
		out = append(out, values[i])
	}

	// Collected backwards; restore chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
