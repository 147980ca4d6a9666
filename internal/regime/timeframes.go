package regime

import (
	"math"

	"market-advisor/internal/series"
	"market-advisor/pkg/types"
)

// Resample strides emulating hourly, 4-hour and daily views of a
// high-resolution close series
var timeframeStrides = [...]int{1, 4, 24}

// AnalyzeTimeframes reads the trend at each stride and derives a
// majority-vote consensus. Confidence follows
// 50 + 2*avgStrength + 30*(majority/3), clamped to [30, 95].
func AnalyzeTimeframes(closes []float64) types.MultiTimeframe {
	mtf := types.MultiTimeframe{Consensus: types.Neutral, Confidence: 50}

	votes := map[types.Direction]int{}
	var strengthSum float64
	var counted int

	for _, stride := range timeframeStrides {
		resampled := series.Resample(closes, stride)
		if len(resampled) < 5 {
			continue
		}

		view := readTimeframe(resampled, stride)
		mtf.Views = append(mtf.Views, view)
		votes[view.Direction]++
		strengthSum += view.Strength
		counted++
	}

	if counted == 0 {
		return mtf
	}

	majority := 0
	for _, dir := range []types.Direction{types.Bullish, types.Bearish} {
		if votes[dir] > majority {
			majority = votes[dir]
			mtf.Consensus = dir
		} else if votes[dir] == majority && majority > 0 {
			// Tie between bullish and bearish reads
			mtf.Consensus = types.Neutral
		}
	}
	if majority == 0 {
		mtf.Consensus = types.Neutral
	}

	avgStrength := strengthSum / float64(counted)
	confidence := 50 + 2*avgStrength + 30*float64(majority)/3
	mtf.Confidence = series.Clamp(confidence, 30, 95)

	return mtf
}

// readTimeframe fits a regression line over the most recent <=20
// resampled samples; the normalized slope sets direction and strength
func readTimeframe(resampled []float64, stride int) types.TimeframeView {
	window := resampled
	if len(window) > 20 {
		window = window[len(window)-20:]
	}

	slope, _, _ := series.LinearFit(window)
	mean := series.Mean(window)

	normSlope := 0.0
	if mean != 0 {
		normSlope = slope / mean
	}

	direction := types.Neutral
	if normSlope > 0.001 {
		direction = types.Bullish
	} else if normSlope < -0.001 {
		direction = types.Bearish
	}

	momentum := 0.0
	if n := len(resampled); n >= 6 && resampled[n-6] != 0 {
		momentum = (resampled[n-1] - resampled[n-6]) / resampled[n-6]
	}

	return types.TimeframeView{
		Stride:    stride,
		Direction: direction,
		Strength:  series.Clamp(math.Abs(normSlope)*1000, 0, 10),
		Momentum:  momentum,
	}
}
