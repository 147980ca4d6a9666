package indicators

import (
	"math"

	"market-advisor/internal/series"
	"market-advisor/pkg/types"
)

type pivot struct {
	index int
	price float64
}

const patternLookback = 50

// DetectPatterns scans the most recent <=50 samples for chart patterns.
// Each detected pattern contributes an index-aligned tag, confidence and
// directional signal to the returned set. Series shorter than 20 samples
// return an empty set.
func DetectPatterns(highs, lows, closes []float64) types.PatternSet {
	var set types.PatternSet
	if len(closes) < 20 {
		return set
	}

	start := 0
	if len(closes) > patternLookback {
		start = len(closes) - patternLookback
	}
	window := closes[start:]

	peaks := findExtrema(window, true)
	troughs := findExtrema(window, false)

	detectDoubleTop(&set, peaks)
	detectDoubleBottom(&set, troughs)
	detectHeadAndShoulders(&set, peaks, troughs)
	detectTriangles(&set, peaks, troughs)
	detectTrend(&set, window)
	detectBreakout(&set, highs[start:], lows[start:], window)
	detectDivergence(&set, closes, peaks, troughs, start)

	return set
}

// findExtrema returns local peaks (or troughs) that strictly dominate
// their 2 neighbours on each side
func findExtrema(closes []float64, peak bool) []pivot {
	var out []pivot
	for i := 2; i < len(closes)-2; i++ {
		dominates := true
		for _, j := range []int{i - 2, i - 1, i + 1, i + 2} {
			if peak && closes[j] >= closes[i] {
				dominates = false
				break
			}
			if !peak && closes[j] <= closes[i] {
				dominates = false
				break
			}
		}
		if dominates {
			out = append(out, pivot{index: i, price: closes[i]})
		}
	}
	return out
}

// detectDoubleTop matches two peaks within 3% of each other in height,
// 5-30 samples apart
func detectDoubleTop(set *types.PatternSet, peaks []pivot) {
	if len(peaks) < 2 {
		return
	}
	last, prev := peaks[len(peaks)-1], peaks[len(peaks)-2]

	gap := last.index - prev.index
	if gap < 5 || gap > 30 {
		return
	}
	diff := math.Abs(last.price-prev.price) / prev.price
	if diff >= 0.03 {
		return
	}

	confidence := 70 + (0.03-diff)/0.03*15
	set.Add(types.PatternDoubleTop, confidence, types.Bearish)
}

func detectDoubleBottom(set *types.PatternSet, troughs []pivot) {
	if len(troughs) < 2 {
		return
	}
	last, prev := troughs[len(troughs)-1], troughs[len(troughs)-2]

	gap := last.index - prev.index
	if gap < 5 || gap > 30 {
		return
	}
	diff := math.Abs(last.price-prev.price) / prev.price
	if diff >= 0.03 {
		return
	}

	confidence := 70 + (0.03-diff)/0.03*15
	set.Add(types.PatternDoubleBottom, confidence, types.Bullish)
}

// detectHeadAndShoulders matches three peaks where the middle one is
// strictly higher and the shoulders are within 5% of each other
func detectHeadAndShoulders(set *types.PatternSet, peaks, troughs []pivot) {
	if len(peaks) >= 3 {
		left, head, right := peaks[len(peaks)-3], peaks[len(peaks)-2], peaks[len(peaks)-1]
		if head.price > left.price && head.price > right.price {
			shoulderDiff := math.Abs(left.price-right.price) / left.price
			if shoulderDiff < 0.05 {
				confidence := 72 + (0.05-shoulderDiff)/0.05*10
				set.Add(types.PatternHeadAndShoulders, confidence, types.Bearish)
			}
		}
	}

	if len(troughs) >= 3 {
		left, head, right := troughs[len(troughs)-3], troughs[len(troughs)-2], troughs[len(troughs)-1]
		if head.price < left.price && head.price < right.price {
			shoulderDiff := math.Abs(left.price-right.price) / left.price
			if shoulderDiff < 0.05 {
				confidence := 72 + (0.05-shoulderDiff)/0.05*10
				set.Add(types.PatternInverseHS, confidence, types.Bullish)
			}
		}
	}
}

// detectTriangles looks for a flat edge with a converging opposite edge
func detectTriangles(set *types.PatternSet, peaks, troughs []pivot) {
	if len(peaks) < 2 || len(troughs) < 2 {
		return
	}

	lastPeak, prevPeak := peaks[len(peaks)-1], peaks[len(peaks)-2]
	lastTrough, prevTrough := troughs[len(troughs)-1], troughs[len(troughs)-2]

	highsFlat := math.Abs(lastPeak.price-prevPeak.price)/prevPeak.price < 0.01
	lowsRising := lastTrough.price > prevTrough.price*1.005
	if highsFlat && lowsRising {
		set.Add(types.PatternAscendingTriangle, 68, types.Bullish)
		return
	}

	lowsFlat := math.Abs(lastTrough.price-prevTrough.price)/prevTrough.price < 0.01
	highsFalling := lastPeak.price < prevPeak.price*0.995
	if lowsFlat && highsFalling {
		set.Add(types.PatternDescendingTriangle, 68, types.Bearish)
	}
}

// detectTrend tags sustained directional moves from the regression slope
// of the last 10 samples combined with a volatility gate
func detectTrend(set *types.PatternSet, window []float64) {
	if len(window) < 10 {
		return
	}
	recent := window[len(window)-10:]

	slope, _, _ := series.LinearFit(recent)
	mean := series.Mean(recent)
	if mean == 0 {
		return
	}
	normSlope := slope / mean
	vol := series.Volatility(window)

	switch {
	case normSlope > 0.01 && vol < 0.05:
		set.Add(types.PatternStrongUptrend, 72, types.Bullish)
	case normSlope < -0.01 && vol < 0.05:
		set.Add(types.PatternStrongDowntrend, 72, types.Bearish)
	}
}

// detectBreakout fires when the last close clears the prior 10-sample
// high or low by more than 2%
func detectBreakout(set *types.PatternSet, highs, lows, closes []float64) {
	if len(closes) < 11 {
		return
	}

	last := closes[len(closes)-1]
	priorHigh := highs[len(highs)-11]
	priorLow := lows[len(lows)-11]
	for i := len(closes) - 10; i < len(closes)-1; i++ {
		if highs[i] > priorHigh {
			priorHigh = highs[i]
		}
		if lows[i] < priorLow {
			priorLow = lows[i]
		}
	}

	if last > priorHigh*1.02 {
		set.Add(types.PatternBullishBreakout, 75, types.Bullish)
	} else if last < priorLow*0.98 {
		set.Add(types.PatternBearishBreakout, 75, types.Bearish)
	}
}

// detectDivergence compares the last two price extremes against the RSI
// read at those points: a lower price low with a higher RSI low is
// bullish, a higher price high with a lower RSI high is bearish
func detectDivergence(set *types.PatternSet, closes []float64, peaks, troughs []pivot, offset int) {
	rsiAt := func(idx int) float64 {
		return RSI(closes[:offset+idx+1], 14)
	}

	if len(troughs) >= 2 {
		last, prev := troughs[len(troughs)-1], troughs[len(troughs)-2]
		if last.price < prev.price && rsiAt(last.index) > rsiAt(prev.index)+2 {
			set.Add(types.PatternBullishDivergence, 70, types.Bullish)
		}
	}

	if len(peaks) >= 2 {
		last, prev := peaks[len(peaks)-1], peaks[len(peaks)-2]
		if last.price > prev.price && rsiAt(last.index) < rsiAt(prev.index)-2 {
			set.Add(types.PatternBearishDivergence, 70, types.Bearish)
		}
	}
}
