package regime

import (
	"math"

	"market-advisor/internal/indicators"
	"market-advisor/internal/series"
	"market-advisor/pkg/types"
)

// Volatility regime thresholds: ATR as a fraction of price, and the
// coefficient-of-variation of closes
const (
	atrLowThreshold     = 0.015
	atrMediumThreshold  = 0.03
	atrHighThreshold    = 0.06
	histLowThreshold    = 0.02
	histMediumThreshold = 0.05
	histHighThreshold   = 0.1
)

// Detect classifies the current volatility, trend and momentum regime
// from the raw series. A pure function; series shorter than 20 samples
// read a neutral MEDIUM/SIDEWAYS/STABLE classification at confidence 50.
func Detect(highs, lows, closes []float64) types.RegimeClassification {
	if len(closes) < 20 {
		return types.RegimeClassification{
			Volatility: types.VolMedium,
			Trend:      types.Sideways,
			Momentum:   types.Stable,
			Confidence: 50,
		}
	}

	price := closes[len(closes)-1]
	atr := indicators.ATR(highs, lows, closes, 14)
	atrPct := 0.0
	if price != 0 {
		atrPct = atr / price
	}
	histVol := series.Volatility(closes)

	volatility := classifyVolatility(atrPct, histVol)
	trend, emaAligned := classifyTrend(closes, price)
	momentum := classifyMomentum(closes)

	confidence := 50.0
	switch trend {
	case types.StrongBull, types.StrongBear:
		confidence += 20
	case types.Bull, types.Bear:
		confidence += 10
	}
	if emaAligned && trend != types.Sideways {
		confidence += 15
	}
	switch volatility {
	case types.VolLow:
		confidence += 10
	case types.VolHigh:
		confidence -= 10
	case types.VolExtreme:
		confidence -= 15
	}
	if momentum == types.Accelerating && trend != types.Sideways {
		confidence += 10
	}

	return types.RegimeClassification{
		Volatility: volatility,
		Trend:      trend,
		Momentum:   momentum,
		Confidence: series.Clamp(confidence, 30, 95),
	}
}

// classifyVolatility grades both readings on their own ladders and
// keeps the more severe of the two
func classifyVolatility(atrPct, histVol float64) types.VolatilityRegime {
	grade := func(v, low, medium, high float64) int {
		switch {
		case v < low:
			return 0
		case v < medium:
			return 1
		case v < high:
			return 2
		default:
			return 3
		}
	}

	severity := grade(atrPct, atrLowThreshold, atrMediumThreshold, atrHighThreshold)
	if hist := grade(histVol, histLowThreshold, histMediumThreshold, histHighThreshold); hist > severity {
		severity = hist
	}

	return [...]types.VolatilityRegime{
		types.VolLow, types.VolMedium, types.VolHigh, types.VolExtreme,
	}[severity]
}

// classifyTrend uses the price deviation from the 20/50 SMAs with a
// ±5%/±2% ladder, gated by 12/26 EMA alignment for the STRONG grades
func classifyTrend(closes []float64, price float64) (types.TrendRegime, bool) {
	sma20 := indicators.SMA(closes, 20)
	sma50 := indicators.SMA(closes, 50)

	dev20 := 0.0
	if sma20 != 0 {
		dev20 = price/sma20 - 1
	}

	emaBull, emaBear := emaAlignment(closes)
	aboveLong := price > sma50
	belowLong := price < sma50

	var trend types.TrendRegime
	switch {
	case dev20 > 0.05 && emaBull && aboveLong:
		trend = types.StrongBull
	case dev20 < -0.05 && emaBear && belowLong:
		trend = types.StrongBear
	case dev20 > 0.02 || (dev20 > 0 && emaBull):
		trend = types.Bull
	case dev20 < -0.02 || (dev20 < 0 && emaBear):
		trend = types.Bear
	default:
		trend = types.Sideways
	}

	aligned := (emaBull && (trend == types.Bull || trend == types.StrongBull)) ||
		(emaBear && (trend == types.Bear || trend == types.StrongBear))
	return trend, aligned
}

func emaAlignment(closes []float64) (bull, bear bool) {
	ema12 := indicators.EMA(closes, 12)
	ema26 := indicators.EMA(closes, 26)
	if ema12 == nil || ema26 == nil {
		return false, false
	}
	fast := ema12[len(ema12)-1]
	slow := ema26[len(ema26)-1]
	return fast > slow, fast < slow
}

// classifyMomentum compares the most recent 5-sample return to the one
// before it
func classifyMomentum(closes []float64) types.MomentumState {
	if len(closes) < 11 {
		return types.Stable
	}

	last := closes[len(closes)-1]
	mid := closes[len(closes)-6]
	old := closes[len(closes)-11]
	if mid == 0 || old == 0 {
		return types.Stable
	}

	recent := (last - mid) / mid
	prior := (mid - old) / old

	switch {
	case math.Abs(recent) > math.Abs(prior)*1.2 && math.Abs(recent) > 0.001:
		return types.Accelerating
	case math.Abs(recent) < math.Abs(prior)*0.8:
		return types.Decelerating
	default:
		return types.Stable
	}
}
