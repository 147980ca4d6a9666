package predictor

import (
	"market-advisor/internal/classifier"
	"market-advisor/internal/features"
	"market-advisor/internal/series"
	"market-advisor/pkg/types"
)

// QuickPredict is the lightweight close-only path used for UI badges.
// The primary scorer is tried first; when it reports no usable result
// the caller falls through to the naive 5-vs-5 average heuristic.
func QuickPredict(closes []float64, epsilon float64, cfg types.EngineConfig) types.QuickPrediction {
	if qp, ok := tryQuick(closes, epsilon, cfg); ok {
		return qp
	}
	return naiveQuick(closes)
}

// tryQuick combines the signal aggregator score with trend-regime and
// multi-timeframe adjustments, then layers confirmation bonuses on the
// confidence. Reports false when the series is too short or degenerate
// for the primary path.
func tryQuick(closes []float64, epsilon float64, cfg types.EngineConfig) (types.QuickPrediction, bool) {
	if len(closes) < minHistory || closes[len(closes)-1] <= 0 {
		return types.QuickPrediction{}, false
	}

	synth := types.FromCloses(closes, epsilon)
	f := features.Build(synth.Highs(), synth.Lows(), closes, nil, cfg)
	sig := classifier.SignalStrength(f)

	// Oscillator signals mean-revert; the trend adjustments keep a
	// sustained directional move from reading as its own reversal.
	score := sig.Score
	switch f.Regime.Trend {
	case types.StrongBull:
		score += 25
	case types.Bull:
		score += 15
	case types.Bear:
		score -= 15
	case types.StrongBear:
		score -= 25
	}
	switch f.Momentum.MTF.Consensus {
	case types.Bullish:
		score += 12
	case types.Bearish:
		score -= 12
	}
	score = series.Clamp(score, 0, 100)

	direction := "neutral"
	confidence := 50.0
	switch {
	case score > 65:
		direction = "bullish"
		confidence = 60 + (score-65)*2
	case score < 35:
		direction = "bearish"
		confidence = 60 + (35-score)*2
	default:
		confidence = 50 + abs(score-50)*0.5
	}
	if confidence > 95 {
		confidence = 95
	}

	bullish := direction == "bullish"
	bearish := direction == "bearish"

	bonus := 0.0
	confirmations := 0

	// RSI confirms a call as long as it is not stretched against it
	if (bullish && f.Technical.RSI < 70) || (bearish && f.Technical.RSI > 30) {
		bonus += 5
		confirmations++
	}
	if (bullish && f.Technical.MACDHist > 0) || (bearish && f.Technical.MACDHist < 0) {
		bonus += 8
		confirmations++
	}
	if (bullish && f.Technical.PercentB < 1) || (bearish && f.Technical.PercentB > 0) {
		bonus += 5
		confirmations++
	}
	if patternAgrees(f.Pattern.Set, bullish, bearish) {
		bonus += 10
		confirmations++
	}
	if strongRegimeAgrees(f.Regime.Trend, bullish, bearish) {
		bonus += 12
		confirmations++
	}
	if (bullish && f.Momentum.MTF.Consensus == types.Bullish) ||
		(bearish && f.Momentum.MTF.Consensus == types.Bearish) {
		bonus += 8
		confirmations++
	}

	confidence += bonus
	if confirmations < 2 {
		confidence *= 0.8
	}

	if vol := f.Volatility.Historical; vol > 0.1 {
		damping := vol
		if damping > 0.3 {
			damping = 0.3
		}
		confidence *= 1 - damping
	}

	return types.QuickPrediction{
		Direction:  direction,
		Confidence: series.Clamp(confidence, 35, 98),
	}, true
}

func patternAgrees(set types.PatternSet, bullish, bearish bool) bool {
	for _, signal := range set.Signals {
		if (bullish && signal == types.Bullish) || (bearish && signal == types.Bearish) {
			return true
		}
	}
	return false
}

func strongRegimeAgrees(trend types.TrendRegime, bullish, bearish bool) bool {
	switch trend {
	case types.StrongBull:
		return bullish
	case types.StrongBear:
		return bearish
	}
	return false
}

// naiveQuick compares the mean of the last 5 closes against the mean of
// the 5 before them. The resilience fallback for short or degenerate
// series; it never fails.
func naiveQuick(closes []float64) types.QuickPrediction {
	if len(closes) < 10 {
		return types.QuickPrediction{Direction: "neutral", Confidence: 50}
	}

	n := len(closes)
	recent := series.Mean(closes[n-5:])
	prior := series.Mean(closes[n-10 : n-5])
	if prior == 0 {
		return types.QuickPrediction{Direction: "neutral", Confidence: 50}
	}

	changePct := (recent - prior) / prior * 100

	confidence := abs(changePct) * 10
	confidence += 60
	if confidence > 90 {
		confidence = 90
	}

	direction := "neutral"
	switch {
	case changePct > 2:
		direction = "bullish"
	case changePct < -2:
		direction = "bearish"
	default:
		confidence = 50
	}

	return types.QuickPrediction{Direction: direction, Confidence: confidence}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
