package classifier

import (
	"fmt"

	"market-advisor/internal/series"
	"market-advisor/pkg/types"
)

// Outcome is what each scorer produces: a 0-100 score (50 neutral), the
// discrete call derived from it, a confidence and a price target, plus
// the named signals that fired.
type Outcome struct {
	Score       float64
	Decision    types.Recommendation
	Confidence  float64
	PriceTarget float64
	Signals     []string
}

// Category weights of the ensemble classifier
const (
	weightTechnical  = 0.35
	weightMomentum   = 0.25
	weightVolatility = 0.20
	weightPattern    = 0.20
)

// scoreToPrice maps a 0-100 score to a price target. A score of 100 or 0
// moves price by ±2%, matching the saturation of the category nudges.
func scoreToPrice(price, score float64) float64 {
	return price * (1 + (score-50)*0.0004)
}

// Classify runs the weighted category classifier: each category scores
// 0-100 around a 50 baseline, the weighted sum is the bullish
// probability. Probability >65 reads BUY, <35 SELL, else HOLD.
func Classify(f types.FeatureRecord) Outcome {
	var signals []string

	technical := scoreTechnical(f.Technical, &signals)
	momentum := scoreMomentum(f.Momentum, &signals)
	volatility := scoreVolatility(f.Volatility, f.Momentum.Trend)
	pattern := scorePattern(f.Pattern.Set, &signals)

	probability := (technical*weightTechnical +
		momentum*weightMomentum +
		volatility*weightVolatility +
		pattern*weightPattern) /
		(weightTechnical + weightMomentum + weightVolatility + weightPattern)
	probability = series.Clamp(probability, 0, 100)

	decision := types.Hold
	switch {
	case probability > 65:
		decision = types.Buy
	case probability < 35:
		decision = types.Sell
	}

	return Outcome{
		Score:       probability,
		Decision:    decision,
		Confidence:  series.Clamp(abs(probability-50)*2, 55, 95),
		PriceTarget: scoreToPrice(f.CurrentPrice, probability),
		Signals:     signals,
	}
}

func scoreTechnical(t types.TechnicalFeatures, signals *[]string) float64 {
	score := 50.0

	switch {
	case t.RSI < 30:
		score += 15
		*signals = append(*signals, fmt.Sprintf("RSI oversold (%.1f)", t.RSI))
	case t.RSI > 70:
		score -= 15
		*signals = append(*signals, fmt.Sprintf("RSI overbought (%.1f)", t.RSI))
	}

	switch {
	case t.MACDHist > 0:
		score += 10
	case t.MACDHist < 0:
		score -= 10
	}

	switch {
	case t.PercentB < 0.2:
		score += 12
		*signals = append(*signals, "price near lower Bollinger band")
	case t.PercentB > 0.8:
		score -= 12
		*signals = append(*signals, "price near upper Bollinger band")
	}

	switch {
	case t.StochasticK < 20:
		score += 8
	case t.StochasticK > 80:
		score -= 8
	}

	return series.Clamp(score, 0, 100)
}

func scoreMomentum(m types.MomentumFeatures, signals *[]string) float64 {
	score := 50.0

	switch m.Trend {
	case types.StrongBull:
		score += 25
		*signals = append(*signals, "strong uptrend regime")
	case types.Bull:
		score += 12
	case types.Bear:
		score -= 12
	case types.StrongBear:
		score -= 25
		*signals = append(*signals, "strong downtrend regime")
	}

	switch {
	case m.Return5 > 0.02:
		score += 10
	case m.Return5 < -0.02:
		score -= 10
	}

	switch m.MTF.Consensus {
	case types.Bullish:
		score += 8
	case types.Bearish:
		score -= 8
	}

	if m.Momentum == types.Accelerating {
		switch {
		case m.Return5 > 0:
			score += 5
		case m.Return5 < 0:
			score -= 5
		}
	}

	return series.Clamp(score, 0, 100)
}

// scoreVolatility rewards calm markets in the trend direction and
// discounts choppy ones back toward neutral
func scoreVolatility(v types.VolatilityFeatures, trend types.TrendRegime) float64 {
	score := 50.0

	lean := 0.0
	switch trend {
	case types.StrongBull, types.Bull:
		lean = 1
	case types.StrongBear, types.Bear:
		lean = -1
	}

	switch v.Regime {
	case types.VolLow:
		score += lean * 10
	case types.VolMedium:
		score += lean * 5
	case types.VolHigh:
		score -= lean * 5
	case types.VolExtreme:
		score -= lean * 10
	}

	return series.Clamp(score, 0, 100)
}

func scorePattern(set types.PatternSet, signals *[]string) float64 {
	score := 50.0

	for i, tag := range set.Patterns {
		delta := 15 * set.Confidence[i] / 100
		switch set.Signals[i] {
		case types.Bullish:
			score += delta
		case types.Bearish:
			score -= delta
		default:
			continue
		}
		*signals = append(*signals, fmt.Sprintf("pattern %s", tag))
	}

	return series.Clamp(score, 0, 100)
}

// SignalStrength is the second, independent scorer: fixed deltas per
// confirming signal from a base of 50, clamped [0,100]. Confidence
// rewards convergence of confirmations and is clamped [30,95].
func SignalStrength(f types.FeatureRecord) Outcome {
	score := 50.0
	var signals []string
	confirmations := 0

	switch {
	case f.Technical.RSI < 30:
		score += 12
		confirmations++
		signals = append(signals, fmt.Sprintf("RSI oversold (%.1f)", f.Technical.RSI))
	case f.Technical.RSI > 70:
		score -= 12
		confirmations++
		signals = append(signals, fmt.Sprintf("RSI overbought (%.1f)", f.Technical.RSI))
	}

	switch {
	case f.Technical.MACDHist > 0:
		score += 15
		confirmations++
		signals = append(signals, "MACD bullish crossover")
	case f.Technical.MACDHist < 0:
		score -= 15
		confirmations++
		signals = append(signals, "MACD bearish crossover")
	}

	switch {
	case f.Technical.PercentB < 0.2:
		score += 10
		confirmations++
		signals = append(signals, "Bollinger lower-band touch")
	case f.Technical.PercentB > 0.8:
		score -= 10
		confirmations++
		signals = append(signals, "Bollinger upper-band touch")
	}

	if f.Technical.StochasticK < 20 {
		score += 8
		confirmations++
		signals = append(signals, "stochastic oversold")
	}

	for i, tag := range f.Pattern.Set.Patterns {
		delta := 10 * f.Pattern.Set.Confidence[i] / 100
		switch f.Pattern.Set.Signals[i] {
		case types.Bullish:
			score += delta
		case types.Bearish:
			score -= delta
		default:
			continue
		}
		confirmations++
		signals = append(signals, fmt.Sprintf("pattern %s", tag))
	}

	switch f.Momentum.MTF.Consensus {
	case types.Bullish:
		score += 12
		confirmations++
		signals = append(signals, "multi-timeframe bullish consensus")
	case types.Bearish:
		score -= 12
		confirmations++
		signals = append(signals, "multi-timeframe bearish consensus")
	}

	score = series.Clamp(score, 0, 100)

	confidence := 50.0
	switch {
	case confirmations >= 3:
		confidence += 20
	case confirmations >= 2:
		confidence += 10
	case confirmations == 1:
		confidence -= 10
	}
	switch f.Volatility.Regime {
	case types.VolExtreme:
		confidence -= 15
	case types.VolLow:
		confidence += 5
	}

	decision := types.Hold
	switch {
	case score > 65:
		decision = types.Buy
	case score < 35:
		decision = types.Sell
	}

	return Outcome{
		Score:       score,
		Decision:    decision,
		Confidence:  series.Clamp(confidence, 30, 95),
		PriceTarget: scoreToPrice(f.CurrentPrice, score),
		Signals:     signals,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
