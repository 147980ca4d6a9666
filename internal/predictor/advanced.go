package predictor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"market-advisor/internal/classifier"
	"market-advisor/internal/features"
	"market-advisor/internal/regression"
	"market-advisor/internal/series"
	"market-advisor/pkg/types"
)

// minHistory is the series length below which the advanced path returns
// its insufficient-data fallback
const minHistory = 20

// blendWeights are the ensemble weights over the three price estimates
type blendWeights struct {
	regression float64
	classifier float64
	signal     float64
}

var (
	defaultWeights     = blendWeights{0.40, 0.35, 0.25}
	extremeVolWeights  = blendWeights{0.50, 0.30, 0.20}
	strongTrendWeights = blendWeights{0.30, 0.40, 0.30}
)

// AdvancedPrediction runs the full ensemble: features are built once,
// the classifier, the signal aggregator and the regression model each
// produce a price estimate, and the three are blended with
// regime-conditioned weights.
func AdvancedPrediction(highs, lows, closes, volumes []float64, cfg types.EngineConfig) types.PredictionResult {
	if len(closes) < minHistory {
		return insufficientData(closes)
	}

	f := features.Build(highs, lows, closes, volumes, cfg)
	price := f.CurrentPrice
	if price == 0 {
		return insufficientData(closes)
	}

	cls := classifier.Classify(f)
	sig := classifier.SignalStrength(f)
	reg := regression.Predict(highs, lows, closes, cfg, f.Volatility.Regime)

	weights := defaultWeights
	switch {
	case f.Regime.Volatility == types.VolExtreme:
		weights = extremeVolWeights
	case f.Regime.Trend == types.StrongBull || f.Regime.Trend == types.StrongBear:
		weights = strongTrendWeights
	}

	predicted := weights.regression*reg.Price +
		weights.classifier*cls.PriceTarget +
		weights.signal*sig.PriceTarget

	confidence := blendConfidence(
		[3]float64{reg.Confidence, cls.Confidence, sig.Confidence},
		f.Regime.Confidence,
		f.Momentum.MTF,
	)

	expectedPct := (predicted - price) / price * 100

	signals := mergeSignals(cls.Signals, sig.Signals)

	return types.PredictionResult{
		Prediction:     predicted,
		Confidence:     confidence,
		Reasoning:      buildReasoning(expectedPct, len(signals), f),
		Signals:        signals,
		Recommendation: recommend(expectedPct, confidence),
		Timestamp:      time.Now().UTC(),
	}
}

// blendConfidence averages the three member confidences, penalizes
// disagreement, scales by the regime confidence and nudges by the
// multi-timeframe consensus. Bounded to [55,98].
func blendConfidence(members [3]float64, regimeConf float64, mtf types.MultiTimeframe) float64 {
	mean := (members[0] + members[1] + members[2]) / 3

	variance := 0.0
	for _, m := range members {
		variance += (m - mean) * (m - mean)
	}
	variance /= 3

	confidence := mean
	if variance > 100 {
		confidence *= 0.8
	}
	confidence *= regimeConf / 100

	if mtf.Consensus != types.Neutral {
		confidence += (mtf.Confidence - 50) * 0.2
	}

	return series.Clamp(confidence, 55, 98)
}

// recommend applies the expected-return thresholds with confidence gates
func recommend(expectedPct, confidence float64) types.Recommendation {
	switch {
	case expectedPct > 8 && confidence > 80:
		return types.StrongBuy
	case expectedPct > 3 && confidence > 70:
		return types.Buy
	case expectedPct < -8 && confidence > 80:
		return types.StrongSell
	case expectedPct < -3 && confidence > 70:
		return types.Sell
	default:
		return types.Hold
	}
}

func buildReasoning(expectedPct float64, signalCount int, f types.FeatureRecord) string {
	var clauses []string

	switch {
	case expectedPct > 0.5:
		clauses = append(clauses, fmt.Sprintf("Expected %.1f%% upside over the forecast window", expectedPct))
	case expectedPct < -0.5:
		clauses = append(clauses, fmt.Sprintf("Expected %.1f%% downside over the forecast window", math.Abs(expectedPct)))
	default:
		clauses = append(clauses, "Expected sideways movement over the forecast window")
	}

	if signalCount > 0 {
		clauses = append(clauses, fmt.Sprintf("%d confirming signals", signalCount))
	}

	clauses = append(clauses, fmt.Sprintf("Market regime: %s trend, %s volatility, %s momentum",
		f.Regime.Trend, f.Regime.Volatility, f.Regime.Momentum))

	if f.Momentum.MTF.Consensus != types.Neutral {
		clauses = append(clauses, fmt.Sprintf("Multi-timeframe consensus: %s", f.Momentum.MTF.Consensus))
	}

	if len(f.Pattern.Set.Patterns) > 0 {
		names := make([]string, len(f.Pattern.Set.Patterns))
		for i, tag := range f.Pattern.Set.Patterns {
			names[i] = string(tag)
		}
		clauses = append(clauses, fmt.Sprintf("Patterns: %s", strings.Join(names, ", ")))
	}

	return strings.Join(clauses, ". ") + "."
}

// mergeSignals joins the two scorers' signal lists, dropping duplicates
// while preserving first-seen order
func mergeSignals(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func insufficientData(closes []float64) types.PredictionResult {
	last := 0.0
	if len(closes) > 0 {
		last = closes[len(closes)-1]
	}
	return types.PredictionResult{
		Prediction:     last,
		Confidence:     50,
		Reasoning:      "Insufficient data for a reliable prediction",
		Recommendation: types.Hold,
		Timestamp:      time.Now().UTC(),
	}
}
