package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"market-advisor/pkg/types"
)

func neutralRecord() types.FeatureRecord {
	return types.FeatureRecord{
		CurrentPrice: 100,
		Technical: types.TechnicalFeatures{
			RSI:         50,
			PercentB:    0.5,
			StochasticK: 50,
			WilliamsR:   -50,
			PriceToVWAP: 1,
		},
		Momentum: types.MomentumFeatures{
			Trend:        types.Sideways,
			Momentum:     types.Stable,
			PriceToSMA20: 1,
			PriceToSMA50: 1,
			MTF:          types.MultiTimeframe{Consensus: types.Neutral, Confidence: 50},
		},
		Volatility: types.VolatilityFeatures{Regime: types.VolMedium},
		Regime: types.RegimeClassification{
			Volatility: types.VolMedium,
			Trend:      types.Sideways,
			Momentum:   types.Stable,
			Confidence: 50,
		},
	}
}

func bullishRecord() types.FeatureRecord {
	f := neutralRecord()
	f.Technical.RSI = 25
	f.Technical.MACDHist = 0.8
	f.Technical.PercentB = 0.1
	f.Technical.StochasticK = 15
	f.Momentum.Trend = types.StrongBull
	f.Momentum.Return5 = 0.03
	f.Momentum.MTF = types.MultiTimeframe{Consensus: types.Bullish, Confidence: 80}
	f.Regime.Trend = types.StrongBull
	f.Pattern.Set.Add(types.PatternDoubleBottom, 80, types.Bullish)
	return f
}

func bearishRecord() types.FeatureRecord {
	f := neutralRecord()
	f.Technical.RSI = 78
	f.Technical.MACDHist = -0.8
	f.Technical.PercentB = 0.95
	f.Technical.StochasticK = 88
	f.Momentum.Trend = types.StrongBear
	f.Momentum.Return5 = -0.03
	f.Momentum.MTF = types.MultiTimeframe{Consensus: types.Bearish, Confidence: 80}
	f.Regime.Trend = types.StrongBear
	f.Pattern.Set.Add(types.PatternDoubleTop, 80, types.Bearish)
	return f
}

func TestClassifyNeutral(t *testing.T) {
	out := Classify(neutralRecord())
	assert.Equal(t, types.Hold, out.Decision)
	assert.InDelta(t, 50.0, out.Score, 5)
	assert.Equal(t, 55.0, out.Confidence)
}

func TestClassifyBullish(t *testing.T) {
	out := Classify(bullishRecord())
	assert.Equal(t, types.Buy, out.Decision)
	assert.Greater(t, out.Score, 65.0)
	assert.Greater(t, out.PriceTarget, 100.0)
	assert.NotEmpty(t, out.Signals)
}

func TestClassifyBearish(t *testing.T) {
	out := Classify(bearishRecord())
	assert.Equal(t, types.Sell, out.Decision)
	assert.Less(t, out.Score, 35.0)
	assert.Less(t, out.PriceTarget, 100.0)
}

func TestClassifyConfidenceBounds(t *testing.T) {
	for _, f := range []types.FeatureRecord{neutralRecord(), bullishRecord(), bearishRecord()} {
		out := Classify(f)
		assert.GreaterOrEqual(t, out.Confidence, 55.0)
		assert.LessOrEqual(t, out.Confidence, 95.0)
	}
}

func TestSignalStrengthNeutral(t *testing.T) {
	out := SignalStrength(neutralRecord())
	assert.Equal(t, types.Hold, out.Decision)
	assert.Empty(t, out.Signals)
	// Zero confirmations: base 50 confidence, no convergence reward
	assert.Equal(t, 50.0, out.Confidence)
}

func TestSignalStrengthBullishConvergence(t *testing.T) {
	out := SignalStrength(bullishRecord())
	assert.Equal(t, types.Buy, out.Decision)
	assert.Greater(t, out.Score, 65.0)
	// 6 confirmations fired: +20 convergence reward
	assert.Equal(t, 70.0, out.Confidence)
	assert.Len(t, out.Signals, 6)
}

func TestSignalStrengthSingleSignalPenalty(t *testing.T) {
	f := neutralRecord()
	f.Technical.MACDHist = 0.5

	out := SignalStrength(f)
	// Exactly one confirmation reads below base confidence
	assert.Equal(t, 40.0, out.Confidence)
}

func TestSignalStrengthVolatilityAdjustments(t *testing.T) {
	f := bullishRecord()

	f.Volatility.Regime = types.VolExtreme
	extreme := SignalStrength(f)

	f.Volatility.Regime = types.VolLow
	low := SignalStrength(f)

	assert.Greater(t, low.Confidence, extreme.Confidence)
}

func TestSignalStrengthScoreBounds(t *testing.T) {
	f := bullishRecord()
	// Stack more bullish patterns to push the raw score past 100
	f.Pattern.Set.Add(types.PatternInverseHS, 90, types.Bullish)
	f.Pattern.Set.Add(types.PatternBullishBreakout, 90, types.Bullish)
	f.Pattern.Set.Add(types.PatternBullishDivergence, 90, types.Bullish)

	out := SignalStrength(f)
	assert.LessOrEqual(t, out.Score, 100.0)
	assert.GreaterOrEqual(t, out.Score, 0.0)
}
