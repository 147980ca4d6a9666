package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"market-advisor/pkg/types"
)

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func flat(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func withRange(closes []float64) (highs, lows []float64) {
	s := types.FromCloses(closes, 0.002)
	return s.Highs(), s.Lows()
}

func TestDetectShortSeries(t *testing.T) {
	closes := ramp(10, 100, 1)
	highs, lows := withRange(closes)

	reg := Detect(highs, lows, closes)
	assert.Equal(t, types.VolMedium, reg.Volatility)
	assert.Equal(t, types.Sideways, reg.Trend)
	assert.Equal(t, types.Stable, reg.Momentum)
	assert.Equal(t, 50.0, reg.Confidence)
}

func TestDetectBullFamilyOnMonotoneRise(t *testing.T) {
	closes := ramp(60, 100, 1)
	highs, lows := withRange(closes)

	reg := Detect(highs, lows, closes)
	assert.Contains(t, []types.TrendRegime{types.Bull, types.StrongBull}, reg.Trend)
	assert.GreaterOrEqual(t, reg.Confidence, 30.0)
	assert.LessOrEqual(t, reg.Confidence, 95.0)
}

func TestDetectBearFamilyOnMonotoneFall(t *testing.T) {
	closes := ramp(60, 200, -1)
	highs, lows := withRange(closes)

	reg := Detect(highs, lows, closes)
	assert.Contains(t, []types.TrendRegime{types.Bear, types.StrongBear}, reg.Trend)
}

func TestDetectFlatIsSidewaysAndCalm(t *testing.T) {
	closes := flat(60, 100)
	highs, lows := withRange(closes)

	reg := Detect(highs, lows, closes)
	assert.Equal(t, types.Sideways, reg.Trend)
	assert.Equal(t, types.VolLow, reg.Volatility)
	assert.Equal(t, types.Stable, reg.Momentum)
}

func TestDetectExtremeVolatility(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		// Alternating 30% swings
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 130
		}
	}
	highs, lows := withRange(closes)

	reg := Detect(highs, lows, closes)
	assert.Equal(t, types.VolExtreme, reg.Volatility)
}

func TestConfidenceBounds(t *testing.T) {
	for _, closes := range [][]float64{
		ramp(60, 100, 1),
		ramp(60, 200, -1),
		flat(60, 100),
		ramp(25, 50, 0.1),
	} {
		highs, lows := withRange(closes)
		reg := Detect(highs, lows, closes)
		assert.GreaterOrEqual(t, reg.Confidence, 30.0)
		assert.LessOrEqual(t, reg.Confidence, 95.0)
	}
}

func TestAnalyzeTimeframes(t *testing.T) {
	t.Run("short series reads neutral", func(t *testing.T) {
		mtf := AnalyzeTimeframes(ramp(3, 100, 1))
		assert.Equal(t, types.Neutral, mtf.Consensus)
		assert.Equal(t, 50.0, mtf.Confidence)
	})

	t.Run("monotone rise reads bullish consensus", func(t *testing.T) {
		mtf := AnalyzeTimeframes(ramp(120, 100, 1))
		assert.Equal(t, types.Bullish, mtf.Consensus)
		assert.NotEmpty(t, mtf.Views)
	})

	t.Run("confidence bounds", func(t *testing.T) {
		for _, closes := range [][]float64{
			ramp(120, 100, 1),
			ramp(120, 300, -1),
			flat(120, 100),
		} {
			mtf := AnalyzeTimeframes(closes)
			assert.GreaterOrEqual(t, mtf.Confidence, 30.0)
			assert.LessOrEqual(t, mtf.Confidence, 95.0)
		}
	})
}
