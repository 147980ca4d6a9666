package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-advisor/pkg/types"
)

func synthRange(closes []float64) (highs, lows []float64) {
	s := types.FromCloses(closes, 0.002)
	return s.Highs(), s.Lows()
}

func TestDetectPatternsShortSeries(t *testing.T) {
	closes := ascending(10, 100, 1)
	highs, lows := synthRange(closes)

	set := DetectPatterns(highs, lows, closes)
	assert.Empty(t, set.Patterns)
}

func TestDetectPatternsAlignment(t *testing.T) {
	closes := make([]float64, 0, 40)
	base := 100.0
	for i := 0; i < 40; i++ {
		// Zig-zag with two matched tops
		switch {
		case i%10 < 5:
			closes = append(closes, base+float64(i%10))
		default:
			closes = append(closes, base+float64(9-i%10))
		}
	}
	highs, lows := synthRange(closes)

	set := DetectPatterns(highs, lows, closes)
	assert.Len(t, set.Confidence, len(set.Patterns))
	assert.Len(t, set.Signals, len(set.Patterns))
	for _, conf := range set.Confidence {
		assert.GreaterOrEqual(t, conf, 0.0)
		assert.LessOrEqual(t, conf, 100.0)
	}
}

func TestDetectStrongUptrend(t *testing.T) {
	// Calm base then a steep recent leg: the trend tag needs a strong
	// slope over the last 10 samples with low volatility overall
	closes := repeated(20, 100.0)
	for i := 1; i <= 10; i++ {
		closes = append(closes, 100+1.5*float64(i))
	}
	highs, lows := synthRange(closes)

	set := DetectPatterns(highs, lows, closes)
	require.True(t, set.Has(types.PatternStrongUptrend))

	for i, tag := range set.Patterns {
		if tag == types.PatternStrongUptrend {
			assert.Equal(t, types.Bullish, set.Signals[i])
		}
	}
}

func TestDetectStrongDowntrend(t *testing.T) {
	closes := repeated(20, 100.0)
	for i := 1; i <= 10; i++ {
		closes = append(closes, 100-1.5*float64(i))
	}
	highs, lows := synthRange(closes)

	set := DetectPatterns(highs, lows, closes)
	assert.True(t, set.Has(types.PatternStrongDowntrend))
}

func TestDetectDoubleTop(t *testing.T) {
	// Two peaks of equal height 10 samples apart, with clear valleys
	closes := []float64{
		100, 101, 102, 103, 104, 110, 104, 103, 102, 101,
		100, 101, 102, 103, 104, 110, 104, 103, 102, 101,
		100, 99, 98, 97, 96,
	}
	highs, lows := synthRange(closes)

	set := DetectPatterns(highs, lows, closes)
	require.True(t, set.Has(types.PatternDoubleTop))

	for i, tag := range set.Patterns {
		if tag == types.PatternDoubleTop {
			assert.Equal(t, types.Bearish, set.Signals[i])
			assert.GreaterOrEqual(t, set.Confidence[i], 70.0)
		}
	}
}

func TestDetectBreakout(t *testing.T) {
	// Flat coil then a close 5% above the prior range
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	closes[len(closes)-1] = 105
	highs, lows := synthRange(closes)

	set := DetectPatterns(highs, lows, closes)
	assert.True(t, set.Has(types.PatternBullishBreakout))
}
