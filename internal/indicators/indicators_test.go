package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-advisor/pkg/types"
)

func ascending(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func repeated(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestRSI(t *testing.T) {
	t.Run("always within bounds", func(t *testing.T) {
		for _, closes := range [][]float64{
			ascending(40, 100, 1),
			ascending(40, 100, -1),
			{100, 102, 99, 103, 98, 104, 97, 105, 96, 106, 95, 107, 94, 108, 93, 109},
		} {
			rsi := RSI(closes, 14)
			assert.GreaterOrEqual(t, rsi, 0.0)
			assert.LessOrEqual(t, rsi, 100.0)
		}
	})

	t.Run("flat series reads 50", func(t *testing.T) {
		assert.Equal(t, 50.0, RSI(repeated(30, 50.0), 14))
	})

	t.Run("short series reads neutral", func(t *testing.T) {
		assert.Equal(t, 50.0, RSI([]float64{1, 2, 3}, 14))
	})

	t.Run("pure gains read 100", func(t *testing.T) {
		assert.Equal(t, 100.0, RSI(ascending(30, 100, 1), 14))
	})

	t.Run("pure losses read 0", func(t *testing.T) {
		assert.Equal(t, 0.0, RSI(ascending(30, 100, -1), 14))
	})
}

func TestEMA(t *testing.T) {
	t.Run("constant series stays at the mean", func(t *testing.T) {
		ema := EMA(repeated(30, 42.0), 10)
		require.NotNil(t, ema)
		assert.InDelta(t, 42.0, ema[len(ema)-1], 1e-9)
	})

	t.Run("short series is nil", func(t *testing.T) {
		assert.Nil(t, EMA([]float64{1, 2}, 10))
	})

	t.Run("seed is the simple average", func(t *testing.T) {
		ema := EMA([]float64{1, 2, 3, 4}, 3)
		require.NotNil(t, ema)
		assert.InDelta(t, 2.0, ema[2], 1e-9)
	})
}

func TestMACDOsc(t *testing.T) {
	t.Run("short series reads zeros", func(t *testing.T) {
		assert.Equal(t, types.MACD{}, MACDOsc(ascending(10, 100, 1), 12, 26, 9))
	})

	t.Run("uptrend reads positive line", func(t *testing.T) {
		macd := MACDOsc(ascending(60, 100, 1), 12, 26, 9)
		assert.Greater(t, macd.Line, 0.0)
		assert.InDelta(t, macd.Line-macd.Signal, macd.Histogram, 1e-9)
	})
}

func TestBollingerBands(t *testing.T) {
	t.Run("band ordering", func(t *testing.T) {
		closes := []float64{100, 102, 99, 103, 98, 104, 97, 105, 96, 106,
			95, 107, 94, 108, 93, 109, 92, 110, 91, 111}
		bb := BollingerBands(closes, 20, 2)
		assert.GreaterOrEqual(t, bb.Upper, bb.Middle)
		assert.GreaterOrEqual(t, bb.Middle, bb.Lower)
		assert.Greater(t, bb.Bandwidth, 0.0)
	})

	t.Run("collapsed bands read neutral percent B", func(t *testing.T) {
		bb := BollingerBands(repeated(25, 10.0), 20, 2)
		assert.Equal(t, 0.5, bb.PercentB)
		assert.Equal(t, bb.Upper, bb.Lower)
	})

	t.Run("short series reads zeros", func(t *testing.T) {
		assert.Equal(t, types.Bollinger{}, BollingerBands([]float64{1, 2, 3}, 20, 2))
	})
}

func TestStochasticOsc(t *testing.T) {
	t.Run("short series reads neutral", func(t *testing.T) {
		s := StochasticOsc(nil, nil, []float64{1, 2}, 14, 3)
		assert.Equal(t, types.Stochastic{K: 50, D: 50}, s)
	})

	t.Run("close at the high reads 100", func(t *testing.T) {
		closes := ascending(20, 100, 1)
		s := StochasticOsc(closes, closes, closes, 14, 3)
		assert.InDelta(t, 100.0, s.K, 1e-9)
	})

	t.Run("collapsed range reads 50", func(t *testing.T) {
		flat := repeated(20, 10.0)
		s := StochasticOsc(flat, flat, flat, 14, 3)
		assert.Equal(t, 50.0, s.K)
	})
}

func TestWilliamsR(t *testing.T) {
	t.Run("bounds", func(t *testing.T) {
		closes := ascending(20, 100, 1)
		wr := WilliamsR(closes, closes, closes, 14)
		assert.GreaterOrEqual(t, wr, -100.0)
		assert.LessOrEqual(t, wr, 0.0)
	})

	t.Run("flat window reads -50", func(t *testing.T) {
		flat := repeated(20, 10.0)
		assert.Equal(t, -50.0, WilliamsR(flat, flat, flat, 14))
	})
}

func TestVWAP(t *testing.T) {
	t.Run("empty series reads 0", func(t *testing.T) {
		assert.Equal(t, 0.0, VWAP(nil, nil, nil, nil))
	})

	t.Run("flat series without volume reads the price", func(t *testing.T) {
		flat := repeated(10, 100.0)
		assert.InDelta(t, 100.0, VWAP(flat, flat, flat, nil), 1e-9)
	})

	t.Run("weights by volume when present", func(t *testing.T) {
		closes := []float64{10, 20}
		volumes := []float64{0, 100}
		vwap := VWAP(closes, closes, closes, volumes)
		assert.InDelta(t, 20.0, vwap, 1e-9)
	})
}

func TestATR(t *testing.T) {
	t.Run("short series reads 0", func(t *testing.T) {
		assert.Equal(t, 0.0, ATR([]float64{1, 2}, []float64{1, 2}, []float64{1, 2}, 14))
	})

	t.Run("constant range", func(t *testing.T) {
		n := 30
		highs := make([]float64, n)
		lows := make([]float64, n)
		closes := make([]float64, n)
		for i := 0; i < n; i++ {
			closes[i] = 100
			highs[i] = 101
			lows[i] = 99
		}
		assert.InDelta(t, 2.0, ATR(highs, lows, closes, 14), 1e-9)
	})
}

func TestSupportResistance(t *testing.T) {
	t.Run("short series reads empty levels", func(t *testing.T) {
		assert.Equal(t, types.Levels{}, SupportResistance(nil, nil, []float64{1, 2, 3}))
	})

	t.Run("levels bracket the price", func(t *testing.T) {
		closes := make([]float64, 50)
		for i := range closes {
			closes[i] = 100 + 5*math.Sin(float64(i)/3)
		}
		highs := make([]float64, 50)
		lows := make([]float64, 50)
		for i := range closes {
			highs[i] = closes[i] + 1
			lows[i] = closes[i] - 1
		}

		levels := SupportResistance(highs, lows, closes)
		price := closes[len(closes)-1]

		assert.Greater(t, levels.Pivot, 0.0)
		assert.LessOrEqual(t, len(levels.Supports), 3)
		assert.LessOrEqual(t, len(levels.Resistances), 3)
		for _, s := range levels.Supports {
			assert.Less(t, s, price)
		}
		for _, r := range levels.Resistances {
			assert.Greater(t, r, price)
		}
	})
}

func TestCompute(t *testing.T) {
	cfg := types.EngineConfig{
		RSIPeriod: 14, MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		BollingerPeriod: 20, BollingerStdDev: 2, StochasticK: 14, StochasticD: 3,
		ATRPeriod: 14,
	}

	s := types.FromCloses(ascending(60, 100, 0.5), 0.002)
	set := Compute(s, cfg)

	assert.GreaterOrEqual(t, set.RSI, 0.0)
	assert.LessOrEqual(t, set.RSI, 100.0)
	assert.Greater(t, set.VWAP, 0.0)
	assert.Greater(t, set.ATR, 0.0)
	assert.GreaterOrEqual(t, set.Bollinger.Upper, set.Bollinger.Lower)
}
