package features

import (
	"market-advisor/internal/indicators"
	"market-advisor/internal/regime"
	"market-advisor/internal/series"
	"market-advisor/pkg/types"
)

// Build assembles the full feature record consumed by the scorers.
// Everything is computed exactly once per prediction call; nothing in
// the record is cached or mutated afterwards.
func Build(highs, lows, closes, volumes []float64, cfg types.EngineConfig) types.FeatureRecord {
	s := make(types.Series, len(closes))
	for i := range closes {
		q := types.Quote{Close: closes[i]}
		if i < len(highs) {
			q.High = highs[i]
		}
		if i < len(lows) {
			q.Low = lows[i]
		}
		if i < len(volumes) {
			q.Volume = volumes[i]
		}
		s[i] = q
	}

	price := 0.0
	if len(closes) > 0 {
		price = closes[len(closes)-1]
	}

	ind := indicators.Compute(s, cfg)
	reg := regime.Detect(highs, lows, closes)
	patterns := indicators.DetectPatterns(highs, lows, closes)
	mtf := regime.AnalyzeTimeframes(closes)

	record := types.FeatureRecord{
		CurrentPrice: price,
		Indicators:   ind,
		Regime:       reg,
		Technical: types.TechnicalFeatures{
			RSI:         ind.RSI,
			MACDLine:    ind.MACD.Line,
			MACDSignal:  ind.MACD.Signal,
			MACDHist:    ind.MACD.Histogram,
			PercentB:    ind.Bollinger.PercentB,
			StochasticK: ind.Stochastic.K,
			StochasticD: ind.Stochastic.D,
			WilliamsR:   ind.WilliamsR,
			PriceToVWAP: ratio(price, ind.VWAP),
		},
		Momentum: types.MomentumFeatures{
			Return5:      trailingReturn(closes, 5),
			Return10:     trailingReturn(closes, 10),
			PriceToSMA20: ratio(price, indicators.SMA(closes, 20)),
			PriceToSMA50: ratio(price, indicators.SMA(closes, 50)),
			EMAAligned:   emaAligned(closes),
			Trend:        reg.Trend,
			Momentum:     reg.Momentum,
			MTF:          mtf,
		},
		Volatility: types.VolatilityFeatures{
			ATRPercent: ratio(ind.ATR, price),
			Historical: series.Volatility(closes),
			Bandwidth:  ind.Bollinger.Bandwidth,
			Regime:     reg.Volatility,
		},
		Pattern: types.PatternFeatures{Set: patterns},
	}

	return record
}

// trailingReturn is the fractional change over the last n samples
func trailingReturn(closes []float64, n int) float64 {
	if len(closes) < n+1 {
		return 0
	}
	base := closes[len(closes)-n-1]
	if base == 0 {
		return 0
	}
	return (closes[len(closes)-1] - base) / base
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}

func emaAligned(closes []float64) bool {
	ema12 := indicators.EMA(closes, 12)
	ema26 := indicators.EMA(closes, 26)
	if ema12 == nil || ema26 == nil {
		return false
	}
	return ema12[len(ema12)-1] > ema26[len(ema26)-1]
}
