package regression

import (
	"market-advisor/internal/indicators"
	"market-advisor/internal/series"
	"market-advisor/pkg/types"
)

// Prediction is the OLS model output. Features is nil when the series
// was too short to train; callers read that as "not enough history".
type Prediction struct {
	Price      float64
	Return     float64
	Confidence float64
	R2         float64
	Features   []float64
}

const featureCount = 8

// minSamples is the total history needed before the model trains at all
const minSamples = 30

// Predict fits ordinary least squares over a sliding feature window and
// forecasts the next-sample return. The model solves the normal
// equation θ = (XᵀX)⁻¹Xᵀy with an explicit bias column; a singular
// system degrades to the neutral fallback rather than an error.
func Predict(highs, lows, closes []float64, cfg types.EngineConfig, volatility types.VolatilityRegime) Prediction {
	n := len(closes)
	window := cfg.RegressionWindow
	depth := cfg.RegressionDepth

	fallback := Prediction{Confidence: 50}
	if n > 0 {
		fallback.Price = closes[n-1]
	}
	if n < minSamples || n < window+2 {
		return fallback
	}

	// Training rows span up to the last depth samples; each row's
	// features are computed on the history up to that sample and its
	// target is the following sample's return.
	start := window
	if n-depth > start {
		start = n - depth
	}

	var rows [][]float64
	var targets []float64
	for i := start; i < n-1; i++ {
		if closes[i] == 0 {
			continue
		}
		rows = append(rows, featureRow(highs, lows, closes, i, cfg))
		targets = append(targets, (closes[i+1]-closes[i])/closes[i])
	}
	if len(rows) < featureCount+2 {
		return fallback
	}

	x := series.Matrix(rows)

	theta, ok := solve(x, targets)
	if !ok {
		return fallback
	}

	r2 := rSquared(x, targets, theta)

	current := featureRow(highs, lows, closes, n-1, cfg)
	predictedReturn := 0.0
	for j, c := range theta {
		predictedReturn += c * current[j]
	}

	confidence := series.Clamp(r2*100, 55, 95)
	switch volatility {
	case types.VolExtreme:
		confidence *= 0.7
	case types.VolLow:
		confidence *= 1.1
	}

	return Prediction{
		Price:      closes[n-1] * (1 + predictedReturn),
		Return:     predictedReturn,
		Confidence: series.Clamp(confidence, 30, 95),
		R2:         r2,
		Features:   current,
	}
}

// featureRow builds the 9-element row (8 features + bias) for the
// history ending at index i inclusive
func featureRow(highs, lows, closes []float64, i int, cfg types.EngineConfig) []float64 {
	h, l, c := highs[:i+1], lows[:i+1], closes[:i+1]
	price := closes[i]

	ret5 := 0.0
	if i >= 5 && closes[i-5] != 0 {
		ret5 = (price - closes[i-5]) / closes[i-5]
	}

	atrPct := 0.0
	if price != 0 {
		atrPct = indicators.ATR(h, l, c, cfg.ATRPeriod) / price
	}

	priceToSMA := 1.0
	if sma := indicators.SMA(c, 20); sma != 0 {
		priceToSMA = price / sma
	}

	return []float64{
		indicators.RSI(c, cfg.RSIPeriod),
		indicators.MACDOsc(c, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal).Line,
		indicators.BollingerBands(c, cfg.BollingerPeriod, cfg.BollingerStdDev).PercentB,
		indicators.StochasticOsc(h, l, c, cfg.StochasticK, cfg.StochasticD).K,
		indicators.WilliamsR(h, l, c, cfg.StochasticK),
		ret5 * 100,
		atrPct * 100,
		priceToSMA,
		1, // bias
	}
}

// solve computes θ = (XᵀX)⁻¹Xᵀy
func solve(x series.Matrix, y []float64) ([]float64, bool) {
	xt := series.Transpose(x)

	xtx, err := series.Multiply(xt, x)
	if err != nil {
		return nil, false
	}
	inv, err := series.Inverse(xtx)
	if err != nil {
		return nil, false
	}
	xty, err := series.MultiplyVec(xt, y)
	if err != nil {
		return nil, false
	}
	theta, err := series.MultiplyVec(inv, xty)
	if err != nil {
		return nil, false
	}
	return theta, true
}

func rSquared(x series.Matrix, y, theta []float64) float64 {
	meanY := series.Mean(y)

	var ssTot, ssRes float64
	for i, row := range x {
		fit := 0.0
		for j, c := range theta {
			fit += c * row[j]
		}
		ssTot += (y[i] - meanY) * (y[i] - meanY)
		ssRes += (y[i] - fit) * (y[i] - fit)
	}
	if ssTot == 0 {
		return 1
	}

	r2 := 1 - ssRes/ssTot
	if r2 < 0 {
		return 0
	}
	return r2
}
