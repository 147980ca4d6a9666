package indicators

import (
	"math"
	"sort"

	"market-advisor/pkg/types"
)

// Every indicator below is a pure function of its series with a minimum
// length precondition. Below that length it returns a neutral sentinel
// (RSI 50, stochastic 50/50, Williams %R -50, zeroed bands) so callers
// can treat short histories as "insufficient data" instead of errors.

// SMA returns the simple moving average of the last period samples
func SMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < period {
		period = len(values)
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period)
}

// EMA returns the aligned EMA series. The seed at index period-1 is the
// simple average of the first period samples; indices before that are
// zero and undefined. Returns nil when the series is shorter than period.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	ema := make([]float64, len(values))
	alpha := 2.0 / float64(period+1)

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	ema[period-1] = seed / float64(period)

	for i := period; i < len(values); i++ {
		ema[i] = alpha*values[i] + (1-alpha)*ema[i-1]
	}
	return ema
}

// RSI computes the Wilder Relative Strength Index. The first average
// gain/loss is a simple mean over period changes; later averages use
// Wilder smoothing avg = (avg*(period-1) + new) / period.
//
// A perfectly flat series (zero gain, zero loss) reads 50; 100 is
// reserved for zero loss with positive gain, and 0 for the mirror case.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	if avgGain == 0 {
		return 0
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACDOsc computes the MACD line (fast EMA - slow EMA, aligned from
// index slow-1), its signal EMA and the histogram. Series shorter than
// slow read all zeros; a MACD history shorter than the signal period
// falls back to its plain mean for the signal line.
func MACDOsc(closes []float64, fast, slow, signal int) types.MACD {
	if len(closes) < slow {
		return types.MACD{}
	}

	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	macdSeries := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		macdSeries = append(macdSeries, emaFast[i]-emaSlow[i])
	}
	line := macdSeries[len(macdSeries)-1]

	var sig float64
	if signalEMA := EMA(macdSeries, signal); signalEMA != nil {
		sig = signalEMA[len(signalEMA)-1]
	} else {
		sig = SMA(macdSeries, len(macdSeries))
	}

	return types.MACD{
		Line:      line,
		Signal:    sig,
		Histogram: line - sig,
	}
}

// BollingerBands computes the period-SMA middle band with bands at
// ±k standard deviations, plus %B and bandwidth. Shorter series read
// all zeros. %B is 0.5 when the bands collapse (flat window).
func BollingerBands(closes []float64, period int, k float64) types.Bollinger {
	if len(closes) < period {
		return types.Bollinger{}
	}

	window := closes[len(closes)-period:]
	middle := SMA(window, period)

	variance := 0.0
	for _, c := range window {
		diff := c - middle
		variance += diff * diff
	}
	stdev := math.Sqrt(variance / float64(period))

	upper := middle + k*stdev
	lower := middle - k*stdev
	price := closes[len(closes)-1]

	percentB := 0.5
	if upper != lower {
		percentB = (price - lower) / (upper - lower)
	}
	bandwidth := 0.0
	if middle != 0 {
		bandwidth = (upper - lower) / middle
	}

	return types.Bollinger{
		Upper:     upper,
		Middle:    middle,
		Lower:     lower,
		Bandwidth: bandwidth,
		PercentB:  percentB,
	}
}

// StochasticOsc computes %K over the kPeriod high/low range and smooths
// a %K history with a dPeriod SMA for %D. A collapsed range (highest
// equals lowest) reads a neutral 50 for that window.
func StochasticOsc(highs, lows, closes []float64, kPeriod, dPeriod int) types.Stochastic {
	if len(closes) < kPeriod || len(highs) < kPeriod || len(lows) < kPeriod {
		return types.Stochastic{K: 50, D: 50}
	}

	kValue := func(end int) float64 {
		hh, ll := highs[end-kPeriod], lows[end-kPeriod]
		for i := end - kPeriod + 1; i < end; i++ {
			if highs[i] > hh {
				hh = highs[i]
			}
			if lows[i] < ll {
				ll = lows[i]
			}
		}
		if hh == ll {
			return 50
		}
		return (closes[end-1] - ll) / (hh - ll) * 100
	}

	var kHistory []float64
	for end := kPeriod; end <= len(closes); end++ {
		kHistory = append(kHistory, kValue(end))
	}

	k := kHistory[len(kHistory)-1]
	d := SMA(kHistory, dPeriod)

	return types.Stochastic{K: k, D: d}
}

// WilliamsR computes Williams %R over the period high/low range,
// a value in [-100, 0]. Short or flat windows read -50.
func WilliamsR(highs, lows, closes []float64, period int) float64 {
	if len(closes) < period || len(highs) < period || len(lows) < period {
		return -50
	}

	hh, ll := highs[len(highs)-period], lows[len(lows)-period]
	for i := len(highs) - period + 1; i < len(highs); i++ {
		if highs[i] > hh {
			hh = highs[i]
		}
		if lows[i] < ll {
			ll = lows[i]
		}
	}
	if hh == ll {
		return -50
	}

	return (hh - closes[len(closes)-1]) / (hh - ll) * -100
}

// VWAP computes the volume-weighted average of the typical price
// (H+L+C)/3. When volumes are absent it synthesizes weights
// proportional to each sample's absolute return, so busier samples
// count more; a flat synthetic weighting degrades to the plain mean.
func VWAP(highs, lows, closes, volumes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}

	typical := func(i int) float64 {
		if i < len(highs) && i < len(lows) {
			return (highs[i] + lows[i] + closes[i]) / 3
		}
		return closes[i]
	}

	weights := volumes
	if !hasVolume(volumes) {
		weights = make([]float64, len(closes))
		for i := 1; i < len(closes); i++ {
			if closes[i-1] != 0 {
				weights[i] = math.Abs(closes[i]-closes[i-1]) / closes[i-1]
			}
		}
	}

	var weightedSum, totalWeight float64
	for i := range closes {
		w := 0.0
		if i < len(weights) {
			w = weights[i]
		}
		weightedSum += typical(i) * w
		totalWeight += w
	}

	if totalWeight == 0 {
		sum := 0.0
		for i := range closes {
			sum += typical(i)
		}
		return sum / float64(len(closes))
	}
	return weightedSum / totalWeight
}

// ATR computes the Wilder-smoothed Average True Range, where true range
// is max(high-low, |high-prevClose|, |low-prevClose|). Needs period+1
// samples; shorter series read 0.
func ATR(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if n < period+1 || len(highs) < n || len(lows) < n {
		return 0
	}

	trueRange := func(i int) float64 {
		tr := highs[i] - lows[i]
		if hc := math.Abs(highs[i] - closes[i-1]); hc > tr {
			tr = hc
		}
		if lc := math.Abs(lows[i] - closes[i-1]); lc > tr {
			tr = lc
		}
		return tr
	}

	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trueRange(i)
	}
	atr /= float64(period)

	for i := period + 1; i < n; i++ {
		atr = (atr*float64(period-1) + trueRange(i)) / float64(period)
	}
	return atr
}

// SupportResistance derives levels from the classic pivot point over the
// most recent <=50 samples (P = (H+L+C)/3, S1/S2/R1/R2) merged with
// price-cluster levels: rounded price buckets hit at least 3 times.
// Returns the top 3 supports below price and top 3 resistances above.
func SupportResistance(highs, lows, closes []float64) types.Levels {
	if len(closes) < 20 {
		return types.Levels{}
	}

	window := 50
	if len(closes) < window {
		window = len(closes)
	}
	start := len(closes) - window

	high := highs[start]
	low := lows[start]
	for i := start + 1; i < len(closes); i++ {
		if highs[i] > high {
			high = highs[i]
		}
		if lows[i] < low {
			low = lows[i]
		}
	}
	closePrice := closes[len(closes)-1]

	pivot := (high + low + closePrice) / 3
	levels := []float64{
		2*pivot - high,        // S1
		pivot - (high - low),  // S2
		2*pivot - low,         // R1
		pivot + (high - low),  // R2
	}

	// Price clustering: bucket closes onto a 0.5%-of-pivot grid and keep
	// buckets the price revisited at least 3 times
	if step := pivot * 0.005; step > 0 {
		counts := make(map[int64]int)
		for i := start; i < len(closes); i++ {
			counts[int64(math.Round(closes[i]/step))]++
		}
		for bucket, count := range counts {
			if count >= 3 {
				levels = append(levels, float64(bucket)*step)
			}
		}
	}

	var supports, resistances []float64
	for _, level := range levels {
		if level <= 0 {
			continue
		}
		if level < closePrice {
			supports = append(supports, level)
		} else if level > closePrice {
			resistances = append(resistances, level)
		}
	}

	// Nearest levels first: supports descending, resistances ascending
	sort.Sort(sort.Reverse(sort.Float64Slice(supports)))
	sort.Float64s(resistances)
	if len(supports) > 3 {
		supports = supports[:3]
	}
	if len(resistances) > 3 {
		resistances = resistances[:3]
	}

	return types.Levels{Pivot: pivot, Supports: supports, Resistances: resistances}
}

// Compute assembles the full indicator snapshot for one series
func Compute(s types.Series, cfg types.EngineConfig) types.IndicatorSet {
	highs, lows, closes, volumes := s.Highs(), s.Lows(), s.Closes(), s.Volumes()

	return types.IndicatorSet{
		RSI:        RSI(closes, cfg.RSIPeriod),
		MACD:       MACDOsc(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal),
		Bollinger:  BollingerBands(closes, cfg.BollingerPeriod, cfg.BollingerStdDev),
		Stochastic: StochasticOsc(highs, lows, closes, cfg.StochasticK, cfg.StochasticD),
		WilliamsR:  WilliamsR(highs, lows, closes, cfg.StochasticK),
		VWAP:       VWAP(highs, lows, closes, volumes),
		ATR:        ATR(highs, lows, closes, cfg.ATRPeriod),
		Levels:     SupportResistance(highs, lows, closes),
	}
}

func hasVolume(volumes []float64) bool {
	for _, v := range volumes {
		if v > 0 {
			return true
		}
	}
	return false
}
