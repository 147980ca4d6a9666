package types

import "time"

// AssetType identifies the asset class being analyzed
type AssetType string

const (
	AssetCrypto    AssetType = "crypto"
	AssetStock     AssetType = "stock"
	AssetForex     AssetType = "forex"
	AssetCommodity AssetType = "commodity"
)

// Timeframe is the forecast horizon requested by the dashboard
type Timeframe string

const (
	Timeframe1D Timeframe = "1D"
	Timeframe1W Timeframe = "1W"
	Timeframe1M Timeframe = "1M"
	Timeframe3M Timeframe = "3M"
)

// Direction is a discrete trend call
type Direction string

const (
	Bullish Direction = "BULLISH"
	Bearish Direction = "BEARISH"
	Neutral Direction = "NEUTRAL"
)

// Recommendation is the final buy/sell/hold verdict
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG_BUY"
	Buy        Recommendation = "BUY"
	Hold       Recommendation = "HOLD"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG_SELL"
)

// RiskLevel classifies an asset by realized volatility
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// VolatilityRegime buckets current volatility into four levels
type VolatilityRegime string

const (
	VolLow     VolatilityRegime = "LOW"
	VolMedium  VolatilityRegime = "MEDIUM"
	VolHigh    VolatilityRegime = "HIGH"
	VolExtreme VolatilityRegime = "EXTREME"
)

// TrendRegime buckets the prevailing trend into five levels
type TrendRegime string

const (
	StrongBull TrendRegime = "STRONG_BULL"
	Bull       TrendRegime = "BULL"
	Sideways   TrendRegime = "SIDEWAYS"
	Bear       TrendRegime = "BEAR"
	StrongBear TrendRegime = "STRONG_BEAR"
)

// MomentumState describes whether the recent move is speeding up or fading
type MomentumState string

const (
	Accelerating MomentumState = "ACCELERATING"
	Stable       MomentumState = "STABLE"
	Decelerating MomentumState = "DECELERATING"
)

// Quote is a single OHLC-style sample. Volume may be zero when the
// upstream source does not provide it; consumers synthesize one.
type Quote struct {
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}

// Series is a chronological price series, oldest first
type Series []Quote

// Closes extracts the close column
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, q := range s {
		closes[i] = q.Close
	}
	return closes
}

// Highs extracts the high column
func (s Series) Highs() []float64 {
	highs := make([]float64, len(s))
	for i, q := range s {
		highs[i] = q.High
	}
	return highs
}

// Lows extracts the low column
func (s Series) Lows() []float64 {
	lows := make([]float64, len(s))
	for i, q := range s {
		lows[i] = q.Low
	}
	return lows
}

// Volumes extracts the volume column
func (s Series) Volumes() []float64 {
	vols := make([]float64, len(s))
	for i, q := range s {
		vols[i] = q.Volume
	}
	return vols
}

// FromCloses builds a Series from a close-only history, synthesizing
// high/low as close*(1±epsilon). The synthesized range degrades
// ATR/pattern precision; epsilon is configured per asset class.
func FromCloses(closes []float64, epsilon float64) Series {
	series := make(Series, len(closes))
	for i, c := range closes {
		series[i] = Quote{
			High:  c * (1 + epsilon),
			Low:   c * (1 - epsilon),
			Close: c,
		}
	}
	return series
}

// MACD holds the MACD line, its signal line and the histogram
type MACD struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Bollinger holds the band values plus the derived %B and bandwidth
type Bollinger struct {
	Upper     float64 `json:"upper"`
	Middle    float64 `json:"middle"`
	Lower     float64 `json:"lower"`
	Bandwidth float64 `json:"bandwidth"`
	PercentB  float64 `json:"percent_b"`
}

// Stochastic holds the %K and smoothed %D oscillator values
type Stochastic struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// Levels holds pivot-derived support/resistance levels around price
type Levels struct {
	Pivot       float64   `json:"pivot"`
	Supports    []float64 `json:"supports"`
	Resistances []float64 `json:"resistances"`
}

// IndicatorSet is the full indicator snapshot for one series.
// Values below each indicator's minimum length are neutral sentinels
// (RSI 50, stochastic 50/50, Williams %R -50, zeroed bands), never errors.
type IndicatorSet struct {
	RSI        float64    `json:"rsi"`
	MACD       MACD       `json:"macd"`
	Bollinger  Bollinger  `json:"bollinger"`
	Stochastic Stochastic `json:"stochastic"`
	WilliamsR  float64    `json:"williams_r"`
	VWAP       float64    `json:"vwap"`
	ATR        float64    `json:"atr"`
	Levels     Levels     `json:"levels"`
}

// RegimeClassification labels the current market behavior
type RegimeClassification struct {
	Volatility VolatilityRegime `json:"volatility"`
	Trend      TrendRegime      `json:"trend"`
	Momentum   MomentumState    `json:"momentum"`
	Confidence float64          `json:"confidence"`
}

// PatternTag names a detected chart pattern
type PatternTag string

const (
	PatternDoubleTop          PatternTag = "DOUBLE_TOP"
	PatternDoubleBottom       PatternTag = "DOUBLE_BOTTOM"
	PatternHeadAndShoulders   PatternTag = "HEAD_AND_SHOULDERS"
	PatternInverseHS          PatternTag = "INVERSE_HEAD_AND_SHOULDERS"
	PatternAscendingTriangle  PatternTag = "ASCENDING_TRIANGLE"
	PatternDescendingTriangle PatternTag = "DESCENDING_TRIANGLE"
	PatternBullishBreakout    PatternTag = "BULLISH_BREAKOUT"
	PatternBearishBreakout    PatternTag = "BEARISH_BREAKOUT"
	PatternStrongUptrend      PatternTag = "STRONG_UPTREND"
	PatternStrongDowntrend    PatternTag = "STRONG_DOWNTREND"
	PatternBullishDivergence  PatternTag = "BULLISH_DIVERGENCE"
	PatternBearishDivergence  PatternTag = "BEARISH_DIVERGENCE"
)

// PatternSet is the detector output. The three slices stay index-aligned;
// use Add to append so the invariant holds by construction.
type PatternSet struct {
	Patterns   []PatternTag `json:"patterns"`
	Confidence []float64    `json:"confidence"`
	Signals    []Direction  `json:"signals"`
}

// Add appends one pattern keeping the parallel slices aligned
func (p *PatternSet) Add(tag PatternTag, confidence float64, signal Direction) {
	p.Patterns = append(p.Patterns, tag)
	p.Confidence = append(p.Confidence, confidence)
	p.Signals = append(p.Signals, signal)
}

// Has reports whether a tag was detected
func (p *PatternSet) Has(tag PatternTag) bool {
	for _, t := range p.Patterns {
		if t == tag {
			return true
		}
	}
	return false
}

// TimeframeView is the trend reading at one resample stride
type TimeframeView struct {
	Stride    int       `json:"stride"`
	Direction Direction `json:"direction"`
	Strength  float64   `json:"strength"`
	Momentum  float64   `json:"momentum"`
}

// MultiTimeframe is the cross-stride consensus
type MultiTimeframe struct {
	Views      []TimeframeView `json:"views"`
	Consensus  Direction       `json:"consensus"`
	Confidence float64         `json:"confidence"`
}

// TechnicalFeatures are the oscillator/band readings used by the scorers
type TechnicalFeatures struct {
	RSI         float64
	MACDLine    float64
	MACDSignal  float64
	MACDHist    float64
	PercentB    float64
	StochasticK float64
	StochasticD float64
	WilliamsR   float64
	PriceToVWAP float64
}

// MomentumFeatures capture recent returns and trend alignment
type MomentumFeatures struct {
	Return5      float64
	Return10     float64
	PriceToSMA20 float64
	PriceToSMA50 float64
	EMAAligned   bool
	Trend        TrendRegime
	Momentum     MomentumState
	MTF          MultiTimeframe
}

// VolatilityFeatures capture the dispersion readings
type VolatilityFeatures struct {
	ATRPercent float64
	Historical float64
	Bandwidth  float64
	Regime     VolatilityRegime
}

// PatternFeatures carry the detector output into the scorers
type PatternFeatures struct {
	Set PatternSet
}

// FeatureRecord bundles everything the scorers consume. Built once per
// prediction call and never cached on its own.
type FeatureRecord struct {
	CurrentPrice float64
	Technical    TechnicalFeatures
	Momentum     MomentumFeatures
	Volatility   VolatilityFeatures
	Pattern      PatternFeatures
	Regime       RegimeClassification
	Indicators   IndicatorSet
}

// PredictionResult is the full engine output for one series
type PredictionResult struct {
	ID             string         `json:"id,omitempty"`
	Prediction     float64        `json:"prediction"`
	Confidence     float64        `json:"confidence"`
	Reasoning      string         `json:"reasoning"`
	Signals        []string       `json:"signals"`
	Recommendation Recommendation `json:"recommendation"`
	Timestamp      time.Time      `json:"timestamp"`
}

// QuickPrediction is the lightweight close-only variant for UI badges
type QuickPrediction struct {
	Direction  string  `json:"direction"` // "bullish", "bearish", "neutral"
	Confidence float64 `json:"confidence"`
}

// TechnicalSnapshot is the indicator summary shown alongside an analysis
type TechnicalSnapshot struct {
	RSI        float64   `json:"rsi"`
	Trend      Direction `json:"trend"`
	Volatility float64   `json:"volatility"` // percent
	Support    float64   `json:"support"`
	Resistance float64   `json:"resistance"`
}

// InvestmentAnalysis is the user-facing aggregate produced per asset.
// Instances are immutable once created; recomputes replace them wholesale.
type InvestmentAnalysis struct {
	Asset                 string            `json:"asset"`
	Symbol                string            `json:"symbol"`
	AssetType             AssetType         `json:"asset_type"`
	CurrentPrice          float64           `json:"current_price"`
	PredictedPrice        float64           `json:"predicted_price"`
	ExpectedReturn        float64           `json:"expected_return"`
	ExpectedReturnPercent float64           `json:"expected_return_percent"`
	RiskLevel             RiskLevel         `json:"risk_level"`
	Confidence            float64           `json:"confidence"`
	Timeframe             Timeframe         `json:"timeframe"`
	Recommendation        Recommendation    `json:"recommendation"`
	Reasoning             string            `json:"reasoning"`
	TechnicalIndicators   TechnicalSnapshot `json:"technical_indicators"`
	GeneratedAt           time.Time         `json:"generated_at"`
}

// AssetInfo is what the data provider resolves a symbol to
type AssetInfo struct {
	Symbol       string    `json:"symbol"`
	DisplayName  string    `json:"display_name"`
	AssetType    AssetType `json:"asset_type"`
	CurrentPrice float64   `json:"current_price"`
}

// PricePoint is one live quote from the stream collector
type PricePoint struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// SeriesData is the raw history returned by the data provider.
// Highs/Lows/Volumes may be empty; Closes is required.
type SeriesData struct {
	Highs   []float64
	Lows    []float64
	Closes  []float64
	Volumes []float64
}
