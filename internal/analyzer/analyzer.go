package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"market-advisor/internal/cache"
	"market-advisor/internal/indicators"
	"market-advisor/internal/predictor"
	"market-advisor/internal/regime"
	"market-advisor/internal/series"
	"market-advisor/pkg/types"
)

// ErrAssetNotFound reports that no provider lookup matched the symbol.
// The only error AnalyzeInvestment returns besides context/transport
// failures from the provider itself.
var ErrAssetNotFound = errors.New("asset not found")

// Provider supplies asset metadata and price history. Implementations
// resolve symbols case-insensitively, falling back to a substring match
// on the display name.
type Provider interface {
	ResolveAsset(ctx context.Context, symbol string, assetType types.AssetType) (types.AssetInfo, error)
	FetchSeries(ctx context.Context, symbol string, assetType types.AssetType, timeframe types.Timeframe) (types.SeriesData, error)
}

// Analyzer is the top-level analysis use case: resolve the asset, build
// its series, predict, and assemble the user-facing aggregate. Results
// are cached per (symbol, type, timeframe); a cache hit returns the
// previous analysis unchanged.
type Analyzer struct {
	cfg      *types.Config
	provider Provider
	engine   *predictor.Engine
	cache    cache.Cache
	ttl      time.Duration
	log      zerolog.Logger
}

func New(cfg *types.Config, provider Provider, engine *predictor.Engine, c cache.Cache, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		cfg:      cfg,
		provider: provider,
		engine:   engine,
		cache:    c,
		ttl:      time.Duration(cfg.Cache.AnalysisTTLMinutes) * time.Minute,
		log:      log.With().Str("component", "analyzer").Logger(),
	}
}

// AnalyzeInvestment produces the full analysis for one asset
func (a *Analyzer) AnalyzeInvestment(ctx context.Context, symbol string, assetType types.AssetType, timeframe types.Timeframe) (*types.InvestmentAnalysis, error) {
	key := analysisKey(symbol, assetType, timeframe)

	if hit, ok := a.cache.Get(key); ok {
		if analysis, ok := hit.(*types.InvestmentAnalysis); ok {
			a.log.Debug().Str("symbol", symbol).Msg("analysis served from cache")
			return analysis, nil
		}
	}

	asset, err := a.provider.ResolveAsset(ctx, symbol, assetType)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrAssetNotFound, symbol, assetType)
		}
		return nil, fmt.Errorf("resolving %s: %w", symbol, err)
	}

	data, err := a.provider.FetchSeries(ctx, asset.Symbol, assetType, timeframe)
	if err != nil {
		return nil, fmt.Errorf("fetching series for %s: %w", asset.Symbol, err)
	}
	if len(data.Closes) == 0 {
		return nil, fmt.Errorf("%w: %s has no price history", ErrAssetNotFound, asset.Symbol)
	}

	highs, lows, closes, volumes := a.buildSeries(data, assetType)

	prediction := a.engine.Predict(highs, lows, closes, volumes)

	analysis := a.assemble(asset, timeframe, highs, lows, closes, prediction)
	a.cache.Set(key, analysis, a.ttl)

	a.log.Info().
		Str("symbol", asset.Symbol).
		Str("recommendation", string(analysis.Recommendation)).
		Float64("confidence", analysis.Confidence).
		Msg("analysis generated")

	return analysis, nil
}

// buildSeries fills in missing high/low columns with the per-asset-class
// synthesis band
func (a *Analyzer) buildSeries(data types.SeriesData, assetType types.AssetType) (highs, lows, closes, volumes []float64) {
	closes = data.Closes
	volumes = data.Volumes

	if len(data.Highs) == len(closes) && len(data.Lows) == len(closes) {
		return data.Highs, data.Lows, closes, volumes
	}

	synth := types.FromCloses(closes, a.cfg.Synthesis.Epsilon(assetType))
	return synth.Highs(), synth.Lows(), closes, volumes
}

func (a *Analyzer) assemble(asset types.AssetInfo, timeframe types.Timeframe, highs, lows, closes []float64, prediction types.PredictionResult) *types.InvestmentAnalysis {
	currentPrice := asset.CurrentPrice
	if currentPrice == 0 {
		currentPrice = closes[len(closes)-1]
	}

	expectedReturn := prediction.Prediction - currentPrice
	expectedPct := 0.0
	if currentPrice != 0 {
		expectedPct = expectedReturn / currentPrice * 100
	}

	volatility := series.Volatility(closes)

	s := make(types.Series, len(closes))
	for i := range closes {
		s[i] = types.Quote{High: highs[i], Low: lows[i], Close: closes[i]}
	}
	ind := indicators.Compute(s, a.cfg.Engine)
	reg := regime.Detect(highs, lows, closes)

	support, resistance := 0.0, 0.0
	if len(ind.Levels.Supports) > 0 {
		support = ind.Levels.Supports[0]
	}
	if len(ind.Levels.Resistances) > 0 {
		resistance = ind.Levels.Resistances[0]
	}

	return &types.InvestmentAnalysis{
		Asset:                 asset.DisplayName,
		Symbol:                asset.Symbol,
		AssetType:             asset.AssetType,
		CurrentPrice:          currentPrice,
		PredictedPrice:        prediction.Prediction,
		ExpectedReturn:        expectedReturn,
		ExpectedReturnPercent: expectedPct,
		RiskLevel:             riskLevel(volatility),
		Confidence:            prediction.Confidence,
		Timeframe:             timeframe,
		Recommendation:        prediction.Recommendation,
		Reasoning:             prediction.Reasoning,
		TechnicalIndicators: types.TechnicalSnapshot{
			RSI:        ind.RSI,
			Trend:      trendDirection(reg.Trend),
			Volatility: volatility * 100,
			Support:    support,
			Resistance: resistance,
		},
		GeneratedAt: time.Now().UTC(),
	}
}

// riskLevel buckets realized volatility
func riskLevel(volatility float64) types.RiskLevel {
	switch {
	case volatility > 0.05:
		return types.RiskHigh
	case volatility > 0.02:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

func trendDirection(trend types.TrendRegime) types.Direction {
	switch trend {
	case types.StrongBull, types.Bull:
		return types.Bullish
	case types.StrongBear, types.Bear:
		return types.Bearish
	default:
		return types.Neutral
	}
}

func analysisKey(symbol string, assetType types.AssetType, timeframe types.Timeframe) string {
	return fmt.Sprintf("analysis:%s:%s:%s", strings.ToLower(symbol), assetType, timeframe)
}
