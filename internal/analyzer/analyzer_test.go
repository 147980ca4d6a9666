package analyzer

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-advisor/internal/cache"
	"market-advisor/internal/config"
	"market-advisor/internal/predictor"
	"market-advisor/pkg/types"
)

type stubProvider struct {
	resolveCalls int
	fetchCalls   int
	closes       []float64
}

func (p *stubProvider) ResolveAsset(_ context.Context, symbol string, assetType types.AssetType) (types.AssetInfo, error) {
	p.resolveCalls++
	if symbol == "unknown" {
		return types.AssetInfo{}, fmt.Errorf("%w: %s", ErrAssetNotFound, symbol)
	}
	return types.AssetInfo{
		Symbol:       symbol,
		DisplayName:  "Test Asset",
		AssetType:    assetType,
		CurrentPrice: p.closes[len(p.closes)-1],
	}, nil
}

func (p *stubProvider) FetchSeries(_ context.Context, _ string, _ types.AssetType, _ types.Timeframe) (types.SeriesData, error) {
	p.fetchCalls++
	return types.SeriesData{Closes: p.closes}, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func testSeries(n int) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		price *= 1 + 0.006*math.Sin(float64(i)*0.8)
		closes[i] = price
	}
	return closes
}

func newTestAnalyzer(p Provider, clock cache.Clock) *Analyzer {
	cfg := config.Default()
	c := cache.NewMemory(clock)
	engine := predictor.NewEngine(&cfg, c)
	return New(&cfg, p, engine, c, zerolog.Nop())
}

func TestAnalyzeInvestment(t *testing.T) {
	provider := &stubProvider{closes: testSeries(60)}
	a := newTestAnalyzer(provider, nil)

	analysis, err := a.AnalyzeInvestment(context.Background(), "btc", types.AssetCrypto, types.Timeframe1D)
	require.NoError(t, err)

	assert.Equal(t, "Test Asset", analysis.Asset)
	assert.Equal(t, types.AssetCrypto, analysis.AssetType)
	assert.Greater(t, analysis.CurrentPrice, 0.0)
	assert.Greater(t, analysis.PredictedPrice, 0.0)
	assert.GreaterOrEqual(t, analysis.Confidence, 55.0)
	assert.LessOrEqual(t, analysis.Confidence, 98.0)
	assert.NotEmpty(t, analysis.Reasoning)
	assert.Contains(t, []types.RiskLevel{types.RiskLow, types.RiskMedium, types.RiskHigh}, analysis.RiskLevel)

	expected := analysis.PredictedPrice - analysis.CurrentPrice
	assert.InDelta(t, expected, analysis.ExpectedReturn, 1e-9)
}

func TestAnalyzeInvestmentCachedWithinTTL(t *testing.T) {
	provider := &stubProvider{closes: testSeries(60)}
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	a := newTestAnalyzer(provider, clock)

	first, err := a.AnalyzeInvestment(context.Background(), "btc", types.AssetCrypto, types.Timeframe1D)
	require.NoError(t, err)

	second, err := a.AnalyzeInvestment(context.Background(), "btc", types.AssetCrypto, types.Timeframe1D)
	require.NoError(t, err)

	assert.Same(t, first, second, "a cache hit returns the previous analysis unchanged")
	assert.Equal(t, 1, provider.resolveCalls)
	assert.Equal(t, 1, provider.fetchCalls)
}

func TestAnalyzeInvestmentRecomputesPastTTL(t *testing.T) {
	provider := &stubProvider{closes: testSeries(60)}
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	a := newTestAnalyzer(provider, clock)

	first, err := a.AnalyzeInvestment(context.Background(), "btc", types.AssetCrypto, types.Timeframe1D)
	require.NoError(t, err)

	clock.now = clock.now.Add(11 * time.Minute)

	second, err := a.AnalyzeInvestment(context.Background(), "btc", types.AssetCrypto, types.Timeframe1D)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, provider.resolveCalls)
}

func TestAnalyzeInvestmentKeyIncludesTimeframe(t *testing.T) {
	provider := &stubProvider{closes: testSeries(60)}
	a := newTestAnalyzer(provider, nil)

	_, err := a.AnalyzeInvestment(context.Background(), "btc", types.AssetCrypto, types.Timeframe1D)
	require.NoError(t, err)
	_, err = a.AnalyzeInvestment(context.Background(), "btc", types.AssetCrypto, types.Timeframe1M)
	require.NoError(t, err)

	assert.Equal(t, 2, provider.fetchCalls)
}

func TestAnalyzeInvestmentAssetNotFound(t *testing.T) {
	provider := &stubProvider{closes: testSeries(60)}
	a := newTestAnalyzer(provider, nil)

	_, err := a.AnalyzeInvestment(context.Background(), "unknown", types.AssetCrypto, types.Timeframe1D)
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, types.RiskLow, riskLevel(0.01))
	assert.Equal(t, types.RiskMedium, riskLevel(0.03))
	assert.Equal(t, types.RiskHigh, riskLevel(0.08))
}
