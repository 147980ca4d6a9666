package predictor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"market-advisor/internal/cache"
	"market-advisor/pkg/types"
)

// Engine wraps the pure prediction paths with result caching and ID
// tagging. Computation is deterministic per series, so cached results
// are safe to reuse within the TTL.
type Engine struct {
	cfg       types.EngineConfig
	synthesis types.SynthesisConfig
	cache     cache.Cache
	ttl       time.Duration
}

// NewEngine builds an Engine on an injected cache. A nil cache disables
// result reuse.
func NewEngine(cfg *types.Config, c cache.Cache) *Engine {
	return &Engine{
		cfg:       cfg.Engine,
		synthesis: cfg.Synthesis,
		cache:     c,
		ttl:       time.Duration(cfg.Cache.PredictionTTLSeconds) * time.Second,
	}
}

// Predict runs the advanced ensemble, serving repeats of the same
// series from cache within the TTL
func (e *Engine) Predict(highs, lows, closes, volumes []float64) types.PredictionResult {
	key := seriesKey(closes)

	if e.cache != nil {
		if hit, ok := e.cache.Get(key); ok {
			if result, ok := hit.(types.PredictionResult); ok {
				return result
			}
		}
	}

	result := AdvancedPrediction(highs, lows, closes, volumes, e.cfg)
	result.ID = uuid.New().String()

	if e.cache != nil {
		e.cache.Set(key, result, e.ttl)
	}
	return result
}

// PredictCloses runs Predict on a close-only series, synthesizing the
// high/low range with the asset class epsilon
func (e *Engine) PredictCloses(closes []float64, assetType types.AssetType) types.PredictionResult {
	synth := types.FromCloses(closes, e.synthesis.Epsilon(assetType))
	return e.Predict(synth.Highs(), synth.Lows(), closes, nil)
}

// Quick runs the lightweight close-only prediction. Not cached; it is
// cheaper than a cache round-trip for typical series.
func (e *Engine) Quick(closes []float64, assetType types.AssetType) types.QuickPrediction {
	return QuickPredict(closes, e.synthesis.Epsilon(assetType), e.cfg)
}

// seriesKey fingerprints a close series for the prediction cache.
// Length plus first/last values distinguishes every rolling window the
// collector produces.
func seriesKey(closes []float64) string {
	first, last := 0.0, 0.0
	if len(closes) > 0 {
		first = closes[0]
		last = closes[len(closes)-1]
	}
	return fmt.Sprintf("prediction:%d:%.8f:%.8f", len(closes), first, last)
}
