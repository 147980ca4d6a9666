package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"market-advisor/internal/analyzer"
	"market-advisor/internal/predictor"
	"market-advisor/internal/storage"
	"market-advisor/pkg/types"
)

// Handler holds the request handlers and their dependencies
type Handler struct {
	engine   *predictor.Engine
	analyzer *analyzer.Analyzer
	storage  *storage.MemoryStorage
}

func NewHandler(engine *predictor.Engine, a *analyzer.Analyzer, store *storage.MemoryStorage) *Handler {
	return &Handler{
		engine:   engine,
		analyzer: a,
		storage:  store,
	}
}

// Health reports service liveness
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"symbols":   len(h.storage.ActiveSymbols()),
	})
}

// GetMarkets lists symbols with live quotes
func (h *Handler) GetMarkets(c *fiber.Ctx) error {
	symbols := h.storage.ActiveSymbols()

	markets := make([]fiber.Map, 0, len(symbols))
	for _, symbol := range symbols {
		markets = append(markets, fiber.Map{
			"symbol":      symbol,
			"price":       h.storage.LatestPrice(symbol),
			"data_points": h.storage.Count(symbol),
		})
	}

	return c.JSON(fiber.Map{
		"count":   len(markets),
		"markets": markets,
	})
}

// Analyze runs the full investment analysis for an asset
func (h *Handler) Analyze(c *fiber.Ctx) error {
	symbol := c.Params("symbol")
	assetType := parseAssetType(c.Query("type", "crypto"))
	timeframe := parseTimeframe(c.Query("timeframe", "1D"))

	analysis, err := h.analyzer.AnalyzeInvestment(c.Context(), symbol, assetType, timeframe)
	if err != nil {
		if errors.Is(err, analyzer.ErrAssetNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(analysis)
}

// Predict runs the advanced ensemble on the live quote history
func (h *Handler) Predict(c *fiber.Ctx) error {
	symbol := c.Params("symbol")
	assetType := parseAssetType(c.Query("type", "crypto"))

	closes := h.storage.Closes(symbol, 250)
	if len(closes) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no live data for symbol " + symbol,
		})
	}

	result := h.engine.PredictCloses(closes, assetType)
	return c.JSON(fiber.Map{
		"symbol":      symbol,
		"data_points": len(closes),
		"prediction":  result,
	})
}

// QuickPredict runs the lightweight close-only prediction
func (h *Handler) QuickPredict(c *fiber.Ctx) error {
	symbol := c.Params("symbol")
	assetType := parseAssetType(c.Query("type", "crypto"))

	closes := h.storage.Closes(symbol, 250)
	if len(closes) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no live data for symbol " + symbol,
		})
	}

	quick := h.engine.Quick(closes, assetType)
	return c.JSON(fiber.Map{
		"symbol":      symbol,
		"data_points": len(closes),
		"direction":   quick.Direction,
		"confidence":  quick.Confidence,
	})
}

// History returns the stored live quotes for charting
func (h *Handler) History(c *fiber.Ctx) error {
	symbol := c.Params("symbol")

	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = 100
	}

	points := h.storage.Points(symbol, limit)
	if len(points) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no data for symbol " + symbol,
		})
	}

	return c.JSON(fiber.Map{
		"symbol": symbol,
		"count":  len(points),
		"points": points,
	})
}

// Stream pushes a fresh quick prediction for a symbol every few seconds
// over a websocket, for the live dashboard badge
func (h *Handler) Stream(c *websocket.Conn) {
	symbol := c.Params("symbol")
	assetType := parseAssetType(c.Query("type", "crypto"))

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	defer c.Close()

	for range ticker.C {
		closes := h.storage.Closes(symbol, 250)
		if len(closes) == 0 {
			continue
		}

		quick := h.engine.Quick(closes, assetType)
		payload := fiber.Map{
			"symbol":     symbol,
			"price":      closes[len(closes)-1],
			"direction":  quick.Direction,
			"confidence": quick.Confidence,
			"timestamp":  time.Now().UTC(),
		}
		if err := c.WriteJSON(payload); err != nil {
			return
		}
	}
}

func parseAssetType(raw string) types.AssetType {
	switch types.AssetType(raw) {
	case types.AssetStock:
		return types.AssetStock
	case types.AssetForex:
		return types.AssetForex
	case types.AssetCommodity:
		return types.AssetCommodity
	default:
		return types.AssetCrypto
	}
}

func parseTimeframe(raw string) types.Timeframe {
	switch types.Timeframe(raw) {
	case types.Timeframe1W:
		return types.Timeframe1W
	case types.Timeframe1M:
		return types.Timeframe1M
	case types.Timeframe3M:
		return types.Timeframe3M
	default:
		return types.Timeframe1D
	}
}
