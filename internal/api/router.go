package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"market-advisor/internal/analyzer"
	"market-advisor/internal/predictor"
	"market-advisor/internal/storage"
	"market-advisor/pkg/types"
)

// Server is the HTTP surface over the engine
type Server struct {
	app     *fiber.App
	handler *Handler
	config  types.APIConfig
	log     zerolog.Logger
}

func NewServer(
	engine *predictor.Engine,
	analysis *analyzer.Analyzer,
	store *storage.MemoryStorage,
	config types.APIConfig,
	log zerolog.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		AppName: "Market Advisor API",
	})

	if config.EnableCORS {
		app.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin, Content-Type, Accept",
		}))
	}

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	return &Server{
		app:     app,
		handler: NewHandler(engine, analysis, store),
		config:  config,
		log:     log.With().Str("component", "api").Logger(),
	}
}

// SetupRoutes configures all API routes
func (s *Server) SetupRoutes() {
	api := s.app.Group("/api")

	api.Get("/health", s.handler.Health)
	api.Get("/markets", s.handler.GetMarkets)

	api.Get("/analyze/:symbol", s.handler.Analyze)
	api.Get("/predict/:symbol", s.handler.Predict)
	api.Get("/quick/:symbol", s.handler.QuickPredict)
	api.Get("/history/:symbol", s.handler.History)

	if s.config.WebSocketEnabled {
		api.Get("/stream/:symbol", websocket.New(s.handler.Stream))
	}

	s.app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not found",
			"path":  c.Path(),
		})
	})
}

// Start begins serving; blocks until shutdown
func (s *Server) Start() error {
	s.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.log.Info().Str("addr", addr).Msg("API server starting")

	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
