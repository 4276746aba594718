package main

import (
	"fmt"
	"log"
	"time"

	"home-layout/internal/common/config"
	"home-layout/internal/common/health"
	"home-layout/internal/common/logger"
	"home-layout/internal/common/middleware"
	"home-layout/internal/gateway/handlers"
	"home-layout/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "api-gateway")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "API Gateway",
	})

	p := proxy.New(cfg.BackendTimeout, zl)

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger(zl))
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Health Check & Docs Routes
	// ============================================================

	health.Register(app, map[string]health.Check{
		"editor": p.Ping(cfg.EditorURL + "/health/live"),
		"home":   p.Ping(cfg.HomeURL + "/health/live"),
	})
	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec(cfg.DocsPath))

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Home Layout API v1",
			"status":  "ok",
		})
	})

	// ============================================================
	// Service Routes (Proxy)
	// ============================================================

	// Home Service
	api.Post("/login", p.To(cfg.HomeURL+"/login"))
	api.Get("/users/:id", func(c fiber.Ctx) error {
		return p.Forward(c, fmt.Sprintf("%s/users/%s", cfg.HomeURL, c.Params("id")))
	})
	api.Get("/layouts/:floorId", func(c fiber.Ctx) error {
		return p.Forward(c, fmt.Sprintf("%s/layouts/%s", cfg.HomeURL, c.Params("floorId")))
	})

	// Layout Editor (SSE /live/stream отдается редактором напрямую)
	api.All("/editor/*", p.Mount("/api/v1/editor", cfg.EditorURL))

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	zl.Info("starting api gateway",
		zap.String("addr", addr),
		zap.String("env", cfg.Environment),
		zap.String("editor", cfg.EditorURL),
		zap.String("home", cfg.HomeURL),
	)

	if err := app.Listen(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}
