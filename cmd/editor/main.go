package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"home-layout/internal/common/config"
	"home-layout/internal/common/logger"
	"home-layout/internal/common/middleware"
	"home-layout/internal/common/health"
	"home-layout/internal/layout/backend"
	"home-layout/internal/layout/editor"
	"home-layout/internal/layout/handlers"
	"home-layout/internal/live"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// Layout Editor Service
// ============================================================

// Сессия редактора без обращений дольше этого срока закрывается.
const sessionIdleTimeout = 30 * time.Minute

func main() {
	cfg := config.Load()
	cfg.Port = cfg.PortOr("3001")

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "layout-editor")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ============================================================
	// Dependencies
	// ============================================================

	backendClient := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, zl)
	checks := map[string]health.Check{
		"backend": backendClient.Ping,
	}

	var store live.StateStore = live.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		store = live.NewRedisStore(rdb, cfg.RedisPrefix)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		zl.Info("live state in redis", zap.String("addr", cfg.RedisAddr))
	}

	hub := live.NewBroadcaster()
	if cfg.LiveURL != "" {
		sub := live.NewSubscriber(cfg.LiveURL, cfg.LiveToken, store, hub, zl)
		go func() {
			if err := sub.Run(ctx); err != nil && ctx.Err() == nil {
				zl.Error("live subscriber stopped", zap.Error(err))
			}
		}()
	} else {
		zl.Warn("LIVE_URL is not set, live updates disabled")
	}

	sessions := editor.NewSessions(zl)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.Evict(sessionIdleTimeout)
			}
		}
	}()
	editorHandler := handlers.NewEditorHandler(sessions, backendClient, zl)
	liveHandler := handlers.NewLiveHandler(store, hub, zl)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Layout Editor Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger(zl))
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Routes
	// ============================================================

	health.Register(app, checks)
	editorHandler.Register(app)
	liveHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			zl.Error("shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	zl.Info("starting layout editor", zap.String("addr", addr), zap.String("env", cfg.Environment))

	if err := app.Listen(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}
