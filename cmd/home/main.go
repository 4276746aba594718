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
	"home-layout/internal/home/handlers"
	"home-layout/internal/home/repository"
	"home-layout/internal/home/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// Home Service (users, floor layouts)
// ============================================================

func main() {
	cfg := config.Load()
	cfg.Port = cfg.PortOr("3002")

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "home")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		zl.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(ctx, cfg.AdminUser, cfg.AdminPass); err != nil {
		zl.Fatal("init db", zap.Error(err))
	}

	sessions := service.NewSessionManager(24 * time.Hour)
	homeHandler := handlers.NewHomeHandler(repo, sessions, zl)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Home Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger(zl))

	// ============================================================
	// Routes
	// ============================================================

	health.Register(app, map[string]health.Check{
		"db": db.PingContext,
	})
	homeHandler.Register(app)

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
	zl.Info("starting home service", zap.String("addr", addr), zap.String("env", cfg.Environment))

	if err := app.Listen(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}
