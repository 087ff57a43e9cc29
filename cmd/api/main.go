package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-pos-ws/internal/config"
	"go-pos-ws/internal/handler"
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/database"
	"go-pos-ws/pkg/jwt"
	"go-pos-ws/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.Must(logger.New(cfg.Log.Level, cfg.Log.Development))
	defer appLog.Sync()

	// 2. Setup Database
	db, err := database.Connect(cfg.Database, logger.Named(appLog, "db"))
	if err != nil {
		appLog.Fatal("database connection failed", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		// production deployments run cmd/migrate instead
		if err := db.AutoMigrate(model.All()...); err != nil {
			appLog.Fatal("auto migrate failed", zap.Error(err))
		}
	}

	// 3. Wire layers
	repos := repository.NewRepositories(db)

	wsHub := ws.NewHub(logger.Named(appLog, "ws"))
	go wsHub.Run()

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	barcodes := service.NewBarcodeService(repos, logger.Named(appLog, "barcode"))
	svc := handler.Services{
		Auth:     service.NewAuthService(db, repos, tokens, logger.Named(appLog, "auth")),
		Users:    service.NewUserService(db, repos, logger.Named(appLog, "users")),
		Catalog:  service.NewCatalogService(db, repos, barcodes, wsHub, logger.Named(appLog, "catalog")),
		Barcodes: barcodes,
		Sales:    service.NewSaleService(db, repos, wsHub, logger.Named(appLog, "sales")),
		Reports:  service.NewReportService(repos, cfg.Inventory.LowStockThreshold, logger.Named(appLog, "reports")),
		Audit:    service.NewAuditService(repos),
	}

	// 4. Seed default privileges, roles, and admin user
	if err := svc.Users.SeedDefaults(context.Background(), cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		appLog.Warn("seeding defaults failed", zap.Error(err))
	}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.Server.AppName,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(logger.Named(appLog, "http")))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})
	handler.Register(app, svc, wsHub)

	// 6. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			appLog.Panic("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		appLog.Fatal("server forced to shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	appLog.Info("server exited")
}
