package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/splitroom/splitroom-api/internal/application/service"
	"github.com/splitroom/splitroom-api/internal/config"
	"github.com/splitroom/splitroom-api/internal/infrastructure/database"
	"github.com/splitroom/splitroom-api/internal/infrastructure/repository"
	"github.com/splitroom/splitroom-api/internal/presentation/http/handler"
	"github.com/splitroom/splitroom-api/internal/presentation/http/routes"
	"github.com/splitroom/splitroom-api/internal/presentation/ws"
	"github.com/splitroom/splitroom-api/pkg/ocr"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	receiptRepo := repository.NewReceiptRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Sweep expired idempotency keys in the background
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := idempotencyRepo.DeleteExpired(context.Background()); err != nil {
				log.Printf("Warning: failed to delete expired idempotency keys: %v", err)
			}
		}
	}()

	// Websocket hub for room change notifications
	hub := ws.NewHub()
	go hub.Run()

	// Initialize services
	receiptService := service.NewReceiptService(receiptRepo, ocr.NewNullExtractor(), cfg.App.BaseURL)
	paymentService := service.NewPaymentService(receiptRepo, paymentRepo, hub, cfg.Payment.LockWait)
	roomService := service.NewRoomService(receiptRepo, paymentRepo)

	// Initialize handlers
	receiptHandler := handler.NewReceiptHandler(receiptService, cfg.Storage.Path, cfg.Storage.UploadMaxSize)
	roomHandler := handler.NewRoomHandler(roomService, paymentService)

	// Setup routes
	router := routes.Setup(&routes.Handlers{
		Receipt: receiptHandler,
		Room:    roomHandler,
	}, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Hub:             hub,
	})

	log.Printf("Starting %s on port %s", cfg.App.Name, cfg.App.Port)
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
