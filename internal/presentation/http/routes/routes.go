package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/splitroom/splitroom-api/internal/config"
	domainRepo "github.com/splitroom/splitroom-api/internal/domain/repository"
	"github.com/splitroom/splitroom-api/internal/presentation/http/handler"
	"github.com/splitroom/splitroom-api/internal/presentation/http/middleware"
	"github.com/splitroom/splitroom-api/internal/presentation/ws"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Receipt *handler.ReceiptHandler
	Room    *handler.RoomHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Hub             *ws.Hub
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// Change notifications for room subscribers
	router.GET("/ws/rooms/:token", func(c *gin.Context) {
		deps.Hub.Subscribe(c.Writer, c.Request, c.Param("token"))
	})

	api := router.Group("/api")
	{
		rateLimiter := middleware.NewRoomRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		api.Use(rateLimiter.Middleware())

		receipts := api.Group("/receipts")
		{
			receipts.POST("", h.Receipt.Create)
			receipts.GET("", h.Receipt.List)
			receipts.GET("/:id/items", h.Receipt.GetItems)
			receipts.PUT("/:id/items", h.Receipt.ReplaceItems)
			receipts.POST("/:id/finalize", h.Receipt.Finalize)

			// Room endpoints: :id is the shareable room token
			receipts.GET("/:id", h.Room.Get)
			receipts.POST("/:id/pay",
				middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}),
				h.Room.Pay)
		}
	}

	return router
}
