package orders

import (
	"context"
	"log"

	"api/config"
	"api/database"
	"api/middleware"
	"api/models"
	"api/services"

	"github.com/gin-gonic/gin"
)

var (
	svc        *services.OrderService
	gameConfig *config.GameConfig
)

// dashboardCacheKey must match the one used by the users handlers; order
// transitions invalidate the cached dashboard.
const dashboardCacheKey = "user_dashboard:"

func invalidateDashboard(user *models.User) {
	if err := database.REDIS.Del(context.Background(), dashboardCacheKey+user.ID).Err(); err != nil {
		// Stale for at most the cache TTL; just log it.
		log.Printf("Failed to invalidate dashboard cache: %v", err)
	}
}

// RegisterRoutes registers all routes related to orders
// r: the RouterGroup to which the routes are added
func RegisterRoutes(r *gin.RouterGroup, orderService *services.OrderService, cfg *config.GameConfig) {
	svc = orderService
	gameConfig = cfg

	// Polling hits the judge's API; keep a tighter bucket on it.
	pollRateLimiter := middleware.NewRateLimiter(60, 30)

	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	{
		orders.GET("", GetOrders)
		orders.POST("", CreateOrder)
		orders.GET("/export", ExportOrders)
		orders.GET("/ws", OrderFeed)
		orders.GET("/:orderID", GetOrder)
		orders.POST("/:orderID/receive", ReceiveOrder)
		orders.POST("/:orderID/poll", middleware.RateLimiterMiddleware(pollRateLimiter), PollOrder)
		orders.POST("/:orderID/force-fail", ForceFailOrder)
	}
}
