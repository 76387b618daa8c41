package v1

import (
	"api/config"
	"api/handlers/orders"
	"api/handlers/problems"
	"api/handlers/users"
	"api/middleware"
	"api/services"

	"github.com/gin-gonic/gin"
)

// Register the endpoints for the v1 API
func Register(r *gin.Engine, orderService *services.OrderService, problemService *services.ProblemService, cfg *config.GameConfig) {
	v1 := r.Group("/api/v1")

	// Add metrics middleware to all routes
	v1.Use(middleware.MetricsMiddleware())

	rateLimiter := middleware.NewRateLimiter(10000, 1500)
	v1.Use(middleware.RateLimiterMiddleware(rateLimiter))

	RegisterPingRoutes(v1)
	orders.RegisterRoutes(v1, orderService, cfg)
	problems.RegisterRoutes(v1, problemService)
	users.RegisterRoutes(v1, orderService, cfg)

	// Register metrics endpoint
	RegisterMetricsRoutes(v1)
}
