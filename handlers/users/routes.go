package users

import (
	"api/config"
	"api/middleware"
	"api/services"

	"github.com/gin-gonic/gin"
)

var (
	svc        *services.OrderService
	gameConfig *config.GameConfig
)

// RegisterRoutes registers all routes related to the user profile
// r: the RouterGroup to which the routes are added
func RegisterRoutes(r *gin.RouterGroup, orderService *services.OrderService, cfg *config.GameConfig) {
	svc = orderService
	gameConfig = cfg

	user := r.Group("/user")
	user.Use(middleware.AuthMiddleware())
	{
		user.GET("/dashboard", GetDashboard)
	}
}
