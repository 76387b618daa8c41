package problems

import (
	"api/middleware"
	"api/services"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all routes related to the problem catalog
// r: the RouterGroup to which the routes are added
func RegisterRoutes(r *gin.RouterGroup, problemService *services.ProblemService) {
	svc = problemService

	problems := r.Group("/problems")
	problems.Use(middleware.AuthMiddleware())
	{
		problems.GET("", GetProblemsByDifficulty)
		problems.POST("/sync", SyncProblems)
	}
}
