package main

import (
	"log"
	"time"

	"api/config"
	"api/database"
	_ "api/docs"
	"api/jobs"
	"api/middleware"
	v1 "api/routes/v1"
	"api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title CodeTrade API
// @version 1.0
// @description Gamified AtCoder order-trading API: receive orders, clear problems within the time limit, grow your rating and balance.
// @BasePath /api/v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	config.Load()
	database.InitDB()
	database.InitRedis()
	middleware.UpdateSystemMetrics()

	fetchLogService := services.NewFetchLogService(database.DB)
	problemService := services.NewProblemService(database.DB, fetchLogService, config.Game, config.AtCoderBaseURL)
	orderService := services.NewOrderService(database.DB, problemService, fetchLogService, config.Game, config.AtCoderBaseURL)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	v1.Register(r, orderService, problemService, config.Game)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	poller := jobs.NewOrderPoller(database.DB, orderService, database.REDIS, 30*time.Second)
	poller.Start()
	defer poller.Stop()

	log.Println("Listening on :" + config.ServerPort)
	if err := r.Run(":" + config.ServerPort); err != nil {
		log.Fatal("server exited: ", err)
	}
}
