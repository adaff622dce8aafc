package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/platefeed/api-go/cache"
	"github.com/platefeed/api-go/config"
	"github.com/platefeed/api-go/logger"
	"github.com/platefeed/api-go/middleware"
	"github.com/platefeed/api-go/routes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// A missing .env is fine in containers; the environment is already set.
	if err := godotenv.Load(); err != nil {
		logger.Debug(".env file not loaded", "err", err)
	}

	logger.Init()
	appCfg := config.LoadAppConfig()

	db := config.InitDB()

	redisCache := cache.NewRedisCache(appCfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		logger.Warn("redis unavailable, like counters fall back to the database", "err", err)
	}

	middleware.InitPrometheus()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.SetupRoutes(r, db, appCfg, redisCache)

	logger.Info("starting server", "port", appCfg.Port)
	if err := r.Run(":" + appCfg.Port); err != nil {
		logger.Error("server exited", "err", err)
	}
}
