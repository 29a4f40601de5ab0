package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jengzang/carsharing-backend-go/internal/handler"
	"github.com/jengzang/carsharing-backend-go/internal/metrics"
	"github.com/jengzang/carsharing-backend-go/internal/middleware"
	"github.com/jengzang/carsharing-backend-go/internal/service"
)

// Services 路由依赖
type Services struct {
	Cars    *service.CarService
	Trips   *service.TripService
	Stats   *service.StatsService
	Metrics *metrics.Collector
}

// SetupRouter 设置路由
func SetupRouter(env string, log zerolog.Logger, svc Services) *gin.Engine {
	if env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Logger(log), gin.Recovery())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Carsharing tracker API is running",
		})
	})

	if svc.Metrics != nil {
		r.GET("/metrics", gin.WrapH(svc.Metrics.Handler()))
	}

	carHandler := handler.NewCarHandler(svc.Cars)
	tripHandler := handler.NewTripHandler(svc.Trips)
	statsHandler := handler.NewStatsHandler(svc.Stats)

	// API 路由组
	api := r.Group("/api/v1")
	{
		cars := api.Group("/cars")
		{
			cars.GET("", carHandler.ListCars)
			cars.GET("/:id/states", carHandler.GetStates)
		}

		trips := api.Group("/trips")
		{
			trips.GET("", tripHandler.GetTrips)
			trips.GET("/:id", tripHandler.GetTripByID)
		}

		api.GET("/stats", statsHandler.GetFleetStats)
	}

	return r
}
