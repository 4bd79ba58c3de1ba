package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/smartfridge-backend/internal/handlers"
)

type RouterConfig struct {
	UploadHandler       *handlers.UploadHandler
	StatusHandler       *handlers.StatusHandler
	NotificationHandler *handlers.NotificationHandler
	ItemHandler         *handlers.ItemHandler
	AllowOrigins        []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Pipeline
		api.POST("/upload", cfg.UploadHandler.Upload)
		api.GET("/fridge-status", cfg.StatusHandler.GetStatus)

		// Notifications
		api.GET("/notifications", cfg.NotificationHandler.List)
		api.POST("/notifications/read/:id", cfg.NotificationHandler.MarkRead)
		api.POST("/notifications/read-all", cfg.NotificationHandler.MarkAllRead)
		api.GET("/notifications/stream", cfg.NotificationHandler.Stream)

		// Manual item lists
		api.GET("/user/:username/items", cfg.ItemHandler.ListItems)
		api.POST("/user/:username/items", cfg.ItemHandler.AddItem)
		api.DELETE("/user/:username/items/:id", cfg.ItemHandler.DeleteItem)
	}

	return router
}
