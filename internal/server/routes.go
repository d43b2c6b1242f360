package server

import (
	"github.com/labstack/echo/v4"

	"example.com/onestop-outings/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	outingHandler *handlers.OutingHandler,
	statsHandler *handlers.StatsHandler,
	notificationHandler *handlers.NotificationHandler,
	metricsHandler echo.HandlerFunc,
	aiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/metrics", metricsHandler)

	// Те же маршруты доступны под /api для serverless-деплоя.
	for _, group := range []*echo.Group{e.Group(""), e.Group("/api")} {
		group.GET("", outingHandler.Root)
		group.GET("/", outingHandler.Root)
		group.GET("/health", handlers.Health)
		group.GET("/stats", statsHandler.Overview)
		group.GET("/sessions/:outingId/events", notificationHandler.Stream)

		group.POST("/plan", outingHandler.Plan, aiRateLimiter)
		group.POST("/regenerate-event", outingHandler.RegenerateEvent, aiRateLimiter)
	}
}
