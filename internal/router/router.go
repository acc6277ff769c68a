// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/squadup/event-reporting/internal/config"
	"github.com/squadup/event-reporting/internal/handler"
	"github.com/squadup/event-reporting/internal/middleware"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	SQL          *handler.SQLHandler
	Transactions *handler.TransactionHandler
	Reports      *handler.ReportHandler
	Seats        *handler.SeatHandler
	Send         *handler.SendHandler
	Recipients   *handler.RecipientHandler
	Schedules    *handler.ScheduleHandler
}

// Register mounts all routes. The rate limiter guards the warehouse and
// gateway facing endpoints; the response cache covers the cheap read-only
// listings; the run webhook sits behind the shared-secret token check.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.Use(echomw.Recover())

	e.GET("/healthz", handler.Health)

	limited := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	cached := middleware.ResponseCache(config.LoadCacheConfig(), rdb)

	v1 := e.Group("/v1")

	v1.POST("/sql", h.SQL.Execute, limited)
	v1.GET("/sql/ping", h.SQL.Ping)

	v1.POST("/transactions", h.Transactions.Search, limited)

	v1.POST("/reports/events", h.Reports.EventList, cached)
	v1.POST("/reports/send", h.Send.Send)

	v1.POST("/seats/search", h.Seats.Search)

	v1.GET("/recipients", h.Recipients.List, cached)
	v1.POST("/recipients", h.Recipients.Create)
	v1.PUT("/recipients", h.Recipients.Update)
	v1.DELETE("/recipients", h.Recipients.Delete)

	v1.GET("/schedules", h.Schedules.List, cached)
	v1.PUT("/schedules", h.Schedules.Update)
	v1.GET("/schedules/recipients", h.Schedules.Recipients)
	v1.POST("/schedules/recipients", h.Schedules.AddRecipient)
	v1.DELETE("/schedules/recipients", h.Schedules.RemoveRecipient)
	v1.POST("/schedules/sync", h.Schedules.Sync)
	v1.POST("/schedules/trigger", h.Schedules.Trigger)

	v1.POST("/schedules/run", h.Schedules.Run, middleware.WebhookAuth(cfg.WebhookSecret))
}
