package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/arenadev/ticket-reservation/internal/config"
    "github.com/arenadev/ticket-reservation/internal/handler"
    "github.com/arenadev/ticket-reservation/internal/middleware"
)

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterEvents registers the event directory: creation, browsing,
// search, summaries and promotions.  GET endpoints sit behind the
// Redis response cache; rdb may be nil, which disables it.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, tth *handler.TicketTypeHandler, sh *handler.SeatHandler, rdb *redis.Client) {
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	g := e.Group("/api/events")
	g.POST("", h.Create)
	g.GET("", h.List, cache)
	// static paths before the :id wildcard
	g.GET("/search", h.Search, cache)
	g.GET("/promotions", h.Promotions, cache)
	g.GET("/:id", h.Get, cache)
	g.GET("/:id/summary", h.Summary)
	g.GET("/:id/ticket-types", tth.ListByEvent, cache)

	t := e.Group("/api/ticket-types")
	t.GET("/:id", tth.Get, cache)
	t.POST("/:id/seats", sh.CreateBulk)
}

// RegisterReservations registers the reservation lifecycle endpoints
// behind the token-bucket rate limiter.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, rdb *redis.Client) {
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group("/api/reservations", limit)
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/active", h.ListActive)
	g.GET("/events/:eventId/seats/:ticketTypeId", h.AvailableSeats)
	g.DELETE("/:id", h.Cancel)
}
