package http

import (
	"time"

	"ibb-guide/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Routes struct {
	Health     *Handler
	Approvals  *ApprovalHandler
	Changes    *ChangeHandler
	Requests   *RequestHandler
	Moderation *ModerationHandler
}

// NewServer builds the echo instance with every route registered. Mutating
// routes go through the redis idempotency middleware.
func NewServer(r Routes, rdb *redis.Client, idemTTL time.Duration, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	e.GET("/health", r.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1", middleware.IdempotencyMiddleware(rdb, idemTTL, log))

	api.GET("/approvals/counts", r.Approvals.Counts)
	api.GET("/partners", r.Approvals.ListPartners)
	api.GET("/listings", r.Approvals.ListListings)
	api.POST("/approvals/:kind/:id/:action", r.Approvals.Decide)

	api.POST("/listings/:id/changes", r.Changes.RequestChange)
	api.GET("/listings/:id/changes", r.Changes.ListForListing)
	api.GET("/changes", r.Changes.Queue)

	api.POST("/requests", r.Requests.Submit)
	api.GET("/requests", r.Requests.List)
	api.GET("/requests/:id", r.Requests.Get)
	api.GET("/requests/:id/history", r.Requests.History)
	api.GET("/requests/:id/decisions", r.Requests.Decisions)
	api.POST("/requests/:id/:action", r.Requests.Decide)
	api.GET("/versions/:kind/:id", r.Requests.Versions)

	api.GET("/moderation/words", r.Moderation.ListWords)
	api.POST("/moderation/words", r.Moderation.AddWord)
	api.DELETE("/moderation/words/:id", r.Moderation.RemoveWord)
	api.POST("/moderation/check", r.Moderation.Check)

	return e
}
