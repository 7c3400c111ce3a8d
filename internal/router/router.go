package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/showtix/salesledger/internal/config"
	"github.com/showtix/salesledger/internal/handler"
	"github.com/showtix/salesledger/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring probe this to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotating refresh: the presented refresh token is revoked and replaced.
	g.POST("/refresh", a.Refresh)
	// Non-rotating refresh for unattended scraper agents.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT middleware; the handler accepts either a
	// bearer token (revoke all sessions) or a refresh_token body (revoke one).
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("SCRAPER", "OPERATOR"))
	auth.GET("/me", a.Me)
}

// RegisterSales wires the reconciliation API: snapshot ingestion for
// scraper agents, registry management for operators and ledger reads for
// both.  Ingestion is rate limited per caller; the read endpoints sit
// behind the Redis response cache so repeated dashboard queries do not
// hit MySQL.
func RegisterSales(
	e *echo.Echo,
	snapshots *handler.SnapshotHandler,
	shows *handler.ShowHandler,
	ledger *handler.LedgerHandler,
	jwtSecret string,
	rdb *redis.Client,
) {
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Snapshot ingestion: scraper agents only.
	ingest := e.Group("/v1/snapshots")
	ingest.Use(middleware.JWTAuth(jwtSecret))
	ingest.Use(middleware.RequireRole("SCRAPER", "OPERATOR"))
	ingest.Use(rl)
	ingest.POST("", snapshots.Ingest)
	ingest.POST("/batch", snapshots.IngestBatch)

	// Registry management: operators only.
	ops := e.Group("/v1/shows")
	ops.Use(middleware.JWTAuth(jwtSecret))
	ops.Use(middleware.RequireRole("OPERATOR"))
	ops.POST("", shows.Register)
	ops.GET("", shows.List)
	ops.GET("/:id", shows.Get)
	ops.PATCH("/:id/capacity", shows.RefineCapacity)
	ops.GET("/:id/ledger", ledger.ShowLedger, cache)

	// Cross-show ledger search: any authenticated role, cached.
	search := e.Group("/v1/search")
	search.Use(middleware.JWTAuth(jwtSecret))
	search.Use(middleware.RequireRole("SCRAPER", "OPERATOR"))
	search.GET("/ledger", ledger.Search, cache)
}
