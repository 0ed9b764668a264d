package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/middleware"
	"github.com/graphstudio/studio/internal/security"
	"github.com/graphstudio/studio/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log       *logrus.Logger
	Hub       *ws.Hub
	Sessions  SessionService
	Databases DatabaseService
	TypeDB    ServerChecker
	History   HistoryService
	// HistoryDB is nil when query history is disabled.
	HistoryDB   HistoryDB
	Guard       *security.BruteForceGuard
	APIKey      string
	CORSOrigins []string
	Version     string
}

// Router-level limits.
const (
	maxBodySize = 1 << 20 // 1 MB, queries are capped well below this
	rateLimit   = 50      // requests per second per IP
	rateBurst   = 100     // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Location", middleware.RequestIDHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst, "/api/v1/health", "/api/v1/ready").Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.TypeDB, deps.HistoryDB, deps.Sessions, log, deps.Version)
	databases := NewDatabaseHandler(deps.Databases, log)
	queries := NewQueryHandler(deps.Sessions, log)
	history := NewHistoryHandler(deps.History, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// All other API routes require the static key when one is configured.
	guard := deps.Guard
	if guard == nil {
		guard = security.NewBruteForceGuard(ctx, log)
	}
	api.Use(middleware.StaticKeyAuth(deps.APIKey, guard, log))

	// Databases.
	api.GET("/databases", databases.List)
	api.POST("/databases", databases.Create)
	api.DELETE("/databases/:name", databases.Delete)

	// Query sessions.
	api.POST("/queries", queries.Start)
	api.GET("/queries", queries.List)
	api.GET("/queries/:id", queries.Get)
	api.GET("/queries/:id/graph", queries.Graph)
	api.DELETE("/queries/:id", queries.Stop)

	// Query history.
	api.GET("/history", history.List)
	api.DELETE("/history", history.Purge)

	// WebSocket frame stream.
	api.GET("/queries/:id/ws", wsHandler(ctx, log, deps.Hub, deps.Sessions, deps.CORSOrigins))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
