// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/swiftroute/partner-backend/internal/config"
	"github.com/swiftroute/partner-backend/internal/http/handlers"
	"github.com/swiftroute/partner-backend/internal/http/middleware"
	"github.com/swiftroute/partner-backend/internal/hub"
	"github.com/swiftroute/partner-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// CORS and security headers, health and metrics endpoints, the realtime
// channel, and then mounts the versioned partner API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip (excluding the channel upgrade)
//  7. Metrics
//  8. Rate limiter (per partner/IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, channelHub *hub.Hub, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Response compression; the websocket upgrade must stay uncompressed.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per partner/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByPartnerOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (allow all origins when none are configured)
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false, // must remain false with AllowAllOrigins
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← db/hub/config
	tokens := services.TokenIssuer{Secret: []byte(cfg.Auth.JWTSecret), TTL: cfg.Auth.TokenTTL}
	partnerSvc := &services.PartnerService{
		DB:     db,
		Tokens: tokens,
		OTP:    &services.OTPStore{TTL: cfg.Auth.OTPTTL},
		SMS:    services.LogSMSSender{Log: log.Logger},
		Log:    log.Logger,
	}
	orderSvc := &services.OrderService{DB: db, Pub: channelHub, Log: log.Logger}
	locationSvc := &services.LocationService{DB: db, Pub: channelHub, Log: log.Logger}
	earningsSvc := &services.EarningsService{DB: db}

	h := handlers.New(partnerSvc, orderSvc, locationSvc, earningsSvc, channelHub, hub.Options{
		SendBuffer:      cfg.Channel.SendBuffer,
		MaxMessageBytes: cfg.Channel.MaxMessageBytes,
		PongWait:        cfg.Channel.PongWait,
		PingInterval:    cfg.Channel.PingInterval,
		WriteWait:       cfg.Channel.WriteWait,
	})

	// Realtime channel (binds identity via its own connect message)
	r.GET("/ws", h.Channel)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Auth (unauthenticated)
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/otp/request", h.RequestOTP)
		api.POST("/auth/otp/verify", h.VerifyOTP)
	}

	// Everything below requires a valid bearer token.
	authed := api.Group("", middleware.Auth(tokens.Parse))
	{
		// Profile and presence
		authed.GET("/partner/profile", h.GetProfile)
		authed.PATCH("/partner/profile", h.UpdateProfile)
		authed.PATCH("/partner/status", h.SetStatus)

		// Location
		authed.POST("/partner/location", h.IngestLocation)
		authed.GET("/partner/location/recent", h.RecentLocations)

		// Orders
		authed.GET("/orders/available", h.AvailableOrders)
		authed.GET("/orders/active", h.ActiveOrder)
		authed.GET("/orders/history", h.OrderHistory)
		authed.PATCH("/orders/:id/accept", h.AcceptOrder)
		authed.PATCH("/orders/:id/status", h.UpdateOrderStatus)

		// Earnings
		authed.GET("/earnings/today", h.TodayEarnings)
		authed.GET("/earnings/history", h.EarningsHistory)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
