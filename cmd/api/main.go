package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mentorbridge/mentorbridge-api/config"
	"github.com/mentorbridge/mentorbridge-api/internal/cache"
	"github.com/mentorbridge/mentorbridge-api/internal/handlers"
	"github.com/mentorbridge/mentorbridge-api/internal/middleware"
	"github.com/mentorbridge/mentorbridge-api/internal/models"
	"github.com/mentorbridge/mentorbridge-api/internal/repository"
	"github.com/mentorbridge/mentorbridge-api/internal/services"
	"github.com/mentorbridge/mentorbridge-api/pkg/db"
	"github.com/mentorbridge/mentorbridge-api/pkg/httpclient"
	"github.com/mentorbridge/mentorbridge-api/pkg/jwt"
	"github.com/mentorbridge/mentorbridge-api/pkg/logger"
	"github.com/mentorbridge/mentorbridge-api/pkg/metrics"
	"github.com/mentorbridge/mentorbridge-api/pkg/profiling"
	"github.com/mentorbridge/mentorbridge-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerSessionRoutes registers the session lifecycle routes (protected by
// the user session cookie)
func registerSessionRoutes(
	group *gin.RouterGroup,
	sessionRateLimiter *middleware.RateLimiter,
	sessionHandler *handlers.SessionHandler,
) {
	group.POST("/sessions", sessionRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), sessionHandler.CreateSession)
	group.GET("/sessions", sessionHandler.GetSessions)
	group.GET("/sessions/:id", sessionHandler.GetSessionByID)

	group.POST("/sessions/:id/accept", middleware.RequireRole(models.RoleMentor), sessionHandler.AcceptSession)
	group.POST("/sessions/:id/reject", middleware.RequireRole(models.RoleMentor), sessionHandler.RejectSession)
	group.POST("/sessions/:id/schedule", middleware.RequireRole(models.RoleMentor), sessionHandler.ScheduleSession)
	group.POST("/sessions/:id/complete", middleware.RequireRole(models.RoleMentor), sessionHandler.CompleteSession)
	group.POST("/sessions/:id/cancel", sessionHandler.CancelSession)
	group.POST("/sessions/:id/feedback", middleware.BodySizeLimitMiddleware(100*1024), sessionHandler.SubmitFeedback)
}

// registerRoadmapAdminRoutes registers the admin-only roadmap step management routes
func registerRoadmapAdminRoutes(
	group *gin.RouterGroup,
	adminRateLimiter *middleware.RateLimiter,
	roadmapHandler *handlers.RoadmapHandler,
) {
	admin := group.Group("/admin/roadmaps", middleware.RequireRole(models.RoleAdmin))
	admin.POST("/steps", adminRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(1*1024*1024), roadmapHandler.CreateStep)
	admin.PUT("/steps/:stepId", adminRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(1*1024*1024), roadmapHandler.UpdateStep)
	admin.DELETE("/:year/:language/steps/:stepId", adminRateLimiter.Middleware(), roadmapHandler.DeleteStep)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting MentorBridge API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.AlloyEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling (optional)
	if cfg.Profiling.Enabled {
		stopProfiler, profErr := profiling.InitProfiler(
			cfg.Profiling,
			cfg.Observability.ServiceName,
			cfg.Observability.ServiceNamespace,
			cfg.Observability.ServiceVersion,
			cfg.Observability.ServiceInstanceID,
			cfg.Server.AppEnv,
		)
		if profErr != nil {
			logger.Fatal("Failed to initialize profiler", zap.Error(profErr))
		}
		defer stopProfiler()
	}

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize PostgreSQL connection pool
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	// NOTE: Database migrations are run separately via the migrate command

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(pool)
	mentorRepo := repository.NewMentorRepository(pool)
	roadmapRepo := repository.NewRoadmapRepository(pool)

	// Roadmap cache, warmed synchronously before the container is marked healthy
	roadmapCache := cache.NewRoadmapCache(roadmapRepo.GetByYearLanguage, cfg.Cache.RoadmapTTLSeconds)
	cacheReadyFunc := roadmapCache.IsReady
	if cfg.Cache.DisableRoadmapCache {
		logger.Warn("Roadmap cache is DISABLED - reading from database on every request (experimental feature)")
		cacheReadyFunc = func() bool { return true }
	} else {
		if err := roadmapCache.Initialize(context.Background()); err != nil {
			logger.Fatal("Failed to initialize roadmap cache", zap.Error(err))
		}
	}

	// Initialize HTTP client for trigger calls
	httpClient := httpclient.NewStandardClient()

	// Initialize services
	sessionService := services.NewSessionService(sessionRepo, mentorRepo, cfg, httpClient)
	mentorService := services.NewMentorService(mentorRepo)
	roadmapService := services.NewRoadmapService(roadmapRepo, roadmapCache)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionService)
	mentorHandler := handlers.NewMentorHandler(mentorService)
	roadmapHandler := handlers.NewRoadmapHandler(roadmapService)
	healthHandler := handlers.NewHealthHandler(cacheReadyFunc)

	// JWT token manager for session cookies
	tokenManager := jwt.NewTokenManager(
		cfg.UserSession.JWTSecret,
		cfg.UserSession.JWTIssuer,
		cfg.UserSession.SessionTTLHours,
	)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - SECURITY: Only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	// Allow localhost in development
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "x-internal-api-auth-token", "X-CSRF-Token", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for session cookies
		MaxAge:           12 * time.Hour,
	}))

	// SECURITY: Rate limiters to prevent abuse and DoS attacks
	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	sessionRateLimiter := middleware.NewRateLimiter(5, 10)    // 5 req/sec, burst of 10 (prevent request spam)
	adminRateLimiter := middleware.NewRateLimiter(10, 20)     // 10 req/sec, burst of 20

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Public API v1 routes
	v1 := router.Group("/api/v1")
	v1.GET("/mentors/:id", generalRateLimiter.Middleware(), mentorHandler.GetMentorByID)
	v1.GET("/roadmaps/:year/:language", generalRateLimiter.Middleware(), roadmapHandler.GetRoadmap)

	// Internal server-to-server routes, guarded by the static API token
	v1.GET("/internal/mentors/:id", generalRateLimiter.Middleware(), middleware.InternalAPIAuthMiddleware(cfg.Auth.InternalAPIToken), mentorHandler.GetInternalMentorByID)

	// Authenticated routes
	authed := router.Group("/api/v1")
	authed.Use(middleware.UserSessionMiddleware(tokenManager, cfg.UserSession.CookieDomain, cfg.UserSession.CookieSecure))
	registerSessionRoutes(authed, sessionRateLimiter, sessionHandler)
	registerRoadmapAdminRoutes(authed, adminRateLimiter, roadmapHandler)

	// Create HTTP server
	// SECURITY: Bind to all interfaces for Docker Compose networking
	// Network isolation is enforced by Docker Compose (backend has no public ports)
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // SECURITY: 1 MB max header size
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
