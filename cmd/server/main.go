package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/appcanvas/builder/internal/application/services"
	"github.com/appcanvas/builder/internal/bootstrap"
	"github.com/appcanvas/builder/internal/infrastructure/database"
	"github.com/appcanvas/builder/internal/interfaces/middleware"
	"github.com/appcanvas/builder/internal/interfaces/rest"
	"github.com/appcanvas/builder/pkg/config"
	"github.com/appcanvas/builder/pkg/logutils"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		logutils.Log.Fatalf("Failed to load configuration: %v", err)
	}
	logutils.SetLevel(cfg.Server.LogLevel)

	// Initialize database connection
	db, err := database.Connect(cfg)
	if err != nil {
		logutils.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logutils.Log.Infof("✅ Database connection established (%s)", db.Driver())

	ctx := context.Background()
	if err := bootstrap.InitializeSchema(ctx, db); err != nil {
		logutils.Log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Initialize service manager
	svcMgr := services.NewServiceManager(cfg, db)
	logutils.Log.Info("🔧 Service manager initialized")

	// Seed the owner account used to sign in to the builder
	if err := bootstrap.InitializeAdmin(ctx, cfg, svcMgr.Users); err != nil {
		logutils.Log.Warnf("⚠️  Warning: Failed to initialize admin account: %v", err)
	}

	router := gin.Default()
	router.Use(middleware.Cors(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestMetrics(svcMgr.Metrics.HTTPRequests, svcMgr.Metrics.HTTPDuration))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"backend": cfg.Persistence.Backend,
		})
	})
	router.GET("/metrics", gin.WrapH(svcMgr.Metrics.Handler()))

	rest.RegisterRoutes(router, svcMgr)

	// Start background workers
	if err := svcMgr.Scheduler.Start(); err != nil {
		logutils.Log.Warnf("⚠️  Scheduler not started: %v", err)
	} else {
		logutils.Log.Infof("⏰ Session cleanup scheduled (%s)", cfg.Auth.SessionCleanup)
	}

	port := cfg.Server.Port
	logutils.Log.Info("═══════════════════════════════════════════════════════════════════════════")
	logutils.Log.Info("🚀 App Builder Backend Started Successfully")
	logutils.Log.Info("═══════════════════════════════════════════════════════════════════════════")
	logutils.Log.Infof("📍 Server:         http://localhost:%s", port)
	logutils.Log.Infof("🔐 Auth API:       http://localhost:%s/api/auth", port)
	logutils.Log.Infof("🧩 Projects API:   http://localhost:%s/api/projects", port)
	logutils.Log.Infof("🔗 Share links:    %s", cfg.ShareURL("<id>"))
	logutils.Log.Infof("📈 Metrics:        http://localhost:%s/metrics", port)
	logutils.Log.Infof("💚 Health check:   http://localhost:%s/health", port)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logutils.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logutils.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svcMgr.Shutdown(shutdownCtx)
	logutils.Log.Info("🛑 Scheduler stopped")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logutils.Log.Errorf("Server forced to shutdown: %v", err)
	}

	logutils.Log.Info("Server exiting")
}
