package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // Matching http.ErrServerClosed
	"net/http"  // HTTP server with graceful shutdown
	"os"        // Process signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM
	"time"      // Shutdown deadline

	"game_store/internal/api"     // HTTP handlers and routes
	"game_store/internal/config"  // Configuration
	"game_store/internal/db"      // Database connection and migration
	"game_store/internal/jobs"    // Background coupon sweep
	"game_store/internal/service" // Business logic
	"game_store/internal/utils"   // Redis-backed token revocation and locks

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

const shutdownTimeout = 10 * time.Second

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database and bring the schema up to date
	conn, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	deps := api.Deps{
		DB:        conn,
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
	}
	var orderOpts []service.OrderOption

	// Redis is optional; without it logout and the checkout lock are disabled
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		deps.Redis = redisClient
		deps.Tokens = utils.NewRevocationList(redisClient)
		orderOpts = append(orderOpts, service.WithLocker(utils.NewRedisLocker(redisClient, "lock:"), cfg.CheckoutLockTTL))
	} else {
		logrus.Warn("REDIS_ADDR not set, logout and the checkout lock disabled; checkout relies on database row locks")
	}

	deps.Services = service.New(conn, orderOpts...)

	// Background jobs
	sched, err := jobs.New(cfg.CouponSweepSchedule, deps.Services.Coupons)
	if err != nil {
		logrus.Fatalf("failed to schedule jobs: %v", err)
	}
	sched.Start()

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.SetupRouter(deps) // Gin router with every route

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	server := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := serveUntil(server, sigint); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}

	sched.Stop() // Waits for a running coupon sweep
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			logrus.WithError(err).Warn("Closing Redis failed")
		}
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logrus.Info("Server stopped")
}

// serveUntil runs srv until stop fires, then stops accepting requests and
// drains in-flight ones for at most shutdownTimeout
func serveUntil(srv *http.Server, stop <-chan os.Signal) error {
	idleConnsClosed := make(chan struct{})
	go func() {
		<-stop
		logrus.Info("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("HTTP server shutdown failed")
		}
		close(idleConnsClosed)
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-idleConnsClosed // Shutdown returns once connections are idle
	return nil
}
