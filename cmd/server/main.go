package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user_manager/internal/config"
	"user_manager/internal/handler"
	"user_manager/internal/limiter"
	"user_manager/internal/middleware"
	"user_manager/internal/repository"
	"user_manager/internal/service"
	"user_manager/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("Failed to load DB config: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load app config: %v", err)
	}

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(dbPool); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.TokenExpiry)
	loginLimiter := limiter.NewMemory(limiter.DefaultMaxAttempts, limiter.DefaultBlockTime)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, jwtUtil, loginLimiter)
	userService := service.NewUserService(userRepo)

	// --- Seed Admin Account ---
	if err := authService.EnsureAdmin(context.Background(), cfg.AdminName, cfg.AdminEmail, cfg.AdminPhone, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService, handler.CookieSettings{
		Name:   cfg.CookieName,
		MaxAge: int(cfg.TokenExpiry.Seconds()),
		Secure: cfg.SecureCookie,
	})
	userHandler := handler.NewUserHandler(userService)

	// --- Setup Gin Router ---
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigin))

	// --- Initialize Middlewares ---
	authMW := middleware.RequireAuth(jwtUtil, cfg.CookieName)
	adminMW := middleware.AdminOnly()
	selfOrAdminMW := middleware.SelfOrAdmin()

	// --- Register Routes ---
	rootGroup := router.Group("")
	authHandler.RegisterAuthRoutes(rootGroup, authMW)
	userHandler.RegisterUserRoutes(rootGroup, authMW, adminMW, selfOrAdminMW)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "DB not reachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
