package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"roomrental/docs"
	"roomrental/internal/auth"
	"roomrental/internal/cache"
	"roomrental/internal/config"
	"roomrental/internal/db"
	"roomrental/internal/events"
	"roomrental/internal/handler"
	"roomrental/internal/repository"
	"roomrental/internal/router"
	"roomrental/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Room Rental Marketplace API
// @version 1.0
// @description Room listings, favorites, bookings and role dashboards with JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			log.Printf("Warning: failed to drop tables: %v", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("%v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.LocalCacheSize)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Printf("redis unavailable, continuing with local cache only: %v", err)
	}

	var publisher events.Publisher = events.LogPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsQueue)
		if err != nil {
			log.Fatalf("amqp init: %v", err)
		}
		publisher = amqpPublisher
	}
	dispatcher := events.NewDispatcher(publisher)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	roomRepo := repository.NewRoomRepository(gormDB)
	bookingRepo := repository.NewBookingRepository(gormDB)
	favoriteRepo := repository.NewFavoriteRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	limiter := auth.NewLoginLimiter(cacheClient, cfg.LoginMaxAttempts, cfg.LoginWindow)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, limiter)
	userService := service.NewUserService(userRepo, cacheClient)
	roomService := service.NewRoomService(roomRepo, cacheClient)
	favoriteService := service.NewFavoriteService(favoriteRepo, roomRepo)
	bookingService := service.NewBookingService(bookingRepo, roomRepo, favoriteService, userService, dispatcher, cfg.SupportEmail)
	dashboardService := service.NewDashboardService(bookingService, favoriteService, roomService, userRepo, roomRepo)
	documentService := service.NewDocumentService(bookingService, roomService, userService, cfg.SupportEmail)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, jwtService, authService, userService, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Rooms:     handler.NewRoomHandler(roomService, bookingService),
		Bookings:  handler.NewBookingHandler(bookingService, documentService),
		Favorites: handler.NewFavoriteHandler(favoriteService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	})

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
	}
	log.Printf("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		if err := e.StartServer(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if err := dispatcher.Close(ctx); err != nil {
		log.Printf("event dispatcher shutdown: %v", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
