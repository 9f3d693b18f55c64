package main

import (
	"log"
	"net/http"

	_ "bluecarbon/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"bluecarbon/internal/auth"
	"bluecarbon/internal/cache"
	"bluecarbon/internal/config"
	"bluecarbon/internal/db"
	"bluecarbon/internal/handler"
	"bluecarbon/internal/model"
	"bluecarbon/internal/repository"
	"bluecarbon/internal/router"
	"bluecarbon/internal/service"
)

// @title Blue Carbon Registry API
// @version 1.0
// @description Blue-carbon and biodiversity credit registry with JWT authentication, role-gated registry access, and owner-scoped photo uploads.
// @host localhost:3001
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Photo{},
		&model.Project{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	photoRepo := repository.NewPhotoRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService)
	photoService := service.NewPhotoService(photoRepo, cacheClient, service.UploadLimits{
		MaxFiles:     cfg.UploadMaxFiles,
		MaxFileBytes: cfg.UploadMaxFileBytes,
	})
	registryService := service.NewRegistryService(projectRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	photoHandler := handler.NewPhotoHandler(photoService)
	registryHandler := handler.NewRegistryHandler(registryService)

	// Register routes
	router.Register(
		e,
		cfg,
		jwtService,
		authHandler,
		registryHandler,
		photoHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
