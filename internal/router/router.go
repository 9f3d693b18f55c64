package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"bluecarbon/internal/auth"
	"bluecarbon/internal/config"
	"bluecarbon/internal/handler"
	"bluecarbon/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	registryHandler *handler.RegistryHandler,
	photoHandler *handler.PhotoHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendOrigin},
		AllowCredentials: true,
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Public photo fetch by id
	api.GET("/upload/photos/:id", photoHandler.Get)

	authenticated := auth.Middleware(jwtService)

	// Registry: authenticated + restricted to verifying roles
	registry := api.Group("/registry", authenticated)
	registry.GET("", registryHandler.List, auth.RequireRoles(model.RoleGovernment, model.RoleNGO))
	registry.POST("/projects", registryHandler.Submit)

	// Photo routes requiring authentication. The body cap rejects oversized
	// requests before the multipart payload is received and buffered.
	upload := api.Group("/upload", authenticated, middleware.BodyLimit(cfg.UploadBodyLimit()))
	upload.POST("/photos", photoHandler.Upload)
	upload.GET("/photos", photoHandler.List)
	upload.DELETE("/photos/:id", photoHandler.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
