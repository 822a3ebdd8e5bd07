// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/contact-book/internal/handler"
	"github.com/iliyamo/contact-book/internal/middleware"
	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/response"
)

// Deps is everything the routes need. DB and AuthLimiter may be nil.
type Deps struct {
	Service     string
	Logger      *zap.Logger
	JWTSecret   string
	FrontendURL string
	UploadDir   string
	BodyLimit   string

	DB          handler.Pinger
	AuthLimiter echo.MiddlewareFunc

	Auth     *handler.AuthHandler
	Contacts *handler.ContactHandler
	Admin    *handler.AdminHandler
}

// Register installs the global middleware chain and every route.
func Register(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = response.ErrorHandler(d.Logger)

	// the logger sits outside the span so Tracing sees handler errors
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(middleware.Tracing(d.Service))
	e.Use(middleware.Recover(d.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{d.FrontendURL},
		AllowCredentials: true,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "X-RateLimit-Remaining", "Retry-After"},
	}))
	limit := d.BodyLimit
	if limit == "" {
		limit = "6M"
	}
	e.Use(echomw.BodyLimit(limit))

	e.GET("/healthz", handler.Health(d.DB))
	if d.UploadDir != "" {
		e.Static("/uploads", d.UploadDir)
	}

	auth := e.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(d.AuthLimiter)
	}
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)

	jwt := middleware.JWTAuth(d.JWTSecret)

	contacts := e.Group("/contacts", jwt)
	contacts.GET("", d.Contacts.List)
	contacts.POST("", d.Contacts.Create)
	// registered before /:id so the static segment wins
	contacts.GET("/export", d.Contacts.Export)
	contacts.GET("/:id", d.Contacts.Get)
	contacts.PUT("/:id", d.Contacts.Update)
	contacts.DELETE("/:id", d.Contacts.Delete)

	admin := e.Group("/admin", jwt, middleware.RequireRole(model.RoleAdmin))
	admin.GET("/stats", d.Admin.Stats)
	admin.GET("/users", d.Admin.ListUsers)
	admin.GET("/users/:id", d.Admin.GetUser)
	admin.PUT("/users/:id/role", d.Admin.UpdateUserRole)
	admin.DELETE("/users/:id", d.Admin.DeleteUser)
	admin.GET("/contacts", d.Admin.ListContacts)
	admin.GET("/contacts/:id", d.Admin.GetContact)
	admin.DELETE("/contacts/:id", d.Admin.DeleteContact)
}
