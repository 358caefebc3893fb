package api

import (
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/hyceate/moody-sub000/docs"
	gql "github.com/hyceate/moody-sub000/internal/api/graphql"
	"github.com/hyceate/moody-sub000/internal/api/handler"
	"github.com/hyceate/moody-sub000/internal/api/middleware"
	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
	"github.com/hyceate/moody-sub000/internal/pkg/validation"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Log       zerolog.Logger
	JWTSecret string

	Auth   ports.AuthService
	Users  ports.UserService
	Schema graphql.Schema
	Images ports.ImageStore

	// MaxUploadBytes bounds image uploads.
	MaxUploadBytes int64
	// StaticDir, when set, is served under StaticPrefix (local image storage).
	StaticDir    string
	StaticPrefix string

	// Readiness lists the dependencies checked by /health/ready.
	Readiness map[string]handler.PingFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("moody"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	uploadHandler := handler.NewUploadHandler(d.Images, d.Users, d.MaxUploadBytes, d.Log)
	adminHandler := handler.NewAdminHandler(d.Users)
	graphqlHandler := gql.NewHandler(d.Schema, d.Log)
	auth := middleware.Auth(d.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Uploads ---
	uploads := e.Group("/upload", auth, echomiddleware.BodyLimit(bodyLimit(d.MaxUploadBytes)))
	uploads.POST("", uploadHandler.Upload)
	uploads.POST("/avatar", uploadHandler.UploadAvatar)

	// --- Admin ---
	admin := e.Group("/admin", auth, middleware.RBAC(domain.RoleAdmin))
	admin.DELETE("/users/:id", adminHandler.DeleteUser)

	// --- GraphQL (anonymous reads allowed) ---
	gqlGroup := e.Group("/graphql", middleware.OptionalAuth(d.JWTSecret), echomiddleware.BodyLimit("1M"))
	gqlGroup.GET("", graphqlHandler.Serve)
	gqlGroup.POST("", graphqlHandler.Serve)

	if d.StaticDir != "" {
		e.Static(d.StaticPrefix, d.StaticDir)
	}

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Readiness).Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// bodyLimit leaves room for multipart framing around the image itself.
func bodyLimit(maxUpload int64) string {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return strconv.FormatInt((maxUpload+64<<10)>>10, 10) + "K"
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
