// Package api wires the HTTP surface of the ticketing system.
//
//	@title						Ticketing System API
//	@version					1.0
//	@description				User lifecycle management for the ticketing system.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/ticketing-system/internal/api/docs"
	"github.com/99minutos/ticketing-system/internal/api/handler"
	"github.com/99minutos/ticketing-system/internal/api/middleware"
	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Log       zerolog.Logger
	JWTSecret string
	Users     ports.UserService
	// Readiness lists the dependencies probed by /health/ready.
	Readiness map[string]handler.Pinger
	// Registerer receives the HTTP request metrics and Gatherer backs
	// /metrics. Both default to a fresh private registry when Registerer is nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	registerer, gatherer := deps.Registerer, deps.Gatherer
	if registerer == nil {
		reg := prometheus.NewRegistry()
		registerer, gatherer = reg, reg
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "ticketing",
		Registerer: registerer,
	}))

	// --- Probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- User lifecycle ---
	users := handler.NewUserHandler(deps.Users)
	adminOnly := middleware.RBAC(domain.RoleAdminDescription)
	managerOrAdmin := middleware.RBAC(domain.RoleManagerDescription, domain.RoleAdminDescription)

	auth := middleware.Auth(deps.JWTSecret)

	g := e.Group("/api/v1/user", auth)
	g.GET("", users.List, managerOrAdmin)
	g.GET("/role/:role", users.ListByRole, managerOrAdmin)
	g.GET("/:username", users.Get, adminOnly)
	g.POST("", users.Create, adminOnly)
	g.PUT("", users.Update, adminOnly)
	g.DELETE("/:username", users.Delete, adminOnly)

	// Admin listings live outside /api/v1/user so no username can shadow them.
	admin := e.Group("/api/v1/admin/users", auth, adminOnly)
	admin.GET("/deleted", users.ListDeleted)
	admin.GET("/identity-failures", users.ListMirrorFailures)

	return e
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
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
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
