package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/diplomatch/portal/internal/api/docs"
	"github.com/diplomatch/portal/internal/api/handler"
	"github.com/diplomatch/portal/internal/api/middleware"
	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Session ports.SessionService
	Guard   ports.NavigationGuard
	// Navigator must be the one the session reports navigations to.
	Navigator *handler.PendingNavigator
	// Checks are pinged by the readiness probe, keyed by name.
	Checks map[string]ports.Pinger
	Log    zerolog.Logger
	// Registry receives the HTTP request metrics. A fresh registry is used
	// when nil.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal_http",
		Registerer: reg,
	}))

	// --- Pages (guarded) ---
	pages := handler.NewPageHandler(deps.Session)
	for _, route := range domain.Routes {
		e.GET(route.Path, pages.Show(route), middleware.Guard(deps.Guard, route))
	}

	// --- Session actions ---
	sessions := handler.NewSessionHandler(deps.Session, deps.Navigator, deps.Log)
	s := e.Group("/session")
	s.GET("", sessions.Show)
	s.POST("/login", sessions.Login)
	s.POST("/register", sessions.Register)
	s.POST("/logout", sessions.Logout)
	s.POST("/forgot-password", sessions.ForgotPassword)
	s.PUT("/reset-password/:uid/:token", sessions.ResetPassword)
	s.GET("/profile", sessions.Profile)
	s.PUT("/profile", sessions.UpdateProfile)
	s.POST("/team-status/refresh", sessions.RefreshTeamStatus)

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – store and remote API reachable?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
