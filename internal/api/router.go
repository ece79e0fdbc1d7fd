package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"

	"github.com/stagepass/presence-api/internal/api/handler"
)

// Deps bundles everything the router needs wired in.
type Deps struct {
	Sessions  *handler.SessionHandler
	Matches   *handler.MatchHandler
	Donations *handler.DonationHandler
	Health    *handler.HealthHandler
	Readiness *handler.ReadinessHandler
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("presence"))

	// --- Acquisition sessions ---
	e.POST("/v1/sessions", deps.Sessions.Create)
	e.GET("/v1/sessions/:id", deps.Sessions.Get)
	e.POST("/v1/sessions/:id/refetch", deps.Sessions.Refetch)
	e.POST("/v1/sessions/:id/position", deps.Sessions.ReportPosition)
	e.GET("/v1/sessions/:id/matches", deps.Matches.SessionMatches)

	// --- Matching & donations ---
	e.POST("/v1/matches", deps.Matches.Match)
	e.POST("/v1/donations/allocate", deps.Donations.Allocate)

	// --- Operational endpoints ---
	e.GET("/health", deps.Health.Liveness)             // liveness  – is the process alive?
	e.GET("/health/ready", deps.Readiness.Readiness)   // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
