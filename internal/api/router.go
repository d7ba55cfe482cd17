package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/teamc/account-console/docs"
	"github.com/teamc/account-console/internal/api/handler"
	"github.com/teamc/account-console/internal/api/middleware"
	"github.com/teamc/account-console/internal/core/service"
)

// Deps are the wired services the console routes dispatch to.
type Deps struct {
	Session *service.SessionService
	Guard   *service.Guard
	Roster  *service.Roster
	Profile *service.ProfileService
	// Ready lists the dependencies checked by /health/ready.
	Ready map[string]handler.Pinger
	// Registerer receives the HTTP request metrics. Defaults to the global
	// Prometheus registerer.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "account_console",
		Registerer: d.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Session)
	viewHandler := handler.NewViewHandler(d.Session, d.Roster, d.Profile)
	rosterHandler := handler.NewRosterHandler(d.Session, d.Roster)
	profileHandler := handler.NewProfileHandler(d.Profile)
	requireSession := middleware.RequireSession(d.Session)

	// --- Session routes ---
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.POST("/signup", authHandler.Signup)
	e.POST("/logout", authHandler.Logout)

	// --- Dashboards (guarded on every navigation) ---
	e.GET("/views/home", authHandler.Home)
	e.GET("/views/:view", viewHandler.Show, middleware.GuardView(d.Guard, d.Session))

	// --- Roster ---
	roster := e.Group("/roster", requireSession)
	roster.POST("/refresh", rosterHandler.Refresh)
	roster.POST("/workers", rosterHandler.CreateWorker)
	roster.DELETE("/workers/draft", rosterHandler.DiscardDraft)
	roster.DELETE("/:id", rosterHandler.Delete)

	// --- Self editors ---
	profile := e.Group("/profile", requireSession)
	profile.GET("", profileHandler.Show)
	profile.DELETE("", profileHandler.DeleteSelf)
	profile.DELETE("/description", profileHandler.ClearDescription)
	profile.POST("/:field/begin", profileHandler.Begin)
	profile.POST("/:field/draft", profileHandler.Draft)
	profile.POST("/:field/submit", profileHandler.Submit)
	profile.POST("/:field/cancel", profileHandler.Cancel)

	// --- Health checks, metrics and docs (no session required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Ready)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
