// Package contentsync is a multi-platform content dashboard built with Go,
// Echo and templ. Users register the platforms they publish on, see which
// cross-posting opportunities they are missing and have a language model
// rewrite content for another platform, with a review queue in between.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// contentsync handles the handler logic, middleware, and database operations.
package contentsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/contentsync/contentsync/internal/ratelimit"
	"github.com/contentsync/contentsync/repurpose"
)

// ViewFuncs holds the templ components the server renders. Keeping them
// outside the package lets callers own every template.
type ViewFuncs struct {
	Login       func(page AuthPage) templ.Component
	Signup      func(page AuthPage) templ.Component
	Dashboard   func(page DashboardPage) templ.Component
	Platforms   func(page PlatformsPage) templ.Component
	ContentGaps func(page ContentGapsPage) templ.Component
	Repurpose   func(page RepurposePage) templ.Component
	ReviewQueue func(page ReviewQueuePage) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central contentsync application. It wires together the store,
// cache, generator, handlers, middleware, and user-provided templates.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Stats  *StatsCache
	Views  ViewFuncs

	generator    repurpose.Generator
	repurposer   *repurpose.Service
	genLimiter   *ratelimit.Window
	loginLimiter *ratelimit.Window
	metrics      *metrics
	customRoutes []func(*App)
}

// New creates a new App with the given configuration and view functions.
func New(cfg Config, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:  cfg,
		Echo:    echo.New(),
		Views:   views,
		metrics: newMetrics(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the database and registers middleware and routes without
// starting the listener.
func (a *App) Setup(ctx context.Context) error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("contentsync: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("contentsync: init store: %w", err)
	}
	a.Store = store
	a.Stats = NewStatsCache(a.Store, a.Config.StatsCacheTTL)
	// Only failed sign-ins count against the login limit.
	a.loginLimiter = ratelimit.New(5, time.Minute)
	a.genLimiter = ratelimit.New(a.Config.GenerationsPerMin, time.Minute)

	if err := a.setupGenerator(ctx); err != nil {
		return err
	}
	a.repurposer = repurpose.NewService(a.generator, a.genLimiter)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupGenerator(ctx context.Context) error {
	if a.generator != nil {
		return nil
	}
	if a.Config.GeminiAPIKey == "" {
		a.Echo.Logger.Warn("contentsync: GOOGLE_GEMINI_API_KEY not set, content generation disabled")
		a.generator = repurpose.Unconfigured{}
		return nil
	}
	gemini, err := repurpose.NewGeminiGenerator(ctx, a.Config.GeminiAPIKey, a.Config.GeminiModel)
	if err != nil {
		return fmt.Errorf("contentsync: init gemini: %w", err)
	}
	a.generator = repurpose.Retrying(gemini, a.Config.GenerationRetries, a.Config.GenerationRetryBase)
	return nil
}

// Start sets the app up and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(context.Background()); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", handleHealthz)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: a.metrics.registry,
	}))

	// Auth
	e.GET("/login/", a.handleLoginPage)
	e.POST("/login/", a.handleLogin)
	e.GET("/signup/", a.handleSignupPage)
	e.POST("/signup/", a.handleSignup)
	e.POST("/logout/", handleLogout)

	// Pages
	pages := e.Group("", a.requireUser)
	pages.GET("/", a.handleDashboard)
	pages.GET("/platforms/", a.handlePlatforms)
	pages.POST("/platforms/", a.handleAddPlatform)
	pages.POST("/platforms/:id/delete/", a.handleDeletePlatform)
	pages.POST("/platforms/:id/avatar/", a.handleAvatarUpload)
	pages.GET("/content-gaps/", a.handleContentGaps)
	pages.GET("/repurpose/", a.handleRepurposeForm)
	pages.POST("/repurpose/", a.handleRepurpose)
	pages.GET("/review-queue/", a.handleReviewQueue)
	pages.POST("/review-queue/:id/", a.handleReview)

	// JSON API
	e.POST("/api/auth/signup", a.handleAPISignup)
	e.POST("/api/auth/token", a.handleAPIToken)

	api := e.Group("/api", a.requireAPIUser)
	api.POST("/platforms/analyze", a.handleAPIAnalyze)
	api.GET("/platforms", a.handleAPIPlatforms)
	api.POST("/platforms", a.handleAPICreatePlatform)
	api.PUT("/platforms/:id", a.handleAPIUpdatePlatform)
	api.DELETE("/platforms/:id", a.handleAPIDeletePlatform)
	api.GET("/stats", a.handleAPIStats)
	api.GET("/content-gaps", a.handleAPIContentGaps)
	api.POST("/repurpose", a.handleAPIRepurpose)
	api.GET("/repurpose", a.handleAPIListRepurposed)
	api.PATCH("/repurpose/:id", a.handleAPIReview)
	api.GET("/generations", a.handleAPIGenerations)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.genLimiter != nil {
		a.genLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("contentsync: required environment variable %s is not set", key)
	}
	return v
}
