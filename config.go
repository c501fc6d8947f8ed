package contentsync

import (
	"time"

	"github.com/contentsync/contentsync/repurpose"
)

// Config holds all configuration for a ContentSync server.
type Config struct {
	Name string // Dashboard title (default "ContentSync")
	URL  string // Canonical URL (default "http://localhost:3000")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/contentsync.db")
	StaticDir    string // Static assets and uploaded avatars (default "public")

	SessionSecret string // Required: session encryption secret
	JWTSecret     string // API token signing key (defaults to SessionSecret)
	CookieSecure  bool   // Set true for HTTPS
	TokenTTL      time.Duration

	GeminiAPIKey string // Empty disables content generation
	GeminiModel  string // default repurpose.DefaultModel

	StatsCacheTTL       time.Duration // Dashboard stats cache TTL (default 1min)
	GenerationsPerMin   int           // Per-user generation limit (default 10)
	GenerationRetries   uint64        // Extra attempts on transient model errors (default 2)
	GenerationRetryBase time.Duration // First retry delay (default 500ms)
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "ContentSync"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/contentsync.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.JWTSecret == "" {
		c.JWTSecret = c.SessionSecret
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 12 * time.Hour
	}
	if c.GeminiModel == "" {
		c.GeminiModel = repurpose.DefaultModel
	}
	if c.StatsCacheTTL == 0 {
		c.StatsCacheTTL = time.Minute
	}
	if c.GenerationsPerMin == 0 {
		c.GenerationsPerMin = 10
	}
	if c.GenerationRetries == 0 {
		c.GenerationRetries = 2
	}
	if c.GenerationRetryBase == 0 {
		c.GenerationRetryBase = 500 * time.Millisecond
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithGenerator replaces the Gemini generator, e.g. with a stub in tests.
func WithGenerator(g repurpose.Generator) Option {
	return func(a *App) {
		a.generator = g
	}
}
