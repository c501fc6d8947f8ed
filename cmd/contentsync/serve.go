package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contentsync/contentsync"
	"github.com/contentsync/contentsync/platform"
	"github.com/contentsync/contentsync/views"
)

// configFromEnv builds the server configuration from environment variables.
func configFromEnv() contentsync.Config {
	return contentsync.Config{
		Addr:          contentsync.EnvOr("CONTENTSYNC_ADDR", ":3000"),
		DatabasePath:  contentsync.EnvOr("CONTENTSYNC_DB", "data/contentsync.db"),
		StaticDir:     contentsync.EnvOr("STATIC_DIR", "public"),
		SessionSecret: contentsync.MustEnv("SESSION_SECRET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
		GeminiAPIKey:  os.Getenv("GOOGLE_GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
	}
}

func runServe() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := configFromEnv()
	if err := os.MkdirAll(cfg.StaticDir, 0o755); err != nil {
		log.Fatal(err)
	}

	app := contentsync.New(cfg, views.Default())
	if err := app.Setup(ctx); err != nil {
		log.Fatal(err)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- app.Echo.Start(app.Config.Addr)
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Close()
			log.Fatal(err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			app.Echo.Logger.Error(err)
		}
	}
}

// runClassify writes one JSON line per URL.
func runClassify(w io.Writer, urls []string) error {
	enc := json.NewEncoder(w)
	for _, u := range urls {
		if err := enc.Encode(platform.Classify(u)); err != nil {
			return err
		}
	}
	return nil
}
