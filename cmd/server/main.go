package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"binder/internal/app"
	"binder/internal/auth"
	"binder/internal/config"
	"binder/internal/handler"
	"binder/internal/middleware"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"driver", cfg.DBDriver,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Caller authentication: JWKS in production, shared secret for local use
	var verifier auth.Verifier
	switch {
	case cfg.JWKSURL != "":
		verifier, err = auth.NewJWKSVerifier(ctx, cfg.JWKSURL, logger)
	case cfg.AuthHMACSecret != "":
		verifier, err = auth.NewHMACVerifier(cfg.AuthHMACSecret, logger)
	default:
		err = errors.New("set JWKS_URL or AUTH_HMAC_SECRET")
	}
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

	binder, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer binder.Close()

	actionHandler := handler.NewActionHandler(binder.Gateway, logger)
	folderHandler := handler.NewFolderHandler(binder.Gateway, logger)
	healthHandler := handler.NewHealthHandler(binder.Store.Ping, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, actionHandler, folderHandler, healthHandler)
	mux.Handle("GET /metrics", binder.Metrics.Handler())

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → AccessLog → Auth → Routes
	var h http.Handler = mux
	h = middleware.Auth(verifier, logger, "/health", "/metrics")(h)
	h = middleware.AccessLog(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
