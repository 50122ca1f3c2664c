package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walletstore/config"
	httpHandler "walletstore/internal/adapter/http/handler"
	"walletstore/internal/adapter/http/middleware"
	"walletstore/internal/adapter/storage"
	"walletstore/internal/core/ports"
	"walletstore/internal/service"
	"walletstore/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	if config.LoadEnv() {
		fmt.Fprintln(os.Stderr, "loaded .env")
	}

	cfg, err := config.Load(os.Getenv("WS_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Store.Driver).
		Msg("Starting walletstore")

	ctx := context.Background()

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer backend.Close()

	walletSvc := service.NewWalletService(
		service.StaticStore(backend.Store),
		backend.Queue,
		service.WalletOptions{
			Collection:     cfg.Store.Collection,
			DefaultCountry: cfg.Store.DefaultCountry,
			IndexIgnore:    cfg.Store.IndexIgnore,
		},
		logger.Component(log, "wallet"),
	)
	if err := walletSvc.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise wallet service")
	}

	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	var tokenSvc ports.TokenService
	if cfg.JWT.Secret != "" {
		tokenSvc = service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	}

	rateLimitStore := backend.RateLimit
	if !cfg.RateLimit.Enabled {
		rateLimitStore = nil
	}
	rateLimitRules := make(map[string]middleware.RateLimitRule, len(cfg.RateLimit.Rules))
	for group, rule := range cfg.RateLimit.Rules {
		rateLimitRules[group] = middleware.RateLimitRule{Limit: rule.Limit, Window: rule.Window}
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:      walletSvc,
		RateLimitStore: rateLimitStore,
		RateLimitRules: rateLimitRules,
		HealthCheckers: backend.HealthCheckers,
		TokenSvc:       tokenSvc,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
