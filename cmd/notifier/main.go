// Command notifier drains the receipt queue and POSTs each saved receipt
// to the configured webhook URL.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"walletstore/config"
	"walletstore/internal/adapter/storage"
	"walletstore/internal/service"
	"walletstore/pkg/logger"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load(os.Getenv("WS_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if cfg.Notify.URL == "" {
		log.Fatal().Msg("notify.url is not set")
	}
	if cfg.Notify.Secret == "" {
		log.Warn().Msg("notify.secret is empty, webhook signatures use an empty key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer backend.Close()

	walletSvc := service.NewWalletService(
		service.StaticStore(backend.Store),
		nil,
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

	notifier := service.NewWebhookNotifier(
		backend.Source,
		walletSvc,
		service.NewHMACSignatureService(),
		&http.Client{Timeout: cfg.Notify.RequestTimeout},
		service.WebhookOptions{
			URL:         cfg.Notify.URL,
			Secret:      cfg.Notify.Secret,
			PollTimeout: cfg.Notify.PollTimeout,
		},
		logger.Component(log, "notifier"),
	)

	log.Info().Str("queue", cfg.Store.Queue).Msg("Starting receipt notifier")
	if err := notifier.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Notifier stopped with error")
	}
}
