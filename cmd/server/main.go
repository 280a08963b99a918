package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/retouch-app/retouch/edit/application"
	"github.com/retouch-app/retouch/edit/domain"
	"github.com/retouch-app/retouch/edit/persistence"
	"github.com/retouch-app/retouch/internal/config"
	"github.com/retouch-app/retouch/internal/rest"
	"github.com/retouch-app/retouch/shared/checkout"
	"github.com/retouch-app/retouch/shared/gemini"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to open record store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close record store")
		}
	}()

	editor, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build image editor client")
	}

	payments, err := checkout.NewClient(cfg.StripeSecretKey, cfg.StripePriceID, cfg.PublicBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build checkout client")
	}

	edits := application.NewEditService(editor, store)
	downloads := application.NewDownloadService(store, cfg.Retention)

	api := rest.NewApi(edits, downloads, payments)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: api.Router(),
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("driver", cfg.StorageDriver).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}

// openStore selects the record store strategy once, from configuration.
func openStore(cfg *config.Config) (domain.RecordStore, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return persistence.NewMemoryStore(cfg.Retention), nil
	case config.DriverLocal:
		return persistence.NewLocalStore(cfg.DataDir, cfg.Retention)
	case config.DriverBlob, config.DriverBlobSigned:
		return persistence.NewBlobStore(persistence.BlobConfig{
			Endpoint:  cfg.BlobEndpoint,
			Bucket:    cfg.BlobBucket,
			AccessKey: cfg.BlobAccessKey,
			SecretKey: cfg.BlobSecretKey,
			UseSSL:    cfg.BlobUseSSL,
			Signed:    cfg.StorageDriver == config.DriverBlobSigned,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
