package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/epluris/epluris/backend/internal/aggregator"
	"github.com/epluris/epluris/backend/internal/cache"
	"github.com/epluris/epluris/backend/internal/config"
	"github.com/epluris/epluris/backend/internal/logger"
	"github.com/epluris/epluris/backend/internal/providers"
	"github.com/epluris/epluris/backend/internal/registry"
	"github.com/epluris/epluris/backend/internal/secrets"
	"github.com/epluris/epluris/backend/internal/vault"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	store, err := vault.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init vault store", slog.Any("err", err))
		os.Exit(1)
	}

	saveWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic,
		MaxAttempts: 3,
	})
	defer saveWriter.Close()

	secretProvider := secrets.Env{}
	deps := providers.EngineDeps{
		Secrets: secretProvider,
		Timeout: cfg.ProviderTimeout,
	}

	agg := aggregator.New(
		log,
		registry.Default(),
		providers.NewEndpointClient(nil, secretProvider),
		cache.New(cfg.CacheCapacity, cfg.CacheTTL),
		cfg.ProviderTimeout,
		providers.NewGoogle(deps, ""),
		providers.NewBing(deps, ""),
		providers.NewSerper(deps, ""),
	)

	srv := &server{log: log, cfg: cfg, agg: agg, vault: store, saves: saveWriter}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      45 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}
