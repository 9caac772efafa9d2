package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/File-Sharing-BondBridg/files-manager/internal/configuration"
	"github.com/File-Sharing-BondBridg/files-manager/internal/logger"
	"github.com/File-Sharing-BondBridg/files-manager/internal/nats"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/File-Sharing-BondBridg/files-manager/internal/storage"
	"github.com/File-Sharing-BondBridg/files-manager/internal/worker"
	"github.com/File-Sharing-BondBridg/files-manager/uploads/previews"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := configuration.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("[WORKER] stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *configuration.Config, log *slog.Logger) error {
	repo, err := storage.Open(ctx, cfg.Metadata, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			log.Warn("[DB] close failed", "error", err)
		}
	}()

	blobs, err := services.OpenBlobStore(ctx, cfg.Blob, log)
	if err != nil {
		return err
	}

	client, err := nats.Connect(cfg.NATS.URL, "files-manager-worker", log)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.EnsureStream(cfg.NATS.Stream, []string{cfg.NATS.Subject}); err != nil {
		return err
	}

	processor := worker.NewProcessor(repo, blobs, previews.Thumbnail, log)
	subs, err := client.SubscribeAll(ctx, nats.Routes(cfg.NATS, processor.Handle), nats.ConsumerSettings{
		MaxDeliver: cfg.NATS.MaxDeliver,
		AckWait:    cfg.NATS.AckWait,
	})
	if err != nil {
		return err
	}

	var metricsSrv *http.Server
	if cfg.Worker.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("[WORKER] metrics listening", "port", cfg.Worker.MetricsPort)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("[WORKER] metrics server failed", "error", err)
			}
		}()
	}

	log.Info("[WORKER] waiting for thumbnail jobs", "subject", cfg.NATS.Subject)
	<-ctx.Done()
	log.Info("[WORKER] shutting down")

	for _, sub := range subs {
		if err := sub.Drain(); err != nil {
			log.Warn("[NATS] subscription drain failed", "error", err)
		}
	}
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}
