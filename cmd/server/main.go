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

	"github.com/File-Sharing-BondBridg/files-manager/cmd/middleware"
	"github.com/File-Sharing-BondBridg/files-manager/internal/api"
	"github.com/File-Sharing-BondBridg/files-manager/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/files-manager/internal/api/handlers/file"
	"github.com/File-Sharing-BondBridg/files-manager/internal/api/handlers/user"
	"github.com/File-Sharing-BondBridg/files-manager/internal/configuration"
	"github.com/File-Sharing-BondBridg/files-manager/internal/logger"
	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/File-Sharing-BondBridg/files-manager/internal/nats"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services/command"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services/query"
	"github.com/File-Sharing-BondBridg/files-manager/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
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
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// unavailableQueue stands in when NATS can't be reached at startup. Uploads
// still succeed; images just get no thumbnails.
type unavailableQueue struct{}

func (unavailableQueue) Enqueue(context.Context, models.ThumbnailJob) error {
	return errors.New("job queue unavailable")
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

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	gate := services.NewAuthGate(services.NewRedisSessionStore(rdb))

	var queue command.JobQueue = unavailableQueue{}
	natsClient, err := nats.Connect(cfg.NATS.URL, "files-manager-api", log)
	if err != nil {
		log.Warn("[NATS] unavailable, thumbnails disabled", "error", err)
	} else {
		defer natsClient.Close()
		if err := natsClient.EnsureStream(cfg.NATS.Stream, []string{cfg.NATS.Subject}); err != nil {
			log.Warn("[NATS] failed to ensure stream", "error", err)
		}
		queue = nats.NewThumbnailQueue(natsClient, cfg.NATS.Subject)
	}

	var scanner services.Scanner
	if cfg.ClamAV.URL != "" {
		clam := services.NewClamdScanner(cfg.ClamAV.URL)
		if err := clam.Ping(ctx); err != nil {
			log.Warn("clamd not reachable, uploads fail until it is", "clamd", cfg.ClamAV.URL, "error", err)
		}
		scanner = clam
		log.Info("virus scanning enabled", "clamd", cfg.ClamAV.URL)
	}

	commands := command.NewFileCommands(repo, blobs, queue, scanner, log)
	queries := query.NewFileQueries(repo, blobs, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.Metrics())

	if cfg.Tracing.Enabled {
		tracer.Start(tracer.WithService(cfg.Tracing.ServiceName))
		defer tracer.Stop()
		r.Use(gintrace.Middleware(cfg.Tracing.ServiceName))
	}

	api.RegisterRoutes(r, api.Deps{
		Files:        file.NewHandler(commands, queries, log),
		Users:        user.NewHandler(queries, log),
		Status:       handlers.NewStatusHandler(gate.Alive, queries.MetadataAlive, queries, log),
		RequireAuth:  middleware.RequireAuth(gate, log),
		OptionalAuth: middleware.OptionalAuth(gate, log),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
